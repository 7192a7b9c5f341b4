package cache

import "fmt"

// ClaveEstadisticasTaller construye la clave de cache de las estadísticas de
// un taller. La definimos aquí para que el agregador (que la lee/escribe) y
// el motor de cash-out (que la invalida) usen exactamente la misma clave.
func ClaveEstadisticasTaller(tallerID string) string {
	return fmt.Sprintf("estadisticas:taller:%s", tallerID)
}
