package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"efectivofacil/internal/api/cashout"
	"efectivofacil/internal/api/estadisticas"
	"efectivofacil/internal/api/inventario"
	"efectivofacil/internal/api/taller"
	"efectivofacil/internal/api/transaccion"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/middleware"
)

// NewRouter configura y devuelve el enrutador HTTP principal.
// Recibe los Handlers ya inicializados por inyección de dependencias.
func NewRouter(
	cashoutHandler *cashout.Handler,
	tallerHandler *taller.Handler,
	transaccionHandler *transaccion.Handler,
	estadisticasHandler *estadisticas.Handler,
	inventarioHandler *inventario.Handler,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	// Usamos el ServeMux estándar de net/http para el enrutamiento
	mux := http.NewServeMux()

	// --- 1. Rutas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Motor de cash-out ---
	mux.HandleFunc("/api/solicitar-cashout", cashoutHandler.SolicitarCashoutHandler)

	// --- 3. Registro de talleres y condiciones comerciales ---
	mux.HandleFunc("/api/talleres", tallerHandler.TalleresHandler)
	mux.HandleFunc("/api/talleres/", tallerHandler.ObtenerTallerHandler)
	mux.HandleFunc("/api/actualizar-comision", tallerHandler.ActualizarComisionHandler)

	// --- 4. Transacciones: historial y ciclo de vida ---
	mux.HandleFunc("/api/transacciones/", transaccionHandler.TransaccionesHandler)

	// --- 5. Dashboard de estadísticas ---
	mux.HandleFunc("/api/estadisticas/", estadisticasHandler.ObtenerEstadisticasHandler)

	// --- 6. Libro de inventario ---
	mux.HandleFunc("/api/inventario", inventarioHandler.InventarioHandler)

	// --- 7. Documentación Swagger ---
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 8. Middlewares globales ---
	// El rate limiter por IP (Redis) envuelve todo el mux.
	return middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)(mux)
}

// PingHandler es una función utilitaria para el health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
