package demo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
)

// Proveedor es la estrategia inyectable de datos de respaldo: cuando el
// almacén no está disponible, las lecturas del dashboard degradan a estos
// datos en lugar de fallar la página. Inyectarlo como interfaz permite que
// los tests sustituyan el proveedor.
type Proveedor interface {
	Estadisticas(tallerID string) domain.EstadisticasTaller
	TransaccionesRecientes(tallerID string, limite int) []domain.Transaccion
}

// Estatico implementa Proveedor con los registros de demostración fijos del
// producto. Es la implementación usada en producción; su contenido es un
// requisito de producto (demo/observabilidad), no datos reales.
type Estatico struct{}

// NuevoEstatico crea el proveedor fijo de datos de respaldo.
func NuevoEstatico() *Estatico {
	return &Estatico{}
}

// Estadisticas devuelve el tablero de demostración del taller.
func (e *Estatico) Estadisticas(tallerID string) domain.EstadisticasTaller {
	return domain.EstadisticasTaller{
		InventarioTotal:    decimal.NewFromInt(125450),
		CashoutDisponible:  decimal.NewFromInt(89250),
		TransaccionesMes:   24,
		TotalCashouts:      47,
		ValorTotalRetirado: decimal.NewFromInt(890450),
		ComisionActual:     decimal.NewFromFloat(3.5),
		LimiteActual:       decimal.NewFromInt(100000),
		DatosDeRespaldo:    true,
	}
}

// TransaccionesRecientes devuelve las transacciones de demostración, la más
// reciente primero, recortadas al límite pedido.
func (e *Estatico) TransaccionesRecientes(tallerID string, limite int) []domain.Transaccion {
	ahora := time.Now().UTC()
	hace2Horas := ahora.Add(-2 * time.Hour)
	hace1Dia := ahora.Add(-24 * time.Hour)
	hace3Dias := ahora.Add(-3 * 24 * time.Hour)

	transacciones := []domain.Transaccion{
		{
			ID:               uuid.NewString(),
			TallerID:         tallerID,
			LoteNumero:       "CO-2024-000001",
			ValorInventario:  decimal.NewFromInt(15750),
			ComisionAplicada: decimal.NewFromFloat(3.5),
			MontoComision:    decimal.NewFromFloat(551.25),
			MontoNeto:        decimal.NewFromFloat(15198.75),
			Estado:           domain.EstadoCompletado,
			FechaSolicitud:   hace2Horas,
			FechaCompletado:  &hace2Horas,
			CreatedAt:        hace2Horas,
			UpdatedAt:        ahora,
		},
		{
			ID:               uuid.NewString(),
			TallerID:         tallerID,
			LoteNumero:       "CO-2024-000002",
			ValorInventario:  decimal.NewFromInt(23400),
			ComisionAplicada: decimal.NewFromFloat(3.5),
			MontoComision:    decimal.NewFromInt(819),
			MontoNeto:        decimal.NewFromInt(22581),
			Estado:           domain.EstadoEvaluacion,
			FechaSolicitud:   hace1Dia,
			FechaEvaluacion:  &hace1Dia,
			CreatedAt:        hace1Dia,
			UpdatedAt:        ahora,
		},
		{
			// Lote de inventario agregado (prefijo INV-), sin comisión
			ID:               uuid.NewString(),
			TallerID:         tallerID,
			LoteNumero:       "INV-2024-000003",
			ValorInventario:  decimal.NewFromInt(18900),
			ComisionAplicada: decimal.Zero,
			MontoComision:    decimal.Zero,
			MontoNeto:        decimal.NewFromInt(18900),
			Estado:           domain.EstadoCompletado,
			FechaSolicitud:   hace3Dias,
			FechaCompletado:  &hace3Dias,
			CreatedAt:        hace3Dias,
			UpdatedAt:        ahora,
		},
	}

	if limite > 0 && limite < len(transacciones) {
		transacciones = transacciones[:limite]
	}
	return transacciones
}
