package domain

import "github.com/shopspring/decimal"

// EstadisticasTaller es el agregado derivado que alimenta el dashboard.
// No se persiste: se calcula a partir del registro de talleres, el libro de
// inventario y el almacén de transacciones.
//
// CashoutDisponible = min(0.8 * InventarioTotal, límite del taller),
// acotado a >= 0. TransaccionesMes cuenta por mes calendario UTC.
type EstadisticasTaller struct {
	InventarioTotal     decimal.Decimal `json:"inventario_total"`
	CashoutDisponible   decimal.Decimal `json:"cashout_disponible"`
	TransaccionesMes    int             `json:"transacciones_mes"`
	TotalCashouts       int             `json:"total_cashouts"`
	ValorTotalRetirado  decimal.Decimal `json:"valor_total_retirado"`
	ComisionActual      decimal.Decimal `json:"comision_actual"`
	LimiteActual        decimal.Decimal `json:"limite_actual"`
	DatosDeRespaldo     bool            `json:"datos_de_respaldo"` // true cuando se sirvieron datos del proveedor de respaldo
}

// EstadisticasService define el contrato del agregador de estadísticas.
// La operación degrada a datos de respaldo cuando el almacén falla; nunca
// propaga el error a la página.
type EstadisticasService interface {
	ObtenerEstadisticas(ctx Context, tallerID string) (EstadisticasTaller, error)
}
