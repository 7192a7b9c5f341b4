package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoTransaccion es el tipo string para el ciclo de vida de una transacción.
type EstadoTransaccion string

// Estados del ciclo de vida. 'completado' y 'cancelado' son terminales.
const (
	EstadoPendiente  EstadoTransaccion = "pendiente"
	EstadoEvaluacion EstadoTransaccion = "evaluacion"
	EstadoAprobado   EstadoTransaccion = "aprobado"
	EstadoCompletado EstadoTransaccion = "completado"
	EstadoCancelado  EstadoTransaccion = "cancelado"
)

// EsValido indica si el string corresponde a un estado conocido.
func (e EstadoTransaccion) EsValido() bool {
	switch e {
	case EstadoPendiente, EstadoEvaluacion, EstadoAprobado, EstadoCompletado, EstadoCancelado:
		return true
	}
	return false
}

// EsTerminal indica si el estado no admite más transiciones.
func (e EstadoTransaccion) EsTerminal() bool {
	return e == EstadoCompletado || e == EstadoCancelado
}

// PuedeTransicionarA codifica la máquina de estados:
// pendiente -> evaluacion -> aprobado -> completado, y cualquier estado
// no terminal puede pasar a cancelado. La capa de persistencia re-verifica
// esta regla dentro de la transacción SQL antes de escribir.
func (e EstadoTransaccion) PuedeTransicionarA(destino EstadoTransaccion) bool {
	if e.EsTerminal() || !destino.EsValido() {
		return false
	}
	if destino == EstadoCancelado {
		return true
	}
	switch e {
	case EstadoPendiente:
		return destino == EstadoEvaluacion
	case EstadoEvaluacion:
		return destino == EstadoAprobado
	case EstadoAprobado:
		return destino == EstadoCompletado
	}
	return false
}

// Transaccion representa una solicitud de cash-out: la conversión de valor de
// inventario en un pago neto, menos la comisión del taller.
// Invariante central: MontoComision + MontoNeto == ValorInventario (exacto a
// dos decimales), con ComisionAplicada congelada al momento de la creación.
type Transaccion struct {
	ID               string            `json:"id"`
	TallerID         string            `json:"taller_id"`
	LoteNumero       string            `json:"lote_numero"` // Formato CO-<año>-<secuencia de 6 dígitos>, único
	ValorInventario  decimal.Decimal   `json:"valor_inventario"`
	ComisionAplicada decimal.Decimal   `json:"comision_aplicada"` // Snapshot de la comisión del taller al crear
	MontoComision    decimal.Decimal   `json:"monto_comision"`
	MontoNeto        decimal.Decimal   `json:"monto_neto"`
	Descripcion      string            `json:"descripcion,omitempty"`
	Estado           EstadoTransaccion `json:"estado"`
	FechaSolicitud   time.Time         `json:"fecha_solicitud"`
	FechaEvaluacion  *time.Time        `json:"fecha_evaluacion,omitempty"`
	FechaAprobacion  *time.Time        `json:"fecha_aprobacion,omitempty"`
	FechaCompletado  *time.Time        `json:"fecha_completado,omitempty"`
	MetodoPago       string            `json:"metodo_pago,omitempty"`
	ReferenciaPago   string            `json:"referencia_pago,omitempty"`
	NotasAdmin       string            `json:"notas_admin,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// CambioEstado es el payload de la operación administrativa que avanza el
// ciclo de vida de una transacción.
type CambioEstado struct {
	Destino        EstadoTransaccion
	MetodoPago     string
	ReferenciaPago string
	NotasAdmin     string
}

// CashoutService define el contrato del motor de cash-out para la capa API.
type CashoutService interface {
	SolicitarCashout(ctx Context, tallerID string, valorInventario decimal.Decimal, descripcion string) (Transaccion, error)
}

// TransaccionService define las operaciones de consulta y ciclo de vida.
type TransaccionService interface {
	ListarRecientes(ctx Context, tallerID string, limite int) ([]Transaccion, error)
	AvanzarEstado(ctx Context, id string, cambio CambioEstado) (Transaccion, error)
}
