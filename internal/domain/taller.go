package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Taller representa el negocio textil que solicita cash-outs (la Entidad principal).
// Las condiciones comerciales (comisión y límite) se fijan administrativamente,
// nunca por el propio taller.
type Taller struct {
	ID                 string          `json:"id"`
	Nombre             string          `json:"nombre"`
	RFCNit             string          `json:"rfc_nit"`
	Email              string          `json:"email"`
	Telefono           string          `json:"telefono,omitempty"`
	Direccion          string          `json:"direccion,omitempty"`
	Ciudad             string          `json:"ciudad,omitempty"`
	CodigoPostal       string          `json:"codigo_postal,omitempty"`
	EspecialidadTextil string          `json:"especialidad_textil,omitempty"`
	FotoURL            string          `json:"foto_url,omitempty"`
	NotasAdmin         string          `json:"notas_admin,omitempty"`
	ComisionPersonal   decimal.Decimal `json:"comision_personalizada"` // Porcentaje 0-100, personalizado por taller
	LimiteCashout      decimal.Decimal `json:"limite_cashout"`
	Verificado         bool            `json:"verificado"`
	FechaVerificacion  *time.Time      `json:"fecha_verificacion,omitempty"`
	Activo             bool            `json:"activo"` // Baja lógica; los talleres nunca se borran físicamente
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TerminosComerciales es el payload de la operación administrativa que ajusta
// la comisión y (opcionalmente) el límite de cash-out de un taller.
// Las transacciones ya creadas conservan su comisión aplicada (snapshot).
type TerminosComerciales struct {
	Comision decimal.Decimal
	Limite   *decimal.Decimal // nil = no modificar el límite
}

// --- Interfaces de Contrato ---

// TallerService define lo que la capa API puede pedirle a la lógica de negocio de talleres.
type TallerService interface {
	RegistrarTaller(ctx Context, taller Taller) (Taller, error)
	ObtenerTaller(ctx Context, id string) (Taller, error)
	ListarTalleres(ctx Context) ([]Taller, error)
	ActualizarTerminos(ctx Context, id string, terminos TerminosComerciales) (Taller, error)
}

// Context es una interfaz que encapsula el context.Context de Go.
// Se usa para propagar timeouts y señales de cancelación entre capas
// sin que el dominio dependa directamente del paquete "context".
type Context interface{}
