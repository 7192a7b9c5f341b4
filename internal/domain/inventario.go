package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoInventario es el tipo string para el estado de una partida de inventario.
type EstadoInventario string

const (
	InventarioDisponible   EstadoInventario = "disponible"
	InventarioEnEvaluacion EstadoInventario = "en_evaluacion"
	InventarioVendido      EstadoInventario = "vendido"
)

// Inventario representa una partida de inventario textil de un taller.
// Solo las partidas 'disponible' alimentan el techo de cash-out del taller.
type Inventario struct {
	ID            string           `json:"id"`
	TallerID      string           `json:"taller_id"`
	Categoria     string           `json:"categoria"`
	Descripcion   string           `json:"descripcion"`
	Cantidad      int              `json:"cantidad"`
	ValorUnitario decimal.Decimal  `json:"valor_unitario"`
	ValorTotal    decimal.Decimal  `json:"valor_total"` // cantidad * valor_unitario, derivado en el servidor
	Estado        EstadoInventario `json:"estado"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// InventarioService define el contrato del libro de inventario para la capa API.
type InventarioService interface {
	AgregarItem(ctx Context, item Inventario) (Inventario, error)
	ListarPorTaller(ctx Context, tallerID string) ([]Inventario, error)
	ValorDisponible(ctx Context, tallerID string) (decimal.Decimal, error)
}
