package inventariorepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	"efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// InventarioRepository implementa el acceso a datos del libro de inventario.
type InventarioRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewInventarioRepository crea y devuelve una nueva instancia del repositorio de inventario.
func NewInventarioRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *InventarioRepository {
	return &InventarioRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const inventarioColumns = `id, taller_id, categoria, descripcion, cantidad, valor_unitario,
        valor_total, estado, created_at, updated_at`

// Crear inserta una nueva partida de inventario.
func (r *InventarioRepository) Crear(ctx context.Context, item domain.Inventario) (domain.Inventario, error) {
	r.logger.Debug("Iniciando Crear partida de inventario en el repositorio.", map[string]interface{}{
		"taller_id": item.TallerID,
		"categoria": item.Categoria,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
        INSERT INTO inventario (` + inventarioColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + inventarioColumns

	err := r.DB.QueryRowContext(ctxTimeout, query,
		item.ID, item.TallerID, item.Categoria, item.Descripcion, item.Cantidad,
		item.ValorUnitario, item.ValorTotal, item.Estado, item.CreatedAt, item.UpdatedAt,
	).Scan(
		&item.ID, &item.TallerID, &item.Categoria, &item.Descripcion, &item.Cantidad,
		&item.ValorUnitario, &item.ValorTotal, &item.Estado, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falla al insertar partida de inventario en el DB.", err)
		return domain.Inventario{}, errors.NewDBError("Falla al crear partida de inventario", err)
	}

	r.logger.Info("Partida de inventario creada con éxito.", map[string]interface{}{
		"id":          item.ID,
		"valor_total": item.ValorTotal.String(),
	})
	return item, nil
}

// ListarPorTaller devuelve las partidas de inventario de un taller, la más reciente primero.
func (r *InventarioRepository) ListarPorTaller(ctx context.Context, tallerID string) ([]domain.Inventario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + inventarioColumns + `
        FROM inventario
        WHERE taller_id = $1
        ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, tallerID)
	if err != nil {
		r.logger.Error("Falla al ejecutar la consulta ListarPorTaller.", err)
		return nil, errors.NewDBError("Falla al listar inventario", err)
	}
	defer rows.Close()

	var items []domain.Inventario
	for rows.Next() {
		var item domain.Inventario
		err := rows.Scan(
			&item.ID, &item.TallerID, &item.Categoria, &item.Descripcion, &item.Cantidad,
			&item.ValorUnitario, &item.ValorTotal, &item.Estado, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Falla al mapear partida de inventario.", err)
			return nil, errors.NewDBError("Falla al mapear inventario del DB", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error tras la iteración de las filas de inventario.", err)
		return nil, errors.NewDBError("Error tras la iteración de inventario", err)
	}

	return items, nil
}

// ValorDisponible suma el valor total de las partidas 'disponible' de un
// taller. Este agregado es el insumo del techo de cash-out.
func (r *InventarioRepository) ValorDisponible(ctx context.Context, tallerID string) (decimal.Decimal, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COALESCE(SUM(valor_total), 0)
        FROM inventario
        WHERE taller_id = $1 AND estado = 'disponible'`

	var total decimal.Decimal
	if err := r.DB.QueryRowContext(ctxTimeout, query, tallerID).Scan(&total); err != nil {
		r.logger.Error("Falla al sumar el inventario disponible.", err)
		return decimal.Zero, errors.NewDBError("Falla al sumar inventario disponible", err)
	}
	return total, nil
}
