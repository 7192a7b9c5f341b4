package transaccionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	"efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// TransaccionRepository implementa el almacén de transacciones de cash-out.
type TransaccionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewTransaccionRepository crea y devuelve una nueva instancia del repositorio de transacciones.
func NewTransaccionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *TransaccionRepository {
	return &TransaccionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const transaccionColumns = `id, taller_id, lote_numero, valor_inventario, comision_aplicada,
        monto_comision, monto_neto, descripcion, estado, fecha_solicitud, fecha_evaluacion,
        fecha_aprobacion, fecha_completado, metodo_pago, referencia_pago, notas_admin,
        created_at, updated_at`

// scanTransaccion mapea una fila de transacciones a la entidad de dominio.
func scanTransaccion(row interface{ Scan(...interface{}) error }) (domain.Transaccion, error) {
	var t domain.Transaccion
	var fechaEvaluacion, fechaAprobacion, fechaCompletado sql.NullTime
	var metodoPago, referenciaPago sql.NullString

	err := row.Scan(
		&t.ID, &t.TallerID, &t.LoteNumero, &t.ValorInventario, &t.ComisionAplicada,
		&t.MontoComision, &t.MontoNeto, &t.Descripcion, &t.Estado, &t.FechaSolicitud,
		&fechaEvaluacion, &fechaAprobacion, &fechaCompletado, &metodoPago,
		&referenciaPago, &t.NotasAdmin, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Transaccion{}, err
	}

	if fechaEvaluacion.Valid {
		t.FechaEvaluacion = &fechaEvaluacion.Time
	}
	if fechaAprobacion.Valid {
		t.FechaAprobacion = &fechaAprobacion.Time
	}
	if fechaCompletado.Valid {
		t.FechaCompletado = &fechaCompletado.Time
	}
	t.MetodoPago = metodoPago.String
	t.ReferenciaPago = referenciaPago.String
	return t, nil
}

// SiguienteNumeroLote obtiene el próximo valor de la secuencia de lotes.
// La secuencia respaldada por el DB garantiza números monótonos y distintos
// incluso bajo solicitudes concurrentes (el sufijo de timestamp del producto
// original podía colisionar).
func (r *TransaccionRepository) SiguienteNumeroLote(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var numero int64
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT nextval('transacciones_lote_seq')`).Scan(&numero)
	if err != nil {
		r.logger.Error("Falla al obtener el siguiente número de lote.", err)
		return 0, errors.NewDBError("Falla al obtener número de lote", err)
	}
	return numero, nil
}

// Insertar persiste una nueva transacción en un único INSERT ... RETURNING:
// todos los campos calculados se escriben juntos o no se escribe nada.
func (r *TransaccionRepository) Insertar(ctx context.Context, t domain.Transaccion) (domain.Transaccion, error) {
	r.logger.Debug("Iniciando Insertar transacción en el repositorio.", map[string]interface{}{
		"taller_id":   t.TallerID,
		"lote_numero": t.LoteNumero,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO transacciones (id, taller_id, lote_numero, valor_inventario,
            comision_aplicada, monto_comision, monto_neto, descripcion, estado,
            fecha_solicitud, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + transaccionColumns

	row := r.DB.QueryRowContext(ctxTimeout, query,
		t.ID, t.TallerID, t.LoteNumero, t.ValorInventario, t.ComisionAplicada,
		t.MontoComision, t.MontoNeto, t.Descripcion, t.Estado, t.FechaSolicitud,
		t.CreatedAt, t.UpdatedAt,
	)

	creada, err := scanTransaccion(row)
	if err != nil {
		r.logger.Error("Falla al insertar transacción en el DB.", err)
		return domain.Transaccion{}, errors.NewDBError("Falla al insertar transacción", err)
	}

	r.logger.Info("Transacción insertada con éxito.", map[string]interface{}{
		"id":          creada.ID,
		"lote_numero": creada.LoteNumero,
		"monto_neto":  creada.MontoNeto.String(),
	})
	return creada, nil
}

// ListarRecientes devuelve las transacciones de un taller, la más reciente primero.
func (r *TransaccionRepository) ListarRecientes(ctx context.Context, tallerID string, limite int) ([]domain.Transaccion, error) {
	r.logger.Debug("Iniciando ListarRecientes en el repositorio.", map[string]interface{}{
		"taller_id": tallerID,
		"limite":    limite,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + transaccionColumns + `
        FROM transacciones
        WHERE taller_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	rows, err := r.DB.QueryContext(ctxTimeout, query, tallerID, limite)
	if err != nil {
		r.logger.Error("Falla al ejecutar la consulta ListarRecientes.", err)
		return nil, errors.NewDBError("Falla al listar transacciones recientes", err)
	}
	defer rows.Close()

	var transacciones []domain.Transaccion
	for rows.Next() {
		t, err := scanTransaccion(rows)
		if err != nil {
			r.logger.Error("Falla al mapear transacción en ListarRecientes.", err)
			return nil, errors.NewDBError("Falla al mapear transacciones del DB", err)
		}
		transacciones = append(transacciones, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error tras la iteración de las filas de transacciones.", err)
		return nil, errors.NewDBError("Error tras la iteración de transacciones", err)
	}

	return transacciones, nil
}

// ActualizarEstado avanza el ciclo de vida de una transacción dentro de una
// transacción SQL con SELECT ... FOR UPDATE. La máquina de estados del dominio
// se re-verifica con la fila bloqueada: los estados terminales (completado,
// cancelado) son inmutables sin importar qué haya visto el llamador antes.
func (r *TransaccionRepository) ActualizarEstado(ctx context.Context, id string, cambio domain.CambioEstado) (domain.Transaccion, error) {
	r.logger.Debug("Iniciando ActualizarEstado en el repositorio.", map[string]interface{}{
		"id":      id,
		"destino": string(cambio.Destino),
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falla al iniciar la transacción SQL para ActualizarEstado.", err)
		return domain.Transaccion{}, errors.NewDBError("Falla al iniciar transacción SQL", err)
	}
	defer tx.Rollback() // Rollback en caso de error

	// 1. Bloquear la fila y leer el estado actual
	querySelect := `
        SELECT ` + transaccionColumns + `
        FROM transacciones
        WHERE id = $1 FOR UPDATE`

	actual, err := scanTransaccion(tx.QueryRowContext(ctxTimeout, querySelect, id))
	if err == sql.ErrNoRows {
		return domain.Transaccion{}, errors.NewNotFoundError(fmt.Sprintf("Transacción con ID %s no encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falla al bloquear la transacción para actualización de estado.", err)
		return domain.Transaccion{}, errors.NewDBError("Falla al buscar transacción para actualización", err)
	}

	// 2. Verificar la transición con el estado real en el DB
	if !actual.Estado.PuedeTransicionarA(cambio.Destino) {
		r.logger.Warn("Transición de estado rechazada.", map[string]interface{}{
			"id":      id,
			"origen":  string(actual.Estado),
			"destino": string(cambio.Destino),
		})
		return domain.Transaccion{}, errors.NewConflictError(
			fmt.Sprintf("La transacción en estado '%s' no puede pasar a '%s'.", actual.Estado, cambio.Destino))
	}

	// 3. Aplicar el cambio, sellando la fecha que corresponde al destino
	now := time.Now().UTC()
	queryUpdate := `
        UPDATE transacciones
        SET estado = $1,
            fecha_evaluacion = CASE WHEN $1 = 'evaluacion' THEN $2 ELSE fecha_evaluacion END,
            fecha_aprobacion = CASE WHEN $1 = 'aprobado' THEN $2 ELSE fecha_aprobacion END,
            fecha_completado = CASE WHEN $1 = 'completado' THEN $2 ELSE fecha_completado END,
            metodo_pago = COALESCE(NULLIF($3, ''), metodo_pago),
            referencia_pago = COALESCE(NULLIF($4, ''), referencia_pago),
            notas_admin = COALESCE(NULLIF($5, ''), notas_admin),
            updated_at = $2
        WHERE id = $6
        RETURNING ` + transaccionColumns

	actualizada, err := scanTransaccion(tx.QueryRowContext(ctxTimeout, queryUpdate,
		string(cambio.Destino), now, cambio.MetodoPago, cambio.ReferenciaPago, cambio.NotasAdmin, id,
	))
	if err != nil {
		r.logger.Error("Falla al actualizar el estado de la transacción.", err)
		return domain.Transaccion{}, errors.NewDBError("Falla al actualizar estado", err)
	}

	// 4. Commit
	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falla al commitear la actualización de estado.", commitErr)
		return domain.Transaccion{}, errors.NewDBError("Falla al commitear transacción SQL", commitErr)
	}

	r.logger.Info("Estado de transacción actualizado con éxito.", map[string]interface{}{
		"id":     actualizada.ID,
		"estado": string(actualizada.Estado),
	})
	return actualizada, nil
}

// ContarMesActual cuenta las transacciones del taller solicitadas en el mes
// calendario en curso. El corte de mes usa UTC para que el conteo sea
// reproducible sin importar la zona del servidor.
func (r *TransaccionRepository) ContarMesActual(ctx context.Context, tallerID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COUNT(*)
        FROM transacciones
        WHERE taller_id = $1
        AND to_char(fecha_solicitud AT TIME ZONE 'UTC', 'YYYY-MM') = to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM')`

	var count int
	if err := r.DB.QueryRowContext(ctxTimeout, query, tallerID).Scan(&count); err != nil {
		r.logger.Error("Falla al contar transacciones del mes.", err)
		return 0, errors.NewDBError("Falla al contar transacciones del mes", err)
	}
	return count, nil
}

// TotalesCompletados devuelve la cantidad y la suma de montos netos de los
// cash-outs completados de un taller.
func (r *TransaccionRepository) TotalesCompletados(ctx context.Context, tallerID string) (int, decimal.Decimal, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COUNT(*), COALESCE(SUM(monto_neto), 0)
        FROM transacciones
        WHERE taller_id = $1 AND estado = 'completado'`

	var count int
	var total decimal.Decimal
	if err := r.DB.QueryRowContext(ctxTimeout, query, tallerID).Scan(&count, &total); err != nil {
		r.logger.Error("Falla al totalizar cash-outs completados.", err)
		return 0, decimal.Zero, errors.NewDBError("Falla al totalizar cash-outs completados", err)
	}
	return count, total, nil
}
