package tallerrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"efectivofacil/internal/domain"
	"efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// TallerRepository implementa el acceso a datos del registro de talleres.
type TallerRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewTallerRepository crea y devuelve una nueva instancia del repositorio de talleres.
func NewTallerRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *TallerRepository {
	return &TallerRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const tallerColumns = `id, nombre, rfc_nit, email, telefono, direccion, ciudad, codigo_postal,
        especialidad_textil, foto_url, notas_admin, comision_personalizada, limite_cashout,
        verificado, fecha_verificacion, activo, created_at, updated_at`

// scanTaller mapea una fila de talleres a la entidad de dominio.
func scanTaller(row interface{ Scan(...interface{}) error }) (domain.Taller, error) {
	var t domain.Taller
	var fechaVerificacion sql.NullTime

	err := row.Scan(
		&t.ID, &t.Nombre, &t.RFCNit, &t.Email, &t.Telefono, &t.Direccion, &t.Ciudad,
		&t.CodigoPostal, &t.EspecialidadTextil, &t.FotoURL, &t.NotasAdmin,
		&t.ComisionPersonal, &t.LimiteCashout, &t.Verificado, &fechaVerificacion,
		&t.Activo, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Taller{}, err
	}

	if fechaVerificacion.Valid {
		t.FechaVerificacion = &fechaVerificacion.Time
	}
	return t, nil
}

// Crear inserta un nuevo taller (alta durante el onboarding).
func (r *TallerRepository) Crear(ctx context.Context, taller domain.Taller) (domain.Taller, error) {
	r.logger.Debug("Iniciando Crear taller en el repositorio.", map[string]interface{}{"nombre": taller.Nombre})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if taller.ID == "" {
		taller.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	taller.Activo = true
	taller.CreatedAt = now
	taller.UpdatedAt = now

	query := `
        INSERT INTO talleres (` + tallerColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING ` + tallerColumns

	row := r.DB.QueryRowContext(ctxTimeout, query,
		taller.ID, taller.Nombre, taller.RFCNit, taller.Email, taller.Telefono,
		taller.Direccion, taller.Ciudad, taller.CodigoPostal, taller.EspecialidadTextil,
		taller.FotoURL, taller.NotasAdmin, taller.ComisionPersonal, taller.LimiteCashout,
		taller.Verificado, nullTime(taller.FechaVerificacion), taller.Activo,
		taller.CreatedAt, taller.UpdatedAt,
	)

	creado, err := scanTaller(row)
	if err != nil {
		r.logger.Error("Falla al insertar taller en el DB.", err)
		return domain.Taller{}, errors.NewDBError("Falla al crear taller", err)
	}

	r.logger.Info("Taller creado con éxito.", map[string]interface{}{"id": creado.ID, "nombre": creado.Nombre})
	return creado, nil
}

// ObtenerPorID busca un taller activo por su ID. Los talleres dados de baja
// lógica (activo = false) se tratan como inexistentes.
func (r *TallerRepository) ObtenerPorID(ctx context.Context, id string) (domain.Taller, error) {
	r.logger.Debug("Iniciando ObtenerPorID de taller en el repositorio.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + tallerColumns + `
        FROM talleres
        WHERE id = $1 AND activo = TRUE`

	taller, err := scanTaller(r.DB.QueryRowContext(ctxTimeout, query, id))

	if err == sql.ErrNoRows {
		r.logger.Info("Taller no encontrado.", map[string]interface{}{"id": id})
		return domain.Taller{}, errors.NewNotFoundError(fmt.Sprintf("Taller con ID %s no encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falla al buscar taller en el DB.", err)
		return domain.Taller{}, errors.NewDBError("Falla al buscar taller", err)
	}

	return taller, nil
}

// ListarTodos devuelve todos los talleres activos ordenados por nombre (listado administrativo).
func (r *TallerRepository) ListarTodos(ctx context.Context) ([]domain.Taller, error) {
	r.logger.Debug("Iniciando ListarTodos de talleres en el repositorio.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + tallerColumns + `
        FROM talleres
        WHERE activo = TRUE
        ORDER BY nombre ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falla al ejecutar la consulta ListarTodos.", err)
		return nil, errors.NewDBError("Falla al listar talleres", err)
	}
	defer rows.Close()

	var talleres []domain.Taller
	for rows.Next() {
		taller, err := scanTaller(rows)
		if err != nil {
			r.logger.Error("Falla al mapear taller en la iteración de ListarTodos.", err)
			return nil, errors.NewDBError("Falla al mapear talleres del DB", err)
		}
		talleres = append(talleres, taller)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error tras la iteración de las filas de talleres.", err)
		return nil, errors.NewDBError("Error tras la iteración de talleres", err)
	}

	r.logger.Info("ListarTodos concluido con éxito.", map[string]interface{}{"total_talleres": len(talleres)})
	return talleres, nil
}

// ActualizarTerminos ajusta la comisión personalizada y, opcionalmente, el
// límite de cash-out de un taller. No toca ninguna transacción existente:
// el snapshot comision_aplicada es inmutable por diseño del producto.
func (r *TallerRepository) ActualizarTerminos(ctx context.Context, id string, terminos domain.TerminosComerciales) (domain.Taller, error) {
	r.logger.Debug("Iniciando ActualizarTerminos en el repositorio.", map[string]interface{}{
		"id":       id,
		"comision": terminos.Comision.String(),
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// COALESCE conserva el límite actual cuando no se envía uno nuevo.
	query := `
        UPDATE talleres
        SET comision_personalizada = $1,
            limite_cashout = COALESCE($2, limite_cashout),
            updated_at = $3
        WHERE id = $4 AND activo = TRUE
        RETURNING ` + tallerColumns

	var nuevoLimite interface{}
	if terminos.Limite != nil {
		nuevoLimite = *terminos.Limite
	}

	row := r.DB.QueryRowContext(ctxTimeout, query,
		terminos.Comision, nuevoLimite, time.Now().UTC(), id,
	)

	taller, err := scanTaller(row)

	if err == sql.ErrNoRows {
		r.logger.Info("Taller no encontrado para actualizar términos.", map[string]interface{}{"id": id})
		return domain.Taller{}, errors.NewNotFoundError(fmt.Sprintf("Taller con ID %s no encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falla al actualizar los términos del taller en el DB.", err)
		return domain.Taller{}, errors.NewDBError("Falla al actualizar términos del taller", err)
	}

	r.logger.Info("Términos comerciales actualizados con éxito.", map[string]interface{}{
		"id":             taller.ID,
		"nueva_comision": taller.ComisionPersonal.String(),
		"nuevo_limite":   taller.LimiteCashout.String(),
	})
	return taller, nil
}

// nullTime convierte *time.Time al tipo aceptado por el driver.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
