package transaccionservice

import (
	"context"

	"github.com/google/uuid"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/demo"
	"efectivofacil/internal/pkg/logger"
)

// Límite por defecto del historial cuando el cliente no pide uno.
const limiteRecientesDefault = 10

// TransaccionRepository define el contrato que el servicio espera del
// almacén de transacciones. ActualizarEstado re-verifica la máquina de
// estados dentro de la transacción SQL (SELECT ... FOR UPDATE).
type TransaccionRepository interface {
	ListarRecientes(ctx context.Context, tallerID string, limite int) ([]domain.Transaccion, error)
	ActualizarEstado(ctx context.Context, id string, cambio domain.CambioEstado) (domain.Transaccion, error)
}

// Service implementa la interfaz domain.TransaccionService: el historial por
// taller y la operación administrativa de avance del ciclo de vida.
type Service struct {
	transacciones TransaccionRepository
	cache         cache.Client
	respaldo      demo.Proveedor
	logger        logger.Logger
}

// NewService crea y devuelve una nueva instancia del servicio de transacciones.
func NewService(transacciones TransaccionRepository, cacheClient cache.Client, respaldo demo.Proveedor, logger logger.Logger) *Service {
	return &Service{
		transacciones: transacciones,
		cache:         cacheClient,
		respaldo:      respaldo,
		logger:        logger,
	}
}

// ListarRecientes devuelve el historial de un taller, más recientes primero.
// Si el almacén falla, degrada a las transacciones del proveedor de respaldo
// en lugar de romper la página del historial (soft fail, con warning).
func (s *Service) ListarRecientes(ctx domain.Context, tallerID string, limite int) ([]domain.Transaccion, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ListarRecientes", nil)
	}

	if _, err := uuid.Parse(tallerID); err != nil {
		return nil, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}
	if limite <= 0 {
		limite = limiteRecientesDefault
	}

	transacciones, err := s.transacciones.ListarRecientes(ctxGo, tallerID, limite)
	if err != nil {
		s.logger.Warn("Historial no disponible; sirviendo transacciones de respaldo.", map[string]interface{}{
			"taller_id": tallerID,
			"error":     err.Error(),
		})
		return s.respaldo.TransaccionesRecientes(tallerID, limite), nil
	}
	return transacciones, nil
}

// AvanzarEstado mueve una transacción a su siguiente estado. La validación de
// forma ocurre aquí; la regla de transición se aplica dentro de la transacción
// SQL del repositorio para que dos administradores concurrentes no puedan
// completar el mismo lote dos veces.
func (s *Service) AvanzarEstado(ctx domain.Context, id string, cambio domain.CambioEstado) (domain.Transaccion, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para AvanzarEstado", nil)
	}

	if _, err := uuid.Parse(id); err != nil {
		return domain.Transaccion{}, apperror.NewValidationError("El ID de la transacción debe ser un UUID válido.")
	}
	if !cambio.Destino.EsValido() {
		return domain.Transaccion{}, apperror.NewValidationError("El estado destino no es un estado conocido del ciclo de vida.")
	}

	transaccion, err := s.transacciones.ActualizarEstado(ctxGo, id, cambio)
	if err != nil {
		return domain.Transaccion{}, err
	}

	s.logger.Info("Transacción avanzada de estado.", map[string]interface{}{
		"transaccion_id": transaccion.ID,
		"lote":           transaccion.LoteNumero,
		"estado":         string(transaccion.Estado),
	})

	// Un cambio terminal altera los agregados del dashboard: se invalida el
	// cache de estadísticas del taller. Best effort.
	if transaccion.Estado.EsTerminal() {
		if cacheErr := s.cache.Delete(ctxGo, cache.ClaveEstadisticasTaller(transaccion.TallerID)); cacheErr != nil {
			s.logger.Warn("No se pudo invalidar el cache de estadísticas.", map[string]interface{}{
				"taller_id": transaccion.TallerID,
				"error":     cacheErr.Error(),
			})
		}
	}

	return transaccion, nil
}
