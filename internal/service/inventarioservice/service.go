package inventarioservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/logger"
)

// InventarioRepository define el contrato que el servicio espera del libro
// de inventario.
type InventarioRepository interface {
	Crear(ctx context.Context, item domain.Inventario) (domain.Inventario, error)
	ListarPorTaller(ctx context.Context, tallerID string) ([]domain.Inventario, error)
	ValorDisponible(ctx context.Context, tallerID string) (decimal.Decimal, error)
}

// Service implementa la interfaz domain.InventarioService.
type Service struct {
	inventario InventarioRepository
	cache      cache.Client
	logger     logger.Logger
}

// NewService crea y devuelve una nueva instancia del servicio de inventario.
func NewService(inventario InventarioRepository, cacheClient cache.Client, logger logger.Logger) *Service {
	return &Service{
		inventario: inventario,
		cache:      cacheClient,
		logger:     logger,
	}
}

// AgregarItem registra una partida de inventario. El valor total se deriva
// siempre en el servidor (cantidad * valor unitario); el valor que envíe el
// cliente se ignora.
func (s *Service) AgregarItem(ctx domain.Context, item domain.Inventario) (domain.Inventario, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para AgregarItem", nil)
	}

	if _, err := uuid.Parse(item.TallerID); err != nil {
		return domain.Inventario{}, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}
	if item.Categoria == "" {
		return domain.Inventario{}, apperror.NewValidationError("La categoría de la partida es obligatoria.")
	}
	if item.Cantidad <= 0 {
		return domain.Inventario{}, apperror.NewValidationError("La cantidad debe ser mayor que cero.")
	}
	if !item.ValorUnitario.IsPositive() {
		return domain.Inventario{}, apperror.NewValidationError("El valor unitario debe ser positivo.")
	}
	if item.Estado == "" {
		item.Estado = domain.InventarioDisponible
	}

	item.ValorTotal = item.ValorUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))

	creado, err := s.inventario.Crear(ctxGo, item)
	if err != nil {
		return domain.Inventario{}, err
	}

	// El inventario disponible alimenta cashout_disponible: se invalida el
	// cache de estadísticas del taller. Best effort.
	if cacheErr := s.cache.Delete(ctxGo, cache.ClaveEstadisticasTaller(item.TallerID)); cacheErr != nil {
		s.logger.Warn("No se pudo invalidar el cache de estadísticas.", map[string]interface{}{
			"taller_id": item.TallerID,
			"error":     cacheErr.Error(),
		})
	}

	s.logger.Info("Partida de inventario registrada.", map[string]interface{}{
		"inventario_id": creado.ID,
		"taller_id":     creado.TallerID,
		"valor_total":   creado.ValorTotal.String(),
	})
	return creado, nil
}

// ListarPorTaller devuelve las partidas de un taller, más recientes primero.
func (s *Service) ListarPorTaller(ctx domain.Context, tallerID string) ([]domain.Inventario, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ListarPorTaller", nil)
	}

	if _, err := uuid.Parse(tallerID); err != nil {
		return nil, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}
	return s.inventario.ListarPorTaller(ctxGo, tallerID)
}

// ValorDisponible suma el valor total de las partidas en estado 'disponible'.
func (s *Service) ValorDisponible(ctx domain.Context, tallerID string) (decimal.Decimal, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ValorDisponible", nil)
	}

	if _, err := uuid.Parse(tallerID); err != nil {
		return decimal.Zero, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}
	return s.inventario.ValorDisponible(ctxGo, tallerID)
}
