package estadisticasservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/demo"
	"efectivofacil/internal/pkg/logger"
)

// TallerRepository define la porción del registro de talleres que el agregador necesita.
type TallerRepository interface {
	ObtenerPorID(ctx context.Context, id string) (domain.Taller, error)
}

// InventarioRepository define la lectura del libro de inventario.
type InventarioRepository interface {
	ValorDisponible(ctx context.Context, tallerID string) (decimal.Decimal, error)
}

// TransaccionRepository define las lecturas agregadas del almacén de transacciones.
type TransaccionRepository interface {
	ContarMesActual(ctx context.Context, tallerID string) (int, error)
	TotalesCompletados(ctx context.Context, tallerID string) (int, decimal.Decimal, error)
}

// Service implementa la interfaz domain.EstadisticasService con estrategia
// cache-aside sobre Redis y degradación explícita a datos de respaldo.
type Service struct {
	talleres      TallerRepository
	inventario    InventarioRepository
	transacciones TransaccionRepository
	cache         cache.Client
	respaldo      demo.Proveedor
	cacheTTL      time.Duration
	logger        logger.Logger
}

// NewService crea y devuelve una nueva instancia del agregador de estadísticas.
func NewService(
	talleres TallerRepository,
	inventario InventarioRepository,
	transacciones TransaccionRepository,
	cacheClient cache.Client,
	respaldo demo.Proveedor,
	cacheTTL time.Duration,
	logger logger.Logger,
) *Service {
	return &Service{
		talleres:      talleres,
		inventario:    inventario,
		transacciones: transacciones,
		cache:         cacheClient,
		respaldo:      respaldo,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// Fracción del inventario disponible que puede convertirse en efectivo.
var factorCashout = decimal.RequireFromString("0.8")

// ObtenerEstadisticas calcula el tablero de un taller.
//
// cashout_disponible = min(0.8 * inventario_disponible, limite_cashout),
// acotado a >= 0. El mes de transacciones_mes se corta en UTC.
//
// Nunca propaga una falla del almacén: el dashboard degrada a los datos del
// proveedor de respaldo (con DatosDeRespaldo = true y un warning en el log).
// Esa degradación es una decisión de producto, no un bug.
func (s *Service) ObtenerEstadisticas(ctx domain.Context, tallerID string) (domain.EstadisticasTaller, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ObtenerEstadisticas", nil)
	}

	// --- 1. Estrategia Cache-Aside (READ) ---
	key := cache.ClaveEstadisticasTaller(tallerID)
	if cachedData, err := s.cache.Get(ctxGo, key); err == nil {
		var stats domain.EstadisticasTaller
		if json.Unmarshal([]byte(cachedData), &stats) == nil {
			return stats, nil
		}
		// Si la deserialización falla, seguimos al DB
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Falla al leer el cache de estadísticas.", map[string]interface{}{
			"taller_id": tallerID,
			"error":     err.Error(),
		})
	}

	// --- 2. Agregación desde el almacén ---
	stats, err := s.calcular(ctxGo, tallerID)
	if err != nil {
		s.logger.Warn("Estadísticas no disponibles; sirviendo datos de respaldo.", map[string]interface{}{
			"taller_id": tallerID,
			"error":     err.Error(),
		})
		return s.respaldo.Estadisticas(tallerID), nil
	}

	// --- 3. Estrategia Cache-Aside (WRITE) ---
	if statsJSON, marshalErr := json.Marshal(stats); marshalErr == nil {
		if cacheErr := s.cache.Set(ctxGo, key, statsJSON, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("Falla al escribir el cache de estadísticas.", map[string]interface{}{
				"taller_id": tallerID,
				"error":     cacheErr.Error(),
			})
		}
	}

	return stats, nil
}

// calcular arma el agregado desde los tres repositorios.
func (s *Service) calcular(ctx context.Context, tallerID string) (domain.EstadisticasTaller, error) {
	taller, err := s.talleres.ObtenerPorID(ctx, tallerID)
	if err != nil {
		return domain.EstadisticasTaller{}, err
	}

	inventarioTotal, err := s.inventario.ValorDisponible(ctx, tallerID)
	if err != nil {
		return domain.EstadisticasTaller{}, err
	}

	transaccionesMes, err := s.transacciones.ContarMesActual(ctx, tallerID)
	if err != nil {
		return domain.EstadisticasTaller{}, err
	}

	totalCashouts, valorRetirado, err := s.transacciones.TotalesCompletados(ctx, tallerID)
	if err != nil {
		return domain.EstadisticasTaller{}, err
	}

	disponible := decimal.Min(inventarioTotal.Mul(factorCashout), taller.LimiteCashout)
	if disponible.IsNegative() {
		disponible = decimal.Zero
	}

	return domain.EstadisticasTaller{
		InventarioTotal:    inventarioTotal,
		CashoutDisponible:  disponible,
		TransaccionesMes:   transaccionesMes,
		TotalCashouts:      totalCashouts,
		ValorTotalRetirado: valorRetirado,
		ComisionActual:     taller.ComisionPersonal,
		LimiteActual:       taller.LimiteCashout,
	}, nil
}
