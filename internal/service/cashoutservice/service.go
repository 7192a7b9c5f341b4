package cashoutservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/logger"
)

// TallerRepository define el contrato que el motor de cash-out espera del
// registro de talleres.
type TallerRepository interface {
	ObtenerPorID(ctx context.Context, id string) (domain.Taller, error)
}

// TransaccionRepository define el contrato que el motor espera del almacén
// de transacciones. Insertar debe ser atómico: todos los campos calculados
// se persisten juntos o no se persiste nada.
type TransaccionRepository interface {
	SiguienteNumeroLote(ctx context.Context) (int64, error)
	Insertar(ctx context.Context, t domain.Transaccion) (domain.Transaccion, error)
}

// Service es el motor de cash-out: calcula comisión y monto neto, genera el
// número de lote y persiste la transacción en estado 'pendiente'.
// El motor no guarda estado entre llamadas; todo vive en el almacén.
type Service struct {
	talleres      TallerRepository
	transacciones TransaccionRepository
	cache         cache.Client
	logger        logger.Logger
}

// NewService crea y devuelve una nueva instancia del motor de cash-out.
func NewService(talleres TallerRepository, transacciones TransaccionRepository, cacheClient cache.Client, logger logger.Logger) *Service {
	return &Service{
		talleres:      talleres,
		transacciones: transacciones,
		cache:         cacheClient,
		logger:        logger,
	}
}

var cien = decimal.NewFromInt(100)

// CalcularMontos deriva la comisión y el neto de un valor de inventario.
// El redondeo es a dos decimales, mitad hacia arriba, y el neto se obtiene
// por resta del valor original: monto_comision + monto_neto == valor exacto,
// sin deriva de punto flotante.
func CalcularMontos(valor, comision decimal.Decimal) (montoComision, montoNeto decimal.Decimal) {
	montoComision = valor.Mul(comision).Div(cien).Round(2)
	montoNeto = valor.Sub(montoComision)
	return montoComision, montoNeto
}

// SolicitarCashout procesa una solicitud de cash-out contra el inventario.
// Devuelve la transacción completa (con los campos calculados) en estado
// 'pendiente', o un error tipado según la taxonomía del servicio.
func (s *Service) SolicitarCashout(ctx domain.Context, tallerID string, valorInventario decimal.Decimal, descripcion string) (domain.Transaccion, error) {
	s.logger.Debug("Iniciando solicitud de cash-out en el servicio.", map[string]interface{}{
		"taller_id": tallerID,
		"valor":     valorInventario.String(),
	})

	// 1. Defensa del motor: el valor debe ser positivo aunque la capa HTTP
	// ya haya validado los límites de política (100 a 500000).
	if !valorInventario.IsPositive() {
		return domain.Transaccion{}, apperror.NewValidationError("El valor de inventario solicitado debe ser positivo.")
	}

	if _, err := uuid.Parse(tallerID); err != nil {
		return domain.Transaccion{}, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}

	// Casting y configuración del contexto (convierte domain.Context a context.Context)
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para SolicitarCashout", nil)
	}

	// 2. Resolver la comisión vigente del taller (snapshot al momento de crear)
	taller, err := s.talleres.ObtenerPorID(ctxGo, tallerID)
	if err != nil {
		// NotFoundError y DBError ya vienen tipados desde el repositorio
		return domain.Transaccion{}, err
	}

	comision := taller.ComisionPersonal
	montoComision, montoNeto := CalcularMontos(valorInventario, comision)

	// 3. Número de lote: CO-<año>-<secuencia de 6 dígitos>. La secuencia del
	// almacén garantiza lotes distintos bajo solicitudes consecutivas; el
	// índice único sobre lote_numero respalda la propiedad.
	numeroLote, err := s.transacciones.SiguienteNumeroLote(ctxGo)
	if err != nil {
		return domain.Transaccion{}, err
	}

	now := time.Now().UTC()
	loteNumero := fmt.Sprintf("CO-%d-%06d", now.Year(), numeroLote%1000000)

	transaccion := domain.Transaccion{
		ID:               uuid.New().String(),
		TallerID:         taller.ID,
		LoteNumero:       loteNumero,
		ValorInventario:  valorInventario,
		ComisionAplicada: comision,
		MontoComision:    montoComision,
		MontoNeto:        montoNeto,
		Descripcion:      descripcion,
		Estado:           domain.EstadoPendiente,
		FechaSolicitud:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// 4. Persistencia atómica. El motor no reintenta: una falla del almacén
	// se devuelve de inmediato al llamador.
	creada, err := s.transacciones.Insertar(ctxGo, transaccion)
	if err != nil {
		s.logger.Error("Falla al persistir la transacción de cash-out.", err)
		return domain.Transaccion{}, err
	}

	// 5. Las estadísticas cacheadas del taller quedaron viejas
	if cacheErr := s.cache.Delete(ctxGo, cache.ClaveEstadisticasTaller(taller.ID)); cacheErr != nil {
		s.logger.Warn("No se pudo invalidar el cache de estadísticas.", map[string]interface{}{
			"taller_id": taller.ID,
			"error":     cacheErr.Error(),
		})
	}

	s.logger.Info("Cash-out solicitado con éxito.", map[string]interface{}{
		"taller_id":      creada.TallerID,
		"lote_numero":    creada.LoteNumero,
		"monto_comision": creada.MontoComision.String(),
		"monto_neto":     creada.MontoNeto.String(),
	})
	return creada, nil
}
