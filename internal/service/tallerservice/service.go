package tallerservice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// TallerRepository define el contrato que el servicio de talleres espera de
// la capa de persistencia.
type TallerRepository interface {
	Crear(ctx context.Context, taller domain.Taller) (domain.Taller, error)
	ObtenerPorID(ctx context.Context, id string) (domain.Taller, error)
	ListarTodos(ctx context.Context) ([]domain.Taller, error)
	ActualizarTerminos(ctx context.Context, id string, terminos domain.TerminosComerciales) (domain.Taller, error)
}

// Service implementa la interfaz domain.TallerService.
type Service struct {
	repo   TallerRepository
	logger logger.Logger
}

// NewService crea y devuelve una nueva instancia del servicio de talleres.
func NewService(repo TallerRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Límites administrativos de los términos comerciales.
var (
	comisionMaxima = decimal.NewFromInt(20)
)

// RegistrarTaller da de alta un taller durante el onboarding.
func (s *Service) RegistrarTaller(ctx domain.Context, taller domain.Taller) (domain.Taller, error) {
	s.logger.Debug("Iniciando registro de taller en el servicio.", map[string]interface{}{"nombre": taller.Nombre})

	if strings.TrimSpace(taller.Nombre) == "" {
		return domain.Taller{}, apperror.NewValidationError("El nombre del taller no puede estar vacío.")
	}
	if strings.TrimSpace(taller.RFCNit) == "" || strings.TrimSpace(taller.Email) == "" {
		return domain.Taller{}, apperror.NewValidationError("RFC/NIT y email son obligatorios.")
	}
	if taller.ComisionPersonal.IsNegative() || taller.ComisionPersonal.GreaterThan(comisionMaxima) {
		return domain.Taller{}, apperror.NewValidationError("La comisión inicial debe estar entre 0 y 20.")
	}
	if taller.LimiteCashout.IsNegative() {
		return domain.Taller{}, apperror.NewValidationError("El límite de cash-out no puede ser negativo.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para RegistrarTaller", nil)
	}

	creado, err := s.repo.Crear(ctxGo, taller)
	if err != nil {
		s.logger.Error("Falla al crear taller en el repositorio.", err)
		return domain.Taller{}, err
	}

	s.logger.Info("Taller registrado con éxito.", map[string]interface{}{"id": creado.ID, "nombre": creado.Nombre})
	return creado, nil
}

// ObtenerTaller busca un taller por su ID.
func (s *Service) ObtenerTaller(ctx domain.Context, id string) (domain.Taller, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Taller{}, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ObtenerTaller", nil)
	}

	taller, err := s.repo.ObtenerPorID(ctxGo, id)
	if err != nil {
		// Los errores del repositorio ya son NotFoundError o DBError
		return domain.Taller{}, err
	}

	return taller, nil
}

// ListarTalleres devuelve todos los talleres activos (listado administrativo).
func (s *Service) ListarTalleres(ctx domain.Context) ([]domain.Taller, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ListarTalleres", nil)
	}

	talleres, err := s.repo.ListarTodos(ctxGo)
	if err != nil {
		s.logger.Error("Falla al listar talleres en el repositorio.", err)
		return nil, err
	}

	return talleres, nil
}

// ActualizarTerminos ajusta la comisión y opcionalmente el límite de un taller.
// Rechaza comisiones fuera de [0, 20] y límites negativos ANTES de tocar el
// registro: ante entrada inválida el taller queda exactamente como estaba.
// Las transacciones existentes conservan su comision_aplicada (snapshot).
func (s *Service) ActualizarTerminos(ctx domain.Context, id string, terminos domain.TerminosComerciales) (domain.Taller, error) {
	s.logger.Debug("Iniciando actualización de términos en el servicio.", map[string]interface{}{
		"id":       id,
		"comision": terminos.Comision.String(),
	})

	if _, err := uuid.Parse(id); err != nil {
		return domain.Taller{}, apperror.NewValidationError("El ID del taller debe ser un UUID válido.")
	}
	if terminos.Comision.IsNegative() || terminos.Comision.GreaterThan(comisionMaxima) {
		return domain.Taller{}, apperror.NewValidationError("La comisión debe estar entre 0 y 20.")
	}
	if terminos.Limite != nil && terminos.Limite.IsNegative() {
		return domain.Taller{}, apperror.NewValidationError("El límite de cash-out no puede ser negativo.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de dominio inválido, usando context.Background() para ActualizarTerminos", nil)
	}

	actualizado, err := s.repo.ActualizarTerminos(ctxGo, id, terminos)
	if err != nil {
		s.logger.Error("Falla al actualizar los términos del taller en el repositorio.", err)
		return domain.Taller{}, err
	}

	s.logger.Info("Términos comerciales actualizados con éxito.", map[string]interface{}{
		"id":             actualizado.ID,
		"nueva_comision": actualizado.ComisionPersonal.String(),
	})
	return actualizado, nil
}
