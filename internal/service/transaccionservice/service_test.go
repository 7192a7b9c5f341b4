package transaccionservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/demo"
	"efectivofacil/internal/pkg/logger"
	"efectivofacil/internal/service/transaccionservice"
)

// MockTransaccionRepository es una implementación mock de la interfaz TransaccionRepository
type MockTransaccionRepository struct {
	mock.Mock
}

func (m *MockTransaccionRepository) ListarRecientes(ctx context.Context, tallerID string, limite int) ([]domain.Transaccion, error) {
	args := m.Called(ctx, tallerID, limite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaccion), args.Error(1)
}

func (m *MockTransaccionRepository) ActualizarEstado(ctx context.Context, id string, cambio domain.CambioEstado) (domain.Transaccion, error) {
	args := m.Called(ctx, id, cambio)
	return args.Get(0).(domain.Transaccion), args.Error(1)
}

// spyCache registra las claves invalidadas.
type spyCache struct {
	eliminadas []string
}

func (f *spyCache) Get(ctx context.Context, key string) (string, error) { return "", cache.ErrCacheMiss }
func (f *spyCache) GetInt(ctx context.Context, key string) (int, error) { return 0, cache.ErrCacheMiss }
func (f *spyCache) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}
func (f *spyCache) Incr(ctx context.Context, key string) error { return nil }
func (f *spyCache) Delete(ctx context.Context, key string) error {
	f.eliminadas = append(f.eliminadas, key)
	return nil
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func newTestService(repo *MockTransaccionRepository, c cache.Client) *transaccionservice.Service {
	return transaccionservice.NewService(repo, c, demo.NuevoEstatico(), newTestLogger())
}

// --- Tests de ListarRecientes ---

func TestListarRecientes_Success(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	tallerID := uuid.New().String()
	esperadas := []domain.Transaccion{
		{ID: uuid.New().String(), TallerID: tallerID, LoteNumero: "CO-2026-000012"},
		{ID: uuid.New().String(), TallerID: tallerID, LoteNumero: "CO-2026-000011"},
	}
	mockRepo.On("ListarRecientes", mock.Anything, tallerID, 5).Return(esperadas, nil)

	transacciones, err := svc.ListarRecientes(context.Background(), tallerID, 5)

	assert.NoError(t, err)
	assert.Equal(t, esperadas, transacciones)
	mockRepo.AssertExpectations(t)
}

func TestListarRecientes_LimiteDefault(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	tallerID := uuid.New().String()
	// Un límite no positivo cae al default de 10.
	mockRepo.On("ListarRecientes", mock.Anything, tallerID, 10).Return([]domain.Transaccion{}, nil)

	_, err := svc.ListarRecientes(context.Background(), tallerID, 0)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListarRecientes_IDInvalido(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	_, err := svc.ListarRecientes(context.Background(), "no-es-uuid", 10)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ListarRecientes")
}

func TestListarRecientes_FallaDeAlmacen_DegradaARespaldo(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	tallerID := uuid.New().String()
	mockRepo.On("ListarRecientes", mock.Anything, tallerID, 10).
		Return(nil, errors.New("connection refused"))

	transacciones, err := svc.ListarRecientes(context.Background(), tallerID, 10)

	// La página del historial no se rompe: responde con los datos de respaldo.
	assert.NoError(t, err)
	assert.NotEmpty(t, transacciones)
	assert.Equal(t, tallerID, transacciones[0].TallerID)
	mockRepo.AssertExpectations(t)
}

// --- Tests de AvanzarEstado ---

func TestAvanzarEstado_Success(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	id := uuid.New().String()
	cambio := domain.CambioEstado{Destino: domain.EstadoEvaluacion}
	actualizada := domain.Transaccion{
		ID:         id,
		TallerID:   uuid.New().String(),
		LoteNumero: "CO-2026-000033",
		Estado:     domain.EstadoEvaluacion,
	}
	mockRepo.On("ActualizarEstado", mock.Anything, id, cambio).Return(actualizada, nil)

	transaccion, err := svc.AvanzarEstado(context.Background(), id, cambio)

	assert.NoError(t, err)
	assert.Equal(t, domain.EstadoEvaluacion, transaccion.Estado)
	mockRepo.AssertExpectations(t)
}

func TestAvanzarEstado_IDInvalido(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	_, err := svc.AvanzarEstado(context.Background(), "abc", domain.CambioEstado{Destino: domain.EstadoEvaluacion})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ActualizarEstado")
}

func TestAvanzarEstado_DestinoDesconocido(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	_, err := svc.AvanzarEstado(context.Background(), uuid.New().String(), domain.CambioEstado{Destino: "enviado"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ActualizarEstado")
}

func TestAvanzarEstado_ConflictoPropagado(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	svc := newTestService(mockRepo, &spyCache{})

	id := uuid.New().String()
	cambio := domain.CambioEstado{Destino: domain.EstadoCompletado}
	conflicto := apperror.NewConflictError("La transacción no admite la transición solicitada.")
	mockRepo.On("ActualizarEstado", mock.Anything, id, cambio).
		Return(domain.Transaccion{}, conflicto)

	_, err := svc.AvanzarEstado(context.Background(), id, cambio)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}

func TestAvanzarEstado_EstadoTerminal_InvalidaCacheDeEstadisticas(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	spy := &spyCache{}
	svc := newTestService(mockRepo, spy)

	id := uuid.New().String()
	tallerID := uuid.New().String()
	cambio := domain.CambioEstado{Destino: domain.EstadoCompletado, MetodoPago: "transferencia"}
	completada := domain.Transaccion{ID: id, TallerID: tallerID, Estado: domain.EstadoCompletado}
	mockRepo.On("ActualizarEstado", mock.Anything, id, cambio).Return(completada, nil)

	_, err := svc.AvanzarEstado(context.Background(), id, cambio)

	assert.NoError(t, err)
	assert.Contains(t, spy.eliminadas, cache.ClaveEstadisticasTaller(tallerID))
}

func TestAvanzarEstado_EstadoIntermedio_NoTocaElCache(t *testing.T) {
	mockRepo := new(MockTransaccionRepository)
	spy := &spyCache{}
	svc := newTestService(mockRepo, spy)

	id := uuid.New().String()
	cambio := domain.CambioEstado{Destino: domain.EstadoAprobado}
	aprobada := domain.Transaccion{ID: id, TallerID: uuid.New().String(), Estado: domain.EstadoAprobado}
	mockRepo.On("ActualizarEstado", mock.Anything, id, cambio).Return(aprobada, nil)

	_, err := svc.AvanzarEstado(context.Background(), id, cambio)

	assert.NoError(t, err)
	assert.Empty(t, spy.eliminadas)
}
