package transaccion_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"efectivofacil/internal/api/transaccion"
	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// MockTransaccionService es una implementación mock de la interfaz TransaccionService
type MockTransaccionService struct {
	mock.Mock
}

func (m *MockTransaccionService) ListarRecientes(ctx domain.Context, tallerID string, limite int) ([]domain.Transaccion, error) {
	args := m.Called(ctx, tallerID, limite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaccion), args.Error(1)
}

func (m *MockTransaccionService) AvanzarEstado(ctx domain.Context, id string, cambio domain.CambioEstado) (domain.Transaccion, error) {
	args := m.Called(ctx, id, cambio)
	return args.Get(0).(domain.Transaccion), args.Error(1)
}

func newHandler(svc *MockTransaccionService) *transaccion.Handler {
	return transaccion.NewHandler(svc, logger.NewLogger("error"))
}

const tallerID = "a3bb189e-8bf9-4888-9912-ace4e6543002"
const transaccionID = "2b0e9a47-1a5b-4c3f-9d1e-6f7a8b9c0d1e"

func TestTransaccionesHandler_HistorialConLimite(t *testing.T) {
	mockSvc := new(MockTransaccionService)
	h := newHandler(mockSvc)

	mockSvc.On("ListarRecientes", mock.Anything, tallerID, 5).
		Return([]domain.Transaccion{{ID: transaccionID, LoteNumero: "CO-2026-000041"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/transacciones/"+tallerID+"?limite=5", nil)
	rec := httptest.NewRecorder()
	h.TransaccionesHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CO-2026-000041")
	mockSvc.AssertExpectations(t)
}

func TestTransaccionesHandler_LimiteInvalido(t *testing.T) {
	mockSvc := new(MockTransaccionService)
	h := newHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/transacciones/"+tallerID+"?limite=muchas", nil)
	rec := httptest.NewRecorder()
	h.TransaccionesHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "ListarRecientes")
}

func TestTransaccionesHandler_AvanzarEstado(t *testing.T) {
	mockSvc := new(MockTransaccionService)
	h := newHandler(mockSvc)

	esperado := domain.CambioEstado{
		Destino:    domain.EstadoCompletado,
		MetodoPago: "transferencia",
	}
	mockSvc.On("AvanzarEstado", mock.Anything, transaccionID, esperado).
		Return(domain.Transaccion{ID: transaccionID, LoteNumero: "CO-2026-000041", Estado: domain.EstadoCompletado}, nil)

	body := `{"estado":"completado","metodo_pago":"transferencia"}`
	req := httptest.NewRequest(http.MethodPut, "/api/transacciones/"+transaccionID+"/estado", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.TransaccionesHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"estado":"completado"`)
	mockSvc.AssertExpectations(t)
}

func TestTransaccionesHandler_TransicionInvalidaDevuelve409(t *testing.T) {
	mockSvc := new(MockTransaccionService)
	h := newHandler(mockSvc)

	mockSvc.On("AvanzarEstado", mock.Anything, transaccionID, mock.Anything).
		Return(domain.Transaccion{}, apperror.NewConflictError("La transacción ya está en un estado terminal."))

	body := `{"estado":"evaluacion"}`
	req := httptest.NewRequest(http.MethodPut, "/api/transacciones/"+transaccionID+"/estado", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.TransaccionesHandler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
}

func TestTransaccionesHandler_MetodoIncorrectoEnEstado(t *testing.T) {
	mockSvc := new(MockTransaccionService)
	h := newHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/transacciones/"+transaccionID+"/estado", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.TransaccionesHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	mockSvc.AssertNotCalled(t, "AvanzarEstado")
}
