package cashoutservice_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/logger"
	"efectivofacil/internal/service/cashoutservice"
)

// MockTallerRepository es una implementación mock de la interfaz TallerRepository
type MockTallerRepository struct {
	mock.Mock
}

func (m *MockTallerRepository) ObtenerPorID(ctx context.Context, id string) (domain.Taller, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Taller), args.Error(1)
}

// MockTransaccionRepository es una implementación mock de la interfaz TransaccionRepository
type MockTransaccionRepository struct {
	mock.Mock
}

func (m *MockTransaccionRepository) SiguienteNumeroLote(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransaccionRepository) Insertar(ctx context.Context, t domain.Transaccion) (domain.Transaccion, error) {
	args := m.Called(ctx, t)
	if args.Error(1) != nil {
		return domain.Transaccion{}, args.Error(1)
	}
	// El repositorio real devuelve la fila insertada; el mock hace eco.
	return t, nil
}

// fakeCache es un cache en blanco para los tests del motor.
type fakeCache struct{}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) { return "", cache.ErrCacheMiss }
func (f *fakeCache) GetInt(ctx context.Context, key string) (int, error) { return 0, cache.ErrCacheMiss }
func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}
func (f *fakeCache) Incr(ctx context.Context, key string) error   { return nil }
func (f *fakeCache) Delete(ctx context.Context, key string) error { return nil }

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func tallerDePrueba(comision string) domain.Taller {
	return domain.Taller{
		ID:               uuid.New().String(),
		Nombre:           "Textiles George S.A.",
		RFCNit:           "TGS240815ABC",
		Email:            "george@textiles.mx",
		ComisionPersonal: decimal.RequireFromString(comision),
		LimiteCashout:    decimal.NewFromInt(100000),
		Verificado:       true,
		Activo:           true,
	}
}

// --- Tests de SolicitarCashout ---

func TestSolicitarCashout_Success_EscenarioDeReferencia(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := cashoutservice.NewService(mockTalleres, mockTransacciones, &fakeCache{}, newTestLogger())

	taller := tallerDePrueba("3.5")
	mockTalleres.On("ObtenerPorID", mock.Anything, taller.ID).Return(taller, nil)
	mockTransacciones.On("SiguienteNumeroLote", mock.Anything).Return(int64(41), nil)
	mockTransacciones.On("Insertar", mock.Anything, mock.Anything).Return(domain.Transaccion{}, nil)

	ctx := context.Background()
	valor := decimal.NewFromInt(15750)
	result, err := svc.SolicitarCashout(ctx, taller.ID, valor, "lote de ropa deportiva")

	assert.NoError(t, err)
	assert.True(t, decimal.RequireFromString("551.25").Equal(result.MontoComision),
		"comisión esperada 551.25, obtenida %s", result.MontoComision)
	assert.True(t, decimal.RequireFromString("15198.75").Equal(result.MontoNeto),
		"neto esperado 15198.75, obtenido %s", result.MontoNeto)
	assert.Equal(t, domain.EstadoPendiente, result.Estado)
	assert.True(t, taller.ComisionPersonal.Equal(result.ComisionAplicada))
	assert.Equal(t, fmt.Sprintf("CO-%d-000041", time.Now().UTC().Year()), result.LoteNumero)
	mockTalleres.AssertExpectations(t)
	mockTransacciones.AssertExpectations(t)
}

func TestSolicitarCashout_InvarianteComisionMasNeto(t *testing.T) {
	// Para todo valor > 0 y comisión en [0, 100]:
	// monto_comision + monto_neto == valor_inventario, exacto a dos decimales.
	casos := []struct {
		valor    string
		comision string
	}{
		{"15750", "3.5"},
		{"100", "0"},
		{"500000", "20"},
		{"333.33", "7.77"},
		{"0.01", "100"},
		{"123456.78", "12.345"},
	}

	for _, c := range casos {
		valor := decimal.RequireFromString(c.valor)
		comision := decimal.RequireFromString(c.comision)

		montoComision, montoNeto := cashoutservice.CalcularMontos(valor, comision)

		assert.True(t, montoComision.Add(montoNeto).Equal(valor),
			"valor %s con comisión %s: %s + %s != %s",
			c.valor, c.comision, montoComision, montoNeto, c.valor)
		assert.True(t, montoComision.Equal(montoComision.Round(2)),
			"la comisión debe estar redondeada a dos decimales: %s", montoComision)
	}
}

func TestSolicitarCashout_Fail_ValorNoPositivo(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := cashoutservice.NewService(mockTalleres, mockTransacciones, &fakeCache{}, newTestLogger())

	ctx := context.Background()
	for _, valor := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-100)} {
		_, err := svc.SolicitarCashout(ctx, uuid.New().String(), valor, "")

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	mockTalleres.AssertNotCalled(t, "ObtenerPorID")
	mockTransacciones.AssertNotCalled(t, "Insertar")
}

func TestSolicitarCashout_Fail_TallerNoEncontrado(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := cashoutservice.NewService(mockTalleres, mockTransacciones, &fakeCache{}, newTestLogger())

	tallerID := uuid.New().String()
	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).
		Return(domain.Taller{}, apperror.NewNotFoundError("Taller no encontrado"))

	ctx := context.Background()
	_, err := svc.SolicitarCashout(ctx, tallerID, decimal.NewFromInt(5000), "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockTransacciones.AssertNotCalled(t, "Insertar")
}

func TestSolicitarCashout_LotesConsecutivosDistintos(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := cashoutservice.NewService(mockTalleres, mockTransacciones, &fakeCache{}, newTestLogger())

	taller := tallerDePrueba("3.5")
	mockTalleres.On("ObtenerPorID", mock.Anything, taller.ID).Return(taller, nil)
	// La secuencia del almacén entrega valores monótonos
	mockTransacciones.On("SiguienteNumeroLote", mock.Anything).Return(int64(7), nil).Once()
	mockTransacciones.On("SiguienteNumeroLote", mock.Anything).Return(int64(8), nil).Once()
	mockTransacciones.On("Insertar", mock.Anything, mock.Anything).Return(domain.Transaccion{}, nil)

	ctx := context.Background()
	primera, err := svc.SolicitarCashout(ctx, taller.ID, decimal.NewFromInt(1000), "")
	assert.NoError(t, err)
	segunda, err := svc.SolicitarCashout(ctx, taller.ID, decimal.NewFromInt(1000), "")
	assert.NoError(t, err)

	assert.NotEqual(t, primera.LoteNumero, segunda.LoteNumero)
	mockTransacciones.AssertExpectations(t)
}

func TestSolicitarCashout_Fail_ErrorDePersistencia(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := cashoutservice.NewService(mockTalleres, mockTransacciones, &fakeCache{}, newTestLogger())

	taller := tallerDePrueba("2.5")
	mockTalleres.On("ObtenerPorID", mock.Anything, taller.ID).Return(taller, nil)
	mockTransacciones.On("SiguienteNumeroLote", mock.Anything).Return(int64(1), nil)
	mockTransacciones.On("Insertar", mock.Anything, mock.Anything).
		Return(domain.Transaccion{}, apperror.NewDBError("Falla al insertar transacción", errors.New("connection refused")))

	ctx := context.Background()
	_, err := svc.SolicitarCashout(ctx, taller.ID, decimal.NewFromInt(5000), "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockTransacciones.AssertExpectations(t)
}
