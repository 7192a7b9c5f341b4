package estadisticasservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"efectivofacil/internal/domain"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/demo"
	"efectivofacil/internal/pkg/logger"
	"efectivofacil/internal/service/estadisticasservice"
)

// MockTallerRepository es una implementación mock de la interfaz TallerRepository
type MockTallerRepository struct {
	mock.Mock
}

func (m *MockTallerRepository) ObtenerPorID(ctx context.Context, id string) (domain.Taller, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Taller), args.Error(1)
}

// MockInventarioRepository es una implementación mock de la interfaz InventarioRepository
type MockInventarioRepository struct {
	mock.Mock
}

func (m *MockInventarioRepository) ValorDisponible(ctx context.Context, tallerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tallerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTransaccionRepository es una implementación mock de la interfaz TransaccionRepository
type MockTransaccionRepository struct {
	mock.Mock
}

func (m *MockTransaccionRepository) ContarMesActual(ctx context.Context, tallerID string) (int, error) {
	args := m.Called(ctx, tallerID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransaccionRepository) TotalesCompletados(ctx context.Context, tallerID string) (int, decimal.Decimal, error) {
	args := m.Called(ctx, tallerID)
	return args.Int(0), args.Get(1).(decimal.Decimal), args.Error(2)
}

// memCache es un cache en memoria para verificar la estrategia cache-aside.
type memCache struct {
	datos map[string]string
}

func newMemCache() *memCache {
	return &memCache{datos: make(map[string]string)}
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.datos[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) GetInt(ctx context.Context, key string) (int, error) {
	return 0, cache.ErrCacheMiss
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	switch v := value.(type) {
	case []byte:
		c.datos[key] = string(v)
	case string:
		c.datos[key] = v
	}
	return nil
}

func (c *memCache) Incr(ctx context.Context, key string) error   { return nil }
func (c *memCache) Delete(ctx context.Context, key string) error { delete(c.datos, key); return nil }

func newTestService(
	talleres *MockTallerRepository,
	inventario *MockInventarioRepository,
	transacciones *MockTransaccionRepository,
	c cache.Client,
) *estadisticasservice.Service {
	return estadisticasservice.NewService(
		talleres, inventario, transacciones, c,
		demo.NuevoEstatico(), 5*time.Minute, logger.NewLogger("error"),
	)
}

func tallerDePrueba(id string) domain.Taller {
	return domain.Taller{
		ID:               id,
		Nombre:           "Textiles George S.A.",
		ComisionPersonal: decimal.RequireFromString("2.5"),
		LimiteCashout:    decimal.NewFromInt(250000),
		Activo:           true,
	}
}

func TestObtenerEstadisticas_AgregaDesdeElAlmacen(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockInventario := new(MockInventarioRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := newTestService(mockTalleres, mockInventario, mockTransacciones, newMemCache())

	tallerID := uuid.New().String()
	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).Return(tallerDePrueba(tallerID), nil)
	mockInventario.On("ValorDisponible", mock.Anything, tallerID).Return(decimal.NewFromInt(100000), nil)
	mockTransacciones.On("ContarMesActual", mock.Anything, tallerID).Return(7, nil)
	mockTransacciones.On("TotalesCompletados", mock.Anything, tallerID).
		Return(19, decimal.RequireFromString("451230.50"), nil)

	stats, err := svc.ObtenerEstadisticas(context.Background(), tallerID)

	assert.NoError(t, err)
	assert.False(t, stats.DatosDeRespaldo)
	assert.True(t, stats.InventarioTotal.Equal(decimal.NewFromInt(100000)))
	// 0.8 * 100000 = 80000, por debajo del límite de 250000.
	assert.True(t, stats.CashoutDisponible.Equal(decimal.NewFromInt(80000)))
	assert.Equal(t, 7, stats.TransaccionesMes)
	assert.Equal(t, 19, stats.TotalCashouts)
	assert.True(t, stats.ValorTotalRetirado.Equal(decimal.RequireFromString("451230.50")))
	assert.True(t, stats.ComisionActual.Equal(decimal.RequireFromString("2.5")))
	mockTalleres.AssertExpectations(t)
}

func TestObtenerEstadisticas_ElLimiteAcotaElCashout(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockInventario := new(MockInventarioRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := newTestService(mockTalleres, mockInventario, mockTransacciones, newMemCache())

	tallerID := uuid.New().String()
	taller := tallerDePrueba(tallerID)
	taller.LimiteCashout = decimal.NewFromInt(50000)
	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).Return(taller, nil)
	// 0.8 * 100000 = 80000 queda por encima del límite de 50000.
	mockInventario.On("ValorDisponible", mock.Anything, tallerID).Return(decimal.NewFromInt(100000), nil)
	mockTransacciones.On("ContarMesActual", mock.Anything, tallerID).Return(0, nil)
	mockTransacciones.On("TotalesCompletados", mock.Anything, tallerID).Return(0, decimal.Zero, nil)

	stats, err := svc.ObtenerEstadisticas(context.Background(), tallerID)

	assert.NoError(t, err)
	assert.True(t, stats.CashoutDisponible.Equal(decimal.NewFromInt(50000)))
}

func TestObtenerEstadisticas_InventarioCero(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockInventario := new(MockInventarioRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := newTestService(mockTalleres, mockInventario, mockTransacciones, newMemCache())

	tallerID := uuid.New().String()
	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).Return(tallerDePrueba(tallerID), nil)
	mockInventario.On("ValorDisponible", mock.Anything, tallerID).Return(decimal.Zero, nil)
	mockTransacciones.On("ContarMesActual", mock.Anything, tallerID).Return(0, nil)
	mockTransacciones.On("TotalesCompletados", mock.Anything, tallerID).Return(0, decimal.Zero, nil)

	stats, err := svc.ObtenerEstadisticas(context.Background(), tallerID)

	assert.NoError(t, err)
	assert.True(t, stats.CashoutDisponible.IsZero())
}

func TestObtenerEstadisticas_FallaDeAlmacen_DegradaARespaldo(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockInventario := new(MockInventarioRepository)
	mockTransacciones := new(MockTransaccionRepository)
	svc := newTestService(mockTalleres, mockInventario, mockTransacciones, newMemCache())

	tallerID := uuid.New().String()
	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).
		Return(domain.Taller{}, errors.New("connection refused"))

	stats, err := svc.ObtenerEstadisticas(context.Background(), tallerID)

	// El dashboard nunca falla: responde con los datos de respaldo marcados.
	assert.NoError(t, err)
	assert.True(t, stats.DatosDeRespaldo)
	assert.True(t, stats.InventarioTotal.Equal(decimal.NewFromInt(125450)))
	assert.True(t, stats.CashoutDisponible.Equal(decimal.NewFromInt(89250)))
	assert.Equal(t, 24, stats.TransaccionesMes)
	mockInventario.AssertNotCalled(t, "ValorDisponible")
}

func TestObtenerEstadisticas_SegundaLecturaSaleDelCache(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockInventario := new(MockInventarioRepository)
	mockTransacciones := new(MockTransaccionRepository)
	mem := newMemCache()
	svc := newTestService(mockTalleres, mockInventario, mockTransacciones, mem)

	tallerID := uuid.New().String()
	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).Return(tallerDePrueba(tallerID), nil).Once()
	mockInventario.On("ValorDisponible", mock.Anything, tallerID).Return(decimal.NewFromInt(40000), nil).Once()
	mockTransacciones.On("ContarMesActual", mock.Anything, tallerID).Return(3, nil).Once()
	mockTransacciones.On("TotalesCompletados", mock.Anything, tallerID).Return(5, decimal.NewFromInt(90000), nil).Once()

	primera, err := svc.ObtenerEstadisticas(context.Background(), tallerID)
	assert.NoError(t, err)

	// La segunda lectura no vuelve al almacén: los mocks solo admiten una llamada.
	segunda, err := svc.ObtenerEstadisticas(context.Background(), tallerID)
	assert.NoError(t, err)
	assert.True(t, primera.CashoutDisponible.Equal(segunda.CashoutDisponible))
	assert.Equal(t, primera.TransaccionesMes, segunda.TransaccionesMes)
	mockTalleres.AssertExpectations(t)
}

func TestObtenerEstadisticas_CacheCorrupto_VuelveAlAlmacen(t *testing.T) {
	mockTalleres := new(MockTallerRepository)
	mockInventario := new(MockInventarioRepository)
	mockTransacciones := new(MockTransaccionRepository)
	mem := newMemCache()
	svc := newTestService(mockTalleres, mockInventario, mockTransacciones, mem)

	tallerID := uuid.New().String()
	mem.datos[cache.ClaveEstadisticasTaller(tallerID)] = "{esto no es json"

	mockTalleres.On("ObtenerPorID", mock.Anything, tallerID).Return(tallerDePrueba(tallerID), nil)
	mockInventario.On("ValorDisponible", mock.Anything, tallerID).Return(decimal.NewFromInt(10000), nil)
	mockTransacciones.On("ContarMesActual", mock.Anything, tallerID).Return(1, nil)
	mockTransacciones.On("TotalesCompletados", mock.Anything, tallerID).Return(2, decimal.NewFromInt(5000), nil)

	stats, err := svc.ObtenerEstadisticas(context.Background(), tallerID)

	assert.NoError(t, err)
	assert.True(t, stats.CashoutDisponible.Equal(decimal.NewFromInt(8000)))

	// La entrada corrupta quedó reemplazada por el agregado serializado.
	var guardadas domain.EstadisticasTaller
	assert.NoError(t, json.Unmarshal([]byte(mem.datos[cache.ClaveEstadisticasTaller(tallerID)]), &guardadas))
	assert.Equal(t, 1, guardadas.TransaccionesMes)
}
