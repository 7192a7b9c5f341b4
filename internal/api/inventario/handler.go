package inventario

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// InventarioService define el contrato que el Handler espera de la capa de Servicio.
type InventarioService interface {
	AgregarItem(ctx domain.Context, item domain.Inventario) (domain.Inventario, error)
	ListarPorTaller(ctx domain.Context, tallerID string) ([]domain.Inventario, error)
}

// SolicitudInventario es el payload de POST /api/inventario. El valor total
// se deriva en el servidor; no forma parte del payload.
type SolicitudInventario struct {
	TallerID      string  `json:"taller_id" validate:"required,uuid4"`
	Categoria     string  `json:"categoria" validate:"required"`
	Descripcion   string  `json:"descripcion"`
	Cantidad      int     `json:"cantidad" validate:"required,gt=0"`
	ValorUnitario float64 `json:"valor_unitario" validate:"required,gt=0"`
	Estado        string  `json:"estado" validate:"omitempty,oneof=disponible en_evaluacion vendido"`
}

// Handler agrupa los métodos de Handler del libro de inventario.
type Handler struct {
	Service  InventarioService
	Validate *validator.Validate
	Logger   logger.Logger
}

// NewHandler crea una nueva instancia del Handler, inyectando el Service y el Logger.
func NewHandler(svc InventarioService, log logger.Logger) *Handler {
	return &Handler{
		Service:  svc,
		Validate: validator.New(),
		Logger:   log,
	}
}

// handleServiceResponse procesa errores de servicio y envía respuestas estandarizadas al cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falla al codificar JSON de respuesta", jsonErr)
				http.Error(w, "Error al codificar respuesta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Error de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Solicitud rechazada con status %d. Categoría: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// InventarioHandler despacha POST (alta de partida) y GET (listado) sobre /api/inventario.
func (h *Handler) InventarioHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.agregarItem(w, r)
	case http.MethodGet:
		h.listarPorTaller(w, r)
	default:
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
	}
}

// agregarItem atiende la solicitud POST /api/inventario.
// @Summary Registra una partida de inventario
// @Description Da de alta una partida textil; el valor total se deriva como cantidad * valor unitario.
// @Tags inventario
// @Accept json
// @Produce json
// @Param partida body SolicitudInventario true "Datos de la partida"
// @Success 201 {object} domain.Inventario "Partida registrada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Error interno del servidor"
// @Router /inventario [post]
func (h *Handler) agregarItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var solicitud SolicitudInventario
	if err := json.NewDecoder(r.Body).Decode(&solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique el formato JSON."), http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Taller, categoría, cantidad positiva y valor unitario positivo son obligatorios."), http.StatusBadRequest)
		return
	}

	item := domain.Inventario{
		TallerID:      solicitud.TallerID,
		Categoria:     solicitud.Categoria,
		Descripcion:   solicitud.Descripcion,
		Cantidad:      solicitud.Cantidad,
		ValorUnitario: decimal.NewFromFloat(solicitud.ValorUnitario),
		Estado:        domain.EstadoInventario(solicitud.Estado),
	}

	creado, err := h.Service.AgregarItem(ctx, item)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, creado, nil, http.StatusCreated)
}

// listarPorTaller atiende la solicitud GET /api/inventario?taller_id={id}.
// @Summary Lista las partidas de inventario de un taller
// @Description Devuelve las partidas del taller, más recientes primero.
// @Tags inventario
// @Produce json
// @Param taller_id query string true "ID del Taller"
// @Success 200 {array} domain.Inventario "Partidas del taller"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Router /inventario [get]
func (h *Handler) listarPorTaller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tallerID := r.URL.Query().Get("taller_id")
	if tallerID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("El parámetro 'taller_id' es obligatorio."), http.StatusBadRequest)
		return
	}

	partidas, err := h.Service.ListarPorTaller(ctx, tallerID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, partidas, nil, http.StatusOK)
}
