package cashout

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

// CashoutService define el contrato que el Handler espera de la capa de Servicio.
type CashoutService interface {
	SolicitarCashout(ctx domain.Context, tallerID string, valorInventario decimal.Decimal, descripcion string) (domain.Transaccion, error)
}

// SolicitudCashout es el payload de POST /api/solicitar-cashout.
// Los límites de política (100 a 500000) se validan aquí, antes del motor.
type SolicitudCashout struct {
	TallerID    string  `json:"taller_id" validate:"required,uuid4"`
	Valor       float64 `json:"valor_inventario" validate:"required,gte=100,lte=500000"`
	Descripcion string  `json:"descripcion"`
}

// RespuestaCashout es la respuesta de éxito de POST /api/solicitar-cashout.
type RespuestaCashout struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Transaccion domain.Transaccion `json:"transaccion"`
}

// Handler agrupa los métodos de Handler del motor de cash-out.
type Handler struct {
	Service  CashoutService
	Validate *validator.Validate
	Logger   logger.Logger
}

// NewHandler crea una nueva instancia del Handler, inyectando el Service y el Logger.
func NewHandler(svc CashoutService, log logger.Logger) *Handler {
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

// SolicitarCashoutHandler atiende la solicitud POST /api/solicitar-cashout.
// @Summary Solicita un cash-out contra el inventario
// @Description Calcula comisión y monto neto, genera el número de lote y crea la transacción en estado 'pendiente'.
// @Tags cashout
// @Accept json
// @Produce json
// @Param solicitud body SolicitudCashout true "Datos de la solicitud de cash-out"
// @Success 201 {object} RespuestaCashout "Transacción creada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido o fuera de los límites de política"
// @Failure 404 {object} domain.ErrorResponse "Taller no encontrado"
// @Failure 500 {object} domain.ErrorResponse "Error interno del servidor"
// @Router /solicitar-cashout [post]
func (h *Handler) SolicitarCashoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var solicitud SolicitudCashout
	if err := json.NewDecoder(r.Body).Decode(&solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique el formato JSON."), http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("El valor debe estar entre 100 y 500000 y el taller_id debe ser un UUID válido."), http.StatusBadRequest)
		return
	}

	transaccion, err := h.Service.SolicitarCashout(ctx, solicitud.TallerID, decimal.NewFromFloat(solicitud.Valor), solicitud.Descripcion)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	respuesta := RespuestaCashout{
		Success:     true,
		Message:     fmt.Sprintf("Solicitud de cash-out registrada con el lote %s.", transaccion.LoteNumero),
		Transaccion: transaccion,
	}
	h.handleServiceResponse(w, r, respuesta, nil, http.StatusCreated)
}
