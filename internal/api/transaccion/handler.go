package transaccion

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// TransaccionService define el contrato que el Handler espera de la capa de Servicio.
type TransaccionService interface {
	ListarRecientes(ctx domain.Context, tallerID string, limite int) ([]domain.Transaccion, error)
	AvanzarEstado(ctx domain.Context, id string, cambio domain.CambioEstado) (domain.Transaccion, error)
}

// SolicitudEstado es el payload de PUT /api/transacciones/{id}/estado.
type SolicitudEstado struct {
	Estado         string `json:"estado"`
	MetodoPago     string `json:"metodo_pago"`
	ReferenciaPago string `json:"referencia_pago"`
	NotasAdmin     string `json:"notas_admin"`
}

// RespuestaEstado es la respuesta de éxito de PUT /api/transacciones/{id}/estado.
type RespuestaEstado struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Transaccion domain.Transaccion `json:"transaccion"`
}

// Handler agrupa los métodos de Handler de transacciones.
type Handler struct {
	Service TransaccionService
	Logger  logger.Logger
}

// NewHandler crea una nueva instancia del Handler, inyectando el Service y el Logger.
func NewHandler(svc TransaccionService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
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

// TransaccionesHandler despacha las rutas bajo /api/transacciones/:
// GET /api/transacciones/{taller_id} y PUT /api/transacciones/{id}/estado.
func (h *Handler) TransaccionesHandler(w http.ResponseWriter, r *http.Request) {
	resto := strings.TrimPrefix(r.URL.Path, "/api/transacciones/")

	if strings.HasSuffix(resto, "/estado") {
		h.actualizarEstado(w, r, strings.TrimSuffix(resto, "/estado"))
		return
	}
	h.listarRecientes(w, r, resto)
}

// listarRecientes atiende la solicitud GET /api/transacciones/{taller_id}.
// @Summary Historial de transacciones de un taller
// @Description Devuelve las transacciones del taller, más recientes primero. ?limite=N acota el resultado (default 10).
// @Tags transacciones
// @Produce json
// @Param taller_id path string true "ID del Taller"
// @Param limite query int false "Máximo de transacciones a devolver"
// @Success 200 {array} domain.Transaccion "Historial del taller"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Router /transacciones/{taller_id} [get]
func (h *Handler) listarRecientes(w http.ResponseWriter, r *http.Request, tallerID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	limite := 0
	if v := r.URL.Query().Get("limite"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("El parámetro 'limite' debe ser un entero no negativo."), http.StatusBadRequest)
			return
		}
		limite = n
	}

	transacciones, err := h.Service.ListarRecientes(ctx, tallerID, limite)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, transacciones, nil, http.StatusOK)
}

// actualizarEstado atiende la solicitud PUT /api/transacciones/{id}/estado.
// @Summary Avanza el ciclo de vida de una transacción
// @Description Mueve la transacción al estado destino (pendiente → evaluacion → aprobado → completado; cancelado desde cualquier estado no terminal).
// @Tags transacciones
// @Accept json
// @Produce json
// @Param id path string true "ID de la Transacción"
// @Param cambio body SolicitudEstado true "Estado destino y datos de pago opcionales"
// @Success 200 {object} RespuestaEstado "Transacción actualizada"
// @Failure 400 {object} domain.ErrorResponse "Estado desconocido o ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Transacción no encontrada"
// @Failure 409 {object} domain.ErrorResponse "Transición no permitida por el ciclo de vida"
// @Router /transacciones/{id}/estado [put]
func (h *Handler) actualizarEstado(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var solicitud SolicitudEstado
	if err := json.NewDecoder(r.Body).Decode(&solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique el formato JSON."), http.StatusBadRequest)
		return
	}

	cambio := domain.CambioEstado{
		Destino:        domain.EstadoTransaccion(solicitud.Estado),
		MetodoPago:     solicitud.MetodoPago,
		ReferenciaPago: solicitud.ReferenciaPago,
		NotasAdmin:     solicitud.NotasAdmin,
	}

	transaccion, err := h.Service.AvanzarEstado(ctx, id, cambio)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	respuesta := RespuestaEstado{
		Success:     true,
		Message:     fmt.Sprintf("Transacción %s ahora en estado '%s'.", transaccion.LoteNumero, transaccion.Estado),
		Transaccion: transaccion,
	}
	h.handleServiceResponse(w, r, respuesta, nil, http.StatusOK)
}
