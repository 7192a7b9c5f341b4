package estadisticas

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// EstadisticasService define el contrato que el Handler espera de la capa de Servicio.
type EstadisticasService interface {
	ObtenerEstadisticas(ctx domain.Context, tallerID string) (domain.EstadisticasTaller, error)
}

// Handler agrupa los métodos de Handler del dashboard.
type Handler struct {
	Service EstadisticasService
	Logger  logger.Logger
}

// NewHandler crea una nueva instancia del Handler, inyectando el Service y el Logger.
func NewHandler(svc EstadisticasService, log logger.Logger) *Handler {
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

// ObtenerEstadisticasHandler atiende la solicitud GET /api/estadisticas/{taller_id}.
// @Summary Dashboard de estadísticas de un taller
// @Description Devuelve el agregado del taller (inventario, cashout disponible, conteos). Degrada a datos de respaldo si el almacén no responde.
// @Tags estadisticas
// @Produce json
// @Param taller_id path string true "ID del Taller"
// @Success 200 {object} domain.EstadisticasTaller "Estadísticas del taller"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Router /estadisticas/{taller_id} [get]
func (h *Handler) ObtenerEstadisticasHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	tallerID := strings.TrimPrefix(r.URL.Path, "/api/estadisticas/")

	stats, err := h.Service.ObtenerEstadisticas(ctx, tallerID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, stats, nil, http.StatusOK)
}
