package taller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"efectivofacil/internal/domain"
	apperror "efectivofacil/internal/errors"
	"efectivofacil/internal/pkg/logger"
)

// TallerService define el contrato que el Handler espera de la capa de Servicio.
type TallerService interface {
	RegistrarTaller(ctx domain.Context, taller domain.Taller) (domain.Taller, error)
	ObtenerTaller(ctx domain.Context, id string) (domain.Taller, error)
	ListarTalleres(ctx domain.Context) ([]domain.Taller, error)
	ActualizarTerminos(ctx domain.Context, id string, terminos domain.TerminosComerciales) (domain.Taller, error)
}

// SolicitudRegistro es el payload de POST /api/talleres.
type SolicitudRegistro struct {
	Nombre             string   `json:"nombre" validate:"required"`
	RFCNit             string   `json:"rfc_nit" validate:"required"`
	Email              string   `json:"email" validate:"required,email"`
	Telefono           string   `json:"telefono"`
	Direccion          string   `json:"direccion"`
	Ciudad             string   `json:"ciudad"`
	CodigoPostal       string   `json:"codigo_postal"`
	EspecialidadTextil string   `json:"especialidad_textil"`
	FotoURL            string   `json:"foto_url"`
	Comision           float64  `json:"comision" validate:"gte=0,lte=20"`
	Limite             *float64 `json:"limite" validate:"omitempty,gte=0"`
}

// SolicitudComision es el payload de POST /api/actualizar-comision.
type SolicitudComision struct {
	TallerID string   `json:"taller_id" validate:"required,uuid4"`
	Comision float64  `json:"comision" validate:"gte=0,lte=20"`
	Limite   *float64 `json:"limite" validate:"omitempty,gte=0"`
}

// RespuestaComision es la respuesta de éxito de POST /api/actualizar-comision.
type RespuestaComision struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	NuevaComision decimal.Decimal `json:"nueva_comision"`
	NuevoLimite   decimal.Decimal `json:"nuevo_limite"`
}

// Handler agrupa los métodos de Handler del registro de talleres.
type Handler struct {
	Service  TallerService
	Validate *validator.Validate
	Logger   logger.Logger
}

// NewHandler crea una nueva instancia del Handler, inyectando el Service y el Logger.
func NewHandler(svc TallerService, log logger.Logger) *Handler {
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

// TalleresHandler despacha POST (registro) y GET (listado) sobre /api/talleres.
func (h *Handler) TalleresHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.registrarTaller(w, r)
	case http.MethodGet:
		h.listarTalleres(w, r)
	default:
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
	}
}

// registrarTaller atiende la solicitud POST /api/talleres.
// @Summary Registra un nuevo taller
// @Description Da de alta un taller textil con sus condiciones comerciales iniciales.
// @Tags talleres
// @Accept json
// @Produce json
// @Param taller body SolicitudRegistro true "Datos del taller"
// @Success 201 {object} domain.Taller "Taller registrado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Error interno del servidor"
// @Router /talleres [post]
func (h *Handler) registrarTaller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var solicitud SolicitudRegistro
	if err := json.NewDecoder(r.Body).Decode(&solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique el formato JSON."), http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Nombre, RFC y email son obligatorios; la comisión debe estar entre 0 y 20."), http.StatusBadRequest)
		return
	}

	taller := domain.Taller{
		Nombre:             solicitud.Nombre,
		RFCNit:             solicitud.RFCNit,
		Email:              solicitud.Email,
		Telefono:           solicitud.Telefono,
		Direccion:          solicitud.Direccion,
		Ciudad:             solicitud.Ciudad,
		CodigoPostal:       solicitud.CodigoPostal,
		EspecialidadTextil: solicitud.EspecialidadTextil,
		FotoURL:            solicitud.FotoURL,
		ComisionPersonal:   decimal.NewFromFloat(solicitud.Comision),
	}
	if solicitud.Limite != nil {
		taller.LimiteCashout = decimal.NewFromFloat(*solicitud.Limite)
	}

	creado, err := h.Service.RegistrarTaller(ctx, taller)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, creado, nil, http.StatusCreated)
}

// listarTalleres atiende la solicitud GET /api/talleres.
// @Summary Lista los talleres activos
// @Description Devuelve todos los talleres activos ordenados por nombre.
// @Tags talleres
// @Produce json
// @Success 200 {array} domain.Taller "Lista de talleres"
// @Failure 500 {object} domain.ErrorResponse "Error interno del servidor"
// @Router /talleres [get]
func (h *Handler) listarTalleres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	talleres, err := h.Service.ListarTalleres(ctx)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, talleres, nil, http.StatusOK)
}

// ObtenerTallerHandler atiende la solicitud GET /api/talleres/{id}.
// @Summary Obtiene un taller por ID
// @Description Busca un taller activo por su UUID.
// @Tags talleres
// @Produce json
// @Param id path string true "ID del Taller"
// @Success 200 {object} domain.Taller "Taller encontrado"
// @Failure 404 {object} domain.ErrorResponse "Taller no encontrado"
// @Failure 500 {object} domain.ErrorResponse "Error interno del servidor"
// @Router /talleres/{id} [get]
func (h *Handler) ObtenerTallerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	id := strings.TrimPrefix(r.URL.Path, "/api/talleres/")

	taller, err := h.Service.ObtenerTaller(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, taller, nil, http.StatusOK)
}

// ActualizarComisionHandler atiende la solicitud POST /api/actualizar-comision.
// @Summary Ajusta las condiciones comerciales de un taller
// @Description Actualiza la comisión (0 a 20) y opcionalmente el límite de cash-out. Las transacciones ya creadas conservan su comisión aplicada.
// @Tags talleres
// @Accept json
// @Produce json
// @Param terminos body SolicitudComision true "Nuevas condiciones comerciales"
// @Success 200 {object} RespuestaComision "Condiciones actualizadas"
// @Failure 400 {object} domain.ErrorResponse "Comisión fuera de rango o payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Taller no encontrado"
// @Failure 500 {object} domain.ErrorResponse "Error interno del servidor"
// @Router /actualizar-comision [post]
func (h *Handler) ActualizarComisionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var solicitud SolicitudComision
	if err := json.NewDecoder(r.Body).Decode(&solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique el formato JSON."), http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(solicitud); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("La comisión debe estar entre 0 y 20 y el taller_id debe ser un UUID válido."), http.StatusBadRequest)
		return
	}

	terminos := domain.TerminosComerciales{Comision: decimal.NewFromFloat(solicitud.Comision)}
	if solicitud.Limite != nil {
		limite := decimal.NewFromFloat(*solicitud.Limite)
		terminos.Limite = &limite
	}

	actualizado, err := h.Service.ActualizarTerminos(ctx, solicitud.TallerID, terminos)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	respuesta := RespuestaComision{
		Success:      true,
		Message:      fmt.Sprintf("Condiciones comerciales de %s actualizadas.", actualizado.Nombre),
		NuevaComision: actualizado.ComisionPersonal,
		NuevoLimite:   actualizado.LimiteCashout,
	}
	h.handleServiceResponse(w, r, respuesta, nil, http.StatusOK)
}
