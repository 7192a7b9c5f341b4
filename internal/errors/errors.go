package errors

import (
	"fmt"
	"net/http"
)

// AppError es la interfaz central de todos los errores tipados del servicio.
// Permite que el código externo (Handler) acceda a la categoría y al mensaje.
type AppError interface {
	Error() string    // Implementa la interfaz error estándar de Go
	Category() string // Categoría del error (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para el Handler
	Unwrap() error    // Permite encapsular el error subyacente
}

// --- Errores de Dominio ---

// ValidationError representa fallas de validación de datos de entrada
// (monto fuera de rango, comisión inválida, payload malformado).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Error de Validación: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError crea un nuevo error de validación.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa la ausencia de un recurso solicitado
// (taller inexistente o dado de baja, transacción desconocida).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso no encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError crea un nuevo error de recurso no encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa un conflicto de regla de negocio, en particular
// una transición de estado inválida sobre una transacción.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflicto de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError crea un nuevo error de conflicto.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Errores de Infraestructura (Encapsulamiento) ---

// InternalError representa fallas inesperadas en el servidor, servicio o repositorio.
type InternalError struct {
	Msg string
	Err error // Error original subyacente (e.g., error del driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Error Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError crea un error de servidor (fallas de lógica o código inesperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError es un atajo para crear un InternalError específico de fallas en el DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para el Handler (Traducción Final) ---

// MapToHTTPStatus recibe un error y lo traduce al código HTTP y cuerpo de respuesta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		// El error es tipado (ValidationError, NotFoundError, etc.)
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Error no tipado: tratar como error interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocurrió un error inesperado."
}
