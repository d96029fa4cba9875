package handlers

import (
	"net/http"

	"github.com/bitacora-blog/apiserver/internal/validation"
)

// Response messages.
const (
	msgLoginRequired  = "Inicio de sesión requerido"
	msgInvalidToken   = "Token inválido"
	msgForbidden      = "No tiene los permisos necesarios"
	msgBadCredentials = "Usuario o contraseña incorrectos"
	msgBadRequest     = "Solicitud inválida"
	msgBlogNotFound   = "Blog no encontrado"
	msgUserNotFound   = "Usuario no encontrado"
	msgInternal       = "Error interno, por favor intenta más tarde"

	msgUserCreated = "Usuario creado exitosamente"
	msgLoggedIn    = "Sesión iniciada con éxito"
	msgBlogCreated = "Blog creado exitosamente"
	msgBlogUpdated = "Blog actualizado exitosamente"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"message,omitempty"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func (e APIError) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors.Error()
	}
	return e.Message
}

func validationFailed(errs validation.Errors) APIError {
	return APIError{Status: http.StatusUnprocessableEntity, Errors: errs}
}

func badRequest() APIError {
	return APIError{Status: http.StatusBadRequest, Message: msgBadRequest}
}

func loginRequired() APIError {
	return APIError{Status: http.StatusUnauthorized, Message: msgLoginRequired}
}

func invalidToken() APIError {
	return APIError{Status: http.StatusUnauthorized, Message: msgInvalidToken}
}

func badCredentials() APIError {
	return APIError{Status: http.StatusUnauthorized, Message: msgBadCredentials}
}

func forbidden() APIError {
	return APIError{Status: http.StatusForbidden, Message: msgForbidden}
}

func notFound(message string) APIError {
	return APIError{Status: http.StatusNotFound, Message: message}
}

func internal() APIError {
	return APIError{Status: http.StatusInternalServerError, Message: msgInternal}
}
