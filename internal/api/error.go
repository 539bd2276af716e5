package api

import (
	"errors"
	"fmt"
)

// Error es la falla clasificada que retorna todo endpoint: status HTTP
// original + el body que mandó el servidor. Los campos de dominio
// (Remaining, GoToLogin) los interpreta cada flujo, no el cliente.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`

	// Remaining: segundos restantes de bloqueo de cuenta (login).
	Remaining int `json:"remaining,omitempty"`

	// GoToLogin: el servidor agotó los intentos y exige reiniciar el flujo.
	GoToLogin bool `json:"goToLogin,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// ErrSessionExpired se retorna cuando un 401 obliga a limpiar la sesión y
// volver al login. Quien lo recibe debe descartar todo estado en curso.
var ErrSessionExpired = errors.New("api: sesión expirada, volver al login")

// AsError extrae el *Error de un error cualquiera (nil si no hay).
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// Remaining retorna los segundos de bloqueo si el error los trae.
func Remaining(err error) (int, bool) {
	if e := AsError(err); e != nil && e.Remaining > 0 {
		return e.Remaining, true
	}
	return 0, false
}

// GoToLogin reporta si el servidor pidió reiniciar el flujo.
func GoToLogin(err error) bool {
	e := AsError(err)
	return e != nil && e.GoToLogin
}

// Message retorna el mensaje del servidor, o fallback si no hay.
func Message(err error, fallback string) string {
	if e := AsError(err); e != nil && e.Message != "" {
		return e.Message
	}
	return fallback
}
