// Package support envía mensajes al equipo de soporte.
package support

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
)

var (
	ErrEmailRequired   = errors.New("support: ingresa tu correo")
	ErrMessageRequired = errors.New("support: escribe tu mensaje")
)

// ticket es el cuerpo del POST, con los nombres de campo del backend.
type ticket struct {
	Correo  string `json:"correo"`
	Mensaje string `json:"mensaje"`
}

// Send valida localmente y envía el mensaje. Retorna el mensaje de
// confirmación del servidor.
func Send(ctx context.Context, client *api.Client, correo, mensaje string) (string, error) {
	correo = strings.TrimSpace(correo)
	mensaje = strings.TrimSpace(mensaje)
	if correo == "" {
		return "", ErrEmailRequired
	}
	if mensaje == "" {
		return "", ErrMessageRequired
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := client.Post(ctx, "/api/event/soporte", ticket{Correo: correo, Mensaje: mensaje}, &resp); err != nil {
		return "", err
	}
	logger.From(ctx).Named("support").Info("mensaje de soporte enviado", logger.Email(correo))
	return resp.Message, nil
}
