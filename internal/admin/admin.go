// Package admin expone la gestión de usuarios reservada al rol
// administrador: listado, cambio de rol y baja.
package admin

import (
	"context"
	"errors"
	"net/url"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// ErrUnknownRole: el rol pedido no es uno de los tres válidos.
var ErrUnknownRole = errors.New("admin: rol desconocido")

// User es un usuario del listado administrativo.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Service agrupa las operaciones de administración. El backend valida el
// rol del llamador vía el header user-role; acá no se re-chequea.
type Service struct {
	client *api.Client
}

// NewService crea el servicio sobre el cliente dado.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Users retorna el listado completo de usuarios.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.Get(ctx, "/api/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole cambia el rol de un usuario. Valida el rol localmente antes de
// enviar, para no mandar valores fuera del set.
func (s *Service) SetRole(ctx context.Context, id, role string) error {
	if !session.KnownRole(role) {
		return ErrUnknownRole
	}
	body := map[string]string{"role": role}
	if err := s.client.Put(ctx, "/api/admin/users/"+url.PathEscape(id)+"/role", body, nil); err != nil {
		return err
	}
	logger.From(ctx).Named("admin").Info("rol actualizado",
		logger.String("user_id", id), logger.Role(role))
	return nil
}

// Delete elimina al usuario. La confirmación es responsabilidad del caller.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/api/admin/users/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	logger.From(ctx).Named("admin").Info("usuario eliminado", logger.String("user_id", id))
	return nil
}
