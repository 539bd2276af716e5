package flow

import "github.com/dropDatabas3/eventapp-cli/internal/session"

// Route es el destino de navegación tras un paso terminal de un flujo.
type Route string

const (
	RouteLogin     Route = "login"
	RouteUsuario   Route = "usuario"
	RouteModerador Route = "moderador"
	RouteAdmin     Route = "admin"
)

// RouteForRole resuelve la página de destino según el rol. Un rol
// desconocido vuelve al login: nunca se navega a ciegas.
func RouteForRole(role string) Route {
	switch role {
	case session.RoleUsuario:
		return RouteUsuario
	case session.RoleModerador:
		return RouteModerador
	case session.RoleAdministrador:
		return RouteAdmin
	default:
		return RouteLogin
	}
}
