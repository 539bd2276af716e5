// Package session maneja la sesión persistida del cliente: token, rol y
// perfil del usuario. Es el único estado que sobrevive entre ejecuciones.
//
// Invariante: token, rol y usuario se escriben siempre juntos. Una sesión
// con token pero sin rol (o al revés) nunca es observable.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Roles conocidos por el backend. Un rol desconocido manda de vuelta al login.
const (
	RoleUsuario       = "usuario"
	RoleModerador     = "moderador"
	RoleAdministrador = "administrador"
)

// KnownRole indica si el rol tiene página de destino propia.
func KnownRole(role string) bool {
	switch role {
	case RoleUsuario, RoleModerador, RoleAdministrador:
		return true
	}
	return false
}

// User es el perfil que el backend entrega en login/verify-mfa.
type User struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Session es el artefacto de identidad autenticada.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	User  User   `json:"user"`
}

// Valid reporta si la sesión cumple el invariante token+rol+usuario.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.Role != "" && s.User.Email != ""
}

// Timestamp acepta los dos formatos que el backend ha usado para createdAt:
// un objeto {"seconds": N} (Firestore) o un string RFC 3339.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return nil
	}
	if strings.HasPrefix(s, "{") {
		var v struct {
			Seconds int64 `json:"seconds"`
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		t.Time = time.Unix(v.Seconds, 0).UTC()
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("createdAt: formato no soportado: %s", s)
	}
	parsed, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
