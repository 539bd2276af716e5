package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo son los claims que el cliente sabe leer del access token.
// El token se parsea sin verificar firma: validar es trabajo del backend,
// acá solo se inspecciona para mostrar expiración en `whoami`.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// TokenClaims inspecciona el JWT de la sesión. Retorna false si el token
// no tiene forma de JWT (el backend podría emitir tokens opacos).
func (s *Session) TokenClaims() (TokenInfo, bool) {
	if s == nil || s.Token == "" {
		return TokenInfo{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.Token, claims); err != nil {
		return TokenInfo{}, false
	}
	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	return info, true
}

// Expired reporta si el token trae exp y ya venció. Un token opaco o sin
// exp nunca se considera vencido del lado del cliente.
func (s *Session) Expired(now time.Time) bool {
	info, ok := s.TokenClaims()
	if !ok || info.ExpiresAt.IsZero() {
		return false
	}
	return now.After(info.ExpiresAt)
}
