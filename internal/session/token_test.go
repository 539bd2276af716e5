package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	sess := &Session{Token: signedToken(t, jwt.MapClaims{
		"sub": "ana@example.com",
		"exp": exp.Unix(),
	})}

	info, ok := sess.TokenClaims()
	if !ok {
		t.Fatal("expected claims from a well-formed JWT")
	}
	if info.Subject != "ana@example.com" {
		t.Fatalf("subject: %q", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Fatalf("exp: got %v want %v", info.ExpiresAt, exp)
	}
}

func TestTokenClaims_OpaqueToken(t *testing.T) {
	sess := &Session{Token: "not-a-jwt"}
	if _, ok := sess.TokenClaims(); ok {
		t.Fatal("opaque token must not yield claims")
	}
	// Un token opaco nunca se considera vencido del lado del cliente
	if sess.Expired(time.Now()) {
		t.Fatal("opaque token must not be expired")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := &Session{Token: signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})}
	future := &Session{Token: signedToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})}
	noExp := &Session{Token: signedToken(t, jwt.MapClaims{"sub": "x"})}

	if !past.Expired(now) {
		t.Fatal("token with past exp must be expired")
	}
	if future.Expired(now) {
		t.Fatal("token with future exp must not be expired")
	}
	if noExp.Expired(now) {
		t.Fatal("token without exp must not be expired")
	}
}
