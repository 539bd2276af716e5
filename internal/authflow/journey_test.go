package authflow_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/apitest"
	"github.com/dropDatabas3/eventapp-cli/internal/authflow"
	"github.com/dropDatabas3/eventapp-cli/internal/flow"
	"github.com/dropDatabas3/eventapp-cli/internal/security/totp"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// Secreto fijo del backend falso, para generar códigos MFA reales.
const mfaSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

// Recorrido completo: credenciales → MFA con un código TOTP de verdad →
// sesión establecida → request autenticado → logout.
func TestJourney_LoginMFAAndAuthenticatedRequest(t *testing.T) {
	srv := apitest.New(t)

	srv.Router.Post("/api/login/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		apitest.Decode(t, r, &body)
		if body.Password != "Abcdefg1!" {
			apitest.Fail(w, http.StatusUnauthorized, "bad_credentials", "credenciales inválidas")
			return
		}
		apitest.JSON(w, http.StatusOK, map[string]any{"mfaRequired": true})
	})

	srv.Router.Post("/api/login/verify-mfa", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
			Token string `json:"token"`
		}
		apitest.Decode(t, r, &body)
		want, err := totp.Code(mfaSecret, time.Now())
		require.NoError(t, err)
		if body.Token != want {
			apitest.Fail(w, http.StatusUnauthorized, "bad_code", "código incorrecto")
			return
		}
		apitest.JSON(w, http.StatusOK, map[string]any{
			"token": "tok-journey",
			"user": map[string]string{
				"name": "Ana", "email": body.Email, "role": session.RoleModerador,
			},
		})
	})

	srv.Router.Get("/api/profile/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-journey", r.Header.Get("Authorization"))
		require.Equal(t, session.RoleModerador, r.Header.Get("user-role"))
		apitest.JSON(w, http.StatusOK, map[string]any{
			"user": map[string]string{"name": "Ana", "email": "ana@example.com"},
		})
	})

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	client := api.New(srv.URL, store, 0)
	f := authflow.New(client, store)
	ctx := context.Background()

	res, err := f.SubmitCredentials(ctx, "ana@example.com", "Abcdefg1!", f.Captcha().Challenge())
	require.NoError(t, err)
	require.True(t, res.MFARequired)

	code, err := totp.Code(mfaSecret, time.Now())
	require.NoError(t, err)

	res, err = f.SubmitMFACode(ctx, code)
	require.NoError(t, err)
	require.Equal(t, flow.RouteModerador, res.Route)

	sess, ok := store.Load()
	require.True(t, ok)
	require.Equal(t, "tok-journey", sess.Token)

	// Con la sesión escrita, el interceptor adjunta los headers solo
	require.NoError(t, client.Get(ctx, "/api/profile/userinfo", nil))

	require.NoError(t, store.Clear())
	_, ok = store.Load()
	require.False(t, ok)
}
