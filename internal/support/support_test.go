package support_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/apitest"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
	"github.com/dropDatabas3/eventapp-cli/internal/support"
)

func newClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return api.New(srv.URL, store, 0), srv
}

func TestSend(t *testing.T) {
	client, srv := newClient(t)
	var got struct {
		Correo  string `json:"correo"`
		Mensaje string `json:"mensaje"`
	}
	srv.Router.Post("/api/event/soporte", func(w http.ResponseWriter, r *http.Request) {
		apitest.Decode(t, r, &got)
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "mensaje recibido"})
	})

	msg, err := support.Send(context.Background(), client, " ana@example.com ", "no llega mi boleto")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg != "mensaje recibido" {
		t.Fatalf("message: %q", msg)
	}
	if got.Correo != "ana@example.com" || got.Mensaje != "no llega mi boleto" {
		t.Fatalf("payload: %+v", got)
	}
}

func TestSend_LocalValidation(t *testing.T) {
	client, srv := newClient(t)
	called := false
	srv.Router.Post("/api/event/soporte", func(w http.ResponseWriter, r *http.Request) {
		called = true
		apitest.JSON(w, http.StatusOK, nil)
	})

	ctx := context.Background()
	if _, err := support.Send(ctx, client, "", "hola"); !errors.Is(err, support.ErrEmailRequired) {
		t.Fatalf("empty email: %v", err)
	}
	if _, err := support.Send(ctx, client, "a@b.c", "   "); !errors.Is(err, support.ErrMessageRequired) {
		t.Fatalf("empty message: %v", err)
	}
	if called {
		t.Fatal("validation failures must not reach the network")
	}
}
