// Package apitest levanta un backend EventApp falso sobre httptest para
// los tests de los flujos. Cada test monta solo los handlers que necesita;
// cualquier ruta no montada responde 404.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Server es el backend falso. Envuelve httptest.Server con un router chi
// para poder montar rutas con parámetros igual que el backend real.
type Server struct {
	*httptest.Server
	Router chi.Router
}

// New crea y arranca el servidor. Se apaga solo al terminar el test.
func New(t *testing.T) *Server {
	t.Helper()
	r := chi.NewRouter()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Server{Server: srv, Router: r}
}

// JSON escribe una respuesta JSON con el status dado.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Fail escribe el cuerpo de error estándar del backend.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, map[string]string{"code": code, "message": message})
}

// Decode lee el cuerpo JSON del request en out, fallando el test si no parsea.
func Decode(t *testing.T, r *http.Request, out any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Fatalf("cuerpo del request inválido: %v", err)
	}
}
