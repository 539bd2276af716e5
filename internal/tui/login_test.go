package tui

import (
	"net/http"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/apitest"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

func newLoginFixture(t *testing.T) (*apitest.Server, *LoginModel) {
	t.Helper()
	srv := apitest.New(t)
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	client := api.New(srv.URL, store, 0)
	return srv, NewLogin(client, store)
}

// dispatch ejecuta el comando devuelto por Update y reinyecta su mensaje,
// como haría el runtime de bubbletea.
func dispatch(m *LoginModel, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func fillCredentials(m *LoginModel) {
	m.inputs[0].SetValue("ana@example.com")
	m.inputs[1].SetValue("Abcdefg1!")
	m.inputs[2].SetValue(m.flow.Captcha().Challenge())
}

// Tab entre respuestas, respuestas correctas y tab de nuevo en la pantalla
// del código: el foco arrastrado del modo preguntas no debe romper nada.
func TestLogin_TabAfterSecurityQuestionsSuccess(t *testing.T) {
	srv, m := newLoginFixture(t)
	srv.Router.Post("/api/login/login", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]any{"mfaRequired": true})
	})
	srv.Router.Post("/api/login/get-security-questions", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]any{
			"questions": []map[string]string{
				{"question": "¿En qué ciudad naciste?"},
				{"question": "¿Cuál es tu comida favorita?"},
			},
		})
	})
	srv.Router.Post("/api/login/verify-security-questions", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]any{"qr": "data:image/png;base64,Zm9v"})
	})

	fillCredentials(m)
	_, cmd := m.Update(key(tea.KeyEnter))
	dispatch(m, cmd)
	_, cmd = m.Update(key(tea.KeyCtrlP))
	dispatch(m, cmd)
	if !m.flow.SecurityMode() || len(m.answers) != 2 {
		t.Fatalf("security mode not active: %d answers", len(m.answers))
	}

	m.Update(key(tea.KeyTab))
	if m.focus != 1 {
		t.Fatalf("focus: got %d want 1", m.focus)
	}
	m.answers[0].SetValue("CDMX")
	m.answers[1].SetValue("tacos")

	_, cmd = m.Update(key(tea.KeyEnter))
	dispatch(m, cmd)
	if m.flow.SecurityMode() {
		t.Fatal("success must leave security mode")
	}

	m.Update(key(tea.KeyTab))
	if m.focus != 0 {
		t.Fatalf("focus after leaving security mode: got %d want 0", m.focus)
	}
	if !m.mfaCode.Focused() {
		t.Fatal("the MFA input must hold focus")
	}
}

// El countdown de bloqueo es solo informativo: un submit con el countdown
// corriendo tiene que llegar igual al servidor.
func TestLogin_SubmitDuringLockoutStillHitsServer(t *testing.T) {
	srv, m := newLoginFixture(t)
	calls := 0
	srv.Router.Post("/api/login/login", func(w http.ResponseWriter, r *http.Request) {
		calls++
		apitest.JSON(w, http.StatusForbidden, map[string]any{
			"message":   "cuenta bloqueada",
			"remaining": 120,
		})
	})

	fillCredentials(m)
	defer m.flow.StopTimers()

	_, cmd := m.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	m.Update(cmd())
	if m.flow.LockoutRemaining() <= 0 {
		t.Fatal("countdown should be running")
	}

	_, cmd = m.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("submit during the countdown must still produce a request")
	}
	m.Update(cmd())
	if calls != 2 {
		t.Fatalf("server calls: got %d want 2", calls)
	}
}
