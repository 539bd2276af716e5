package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/authflow"
	"github.com/dropDatabas3/eventapp-cli/internal/captcha"
	"github.com/dropDatabas3/eventapp-cli/internal/flow"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// Mensajes internos del asistente de login.
type (
	tickMsg    time.Time
	restartMsg struct{}

	credsMsg struct {
		res authflow.Result
		err error
	}
	mfaMsg struct {
		res authflow.Result
		err error
	}
	questionsMsg struct{ err error }
	answersMsg   struct {
		res authflow.Result
		err error
	}
)

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func scheduleRestart() tea.Cmd {
	return tea.Tick(authflow.RestartDelay, func(time.Time) tea.Msg { return restartMsg{} })
}

// LoginModel es el asistente de login. El estado de pasos vive en
// authflow.Flow; acá solo hay inputs, foco y mensajes.
type LoginModel struct {
	client *api.Client
	store  *session.Store
	flow   *authflow.Flow

	inputs  []textinput.Model // email, contraseña, captcha
	mfaCode textinput.Model
	answers []textinput.Model
	focus   int

	busy           bool
	restartPending bool
	errMsg         string
	notice         string
	qr             string

	route flow.Route
	quit  bool
}

// NewLogin crea el asistente en la pantalla de credenciales.
func NewLogin(client *api.Client, store *session.Store) *LoginModel {
	m := &LoginModel{client: client, store: store}
	m.resetFlow()
	return m
}

// Route retorna la ruta final (vacía si el usuario salió sin entrar).
func (m *LoginModel) Route() flow.Route { return m.route }

func (m *LoginModel) resetFlow() {
	m.flow = authflow.New(m.client, m.store)

	email := textinput.New()
	email.Placeholder = "correo"
	email.CharLimit = 128
	email.Focus()

	pass := textinput.New()
	pass.Placeholder = "contraseña"
	pass.EchoMode = textinput.EchoPassword
	pass.CharLimit = 128

	capt := textinput.New()
	capt.Placeholder = "captcha"
	capt.CharLimit = captcha.LoginLength

	m.inputs = []textinput.Model{email, pass, capt}

	code := textinput.New()
	code.Placeholder = "código de 6 dígitos"
	code.CharLimit = 6
	m.mfaCode = code

	m.answers = nil
	m.focus = 0
	m.busy = false
	m.restartPending = false
	m.errMsg = ""
	m.notice = ""
	m.qr = ""
}

func (m *LoginModel) Init() tea.Cmd { return textinput.Blink }

func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.flow.LockoutRemaining() > 0 {
			return m, tickEvery()
		}
		return m, nil

	case restartMsg:
		m.resetFlow()
		return m, textinput.Blink

	case credsMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			if msg.res.LockoutSeconds > 0 {
				m.flow.StartLockout(msg.res.LockoutSeconds, func(int) {})
				return m, tickEvery()
			}
			return m, nil
		}
		if msg.res.MFARequired {
			m.errMsg = ""
			m.notice = "Ingresa el código de tu app de autenticación"
			m.focus = 0
			m.mfaCode.Focus()
			return m, textinput.Blink
		}
		return m.finish(msg.res)

	case mfaMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			if msg.res.ForceRestart {
				m.restartPending = true
				return m, scheduleRestart()
			}
			return m, nil
		}
		return m.finish(msg.res)

	case questionsMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			return m, nil
		}
		m.errMsg = ""
		m.notice = "Responde tus preguntas de seguridad"
		m.answers = nil
		for range m.flow.Questions() {
			in := textinput.New()
			in.Placeholder = "respuesta"
			in.CharLimit = 128
			m.answers = append(m.answers, in)
		}
		if len(m.answers) > 0 {
			m.answers[0].Focus()
		}
		m.focus = 0
		return m, textinput.Blink

	case answersMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			if msg.res.ForceRestart {
				m.restartPending = true
				return m, scheduleRestart()
			}
			if msg.res.OneAttemptLeft {
				m.errMsg += " — te queda un intento"
			}
			return m, nil
		}
		// QR nuevo: reenlazar el autenticador y volver al código
		m.qr = msg.res.QR
		m.errMsg = ""
		m.notice = "Escanea el QR nuevo y luego ingresa el código"
		for i := range m.answers {
			m.answers[i].Blur()
		}
		m.focus = 0
		m.mfaCode.Reset()
		m.mfaCode.Focus()
		return m, textinput.Blink
	}

	return m, m.updateInputs(msg)
}

func (m *LoginModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy || m.restartPending {
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		m.cycleFocus(msg.String() == "tab" || msg.String() == "down")
		return m, textinput.Blink

	case "ctrl+r":
		if m.flow.Step() == authflow.StepCredentials {
			m.flow.Captcha().Reload()
			m.inputs[2].Reset()
		}
		return m, nil

	case "ctrl+p":
		if m.flow.Step() == authflow.StepMFA && !m.flow.SecurityMode() {
			m.busy = true
			return m, func() tea.Msg {
				return questionsMsg{err: m.flow.RequestSecurityQuestions(context.Background())}
			}
		}
		return m, nil

	case "enter":
		return m.submit()
	}

	return m, m.updateInputs(msg)
}

// submit dispara la operación del paso actual. El countdown de bloqueo no
// frena nada acá: el formulario sigue vivo y es el servidor quien decide si
// el reintento procede (y refresca remaining si no).
func (m *LoginModel) submit() (tea.Model, tea.Cmd) {
	m.busy = true
	m.errMsg = ""

	switch {
	case m.flow.Step() == authflow.StepCredentials:
		email := m.inputs[0].Value()
		pass := m.inputs[1].Value()
		capt := m.inputs[2].Value()
		return m, func() tea.Msg {
			res, err := m.flow.SubmitCredentials(context.Background(), email, pass, capt)
			return credsMsg{res: res, err: err}
		}

	case m.flow.SecurityMode():
		answers := map[int]string{}
		for i := range m.answers {
			answers[i] = m.answers[i].Value()
		}
		return m, func() tea.Msg {
			res, err := m.flow.SubmitSecurityAnswers(context.Background(), answers)
			return answersMsg{res: res, err: err}
		}

	default:
		code := m.mfaCode.Value()
		return m, func() tea.Msg {
			res, err := m.flow.SubmitMFACode(context.Background(), code)
			return mfaMsg{res: res, err: err}
		}
	}
}

func (m *LoginModel) finish(res authflow.Result) (tea.Model, tea.Cmd) {
	m.flow.StopTimers()
	m.route = res.Route
	return m, tea.Quit
}

func (m *LoginModel) cycleFocus(forward bool) {
	fields := m.focusedFields()
	if len(fields) == 0 {
		return
	}
	// El foco puede venir arrastrado de una pantalla con más campos
	if m.focus >= len(fields) {
		m.focus = 0
	}
	fields[m.focus].Blur()
	if forward {
		m.focus = (m.focus + 1) % len(fields)
	} else {
		m.focus = (m.focus - 1 + len(fields)) % len(fields)
	}
	fields[m.focus].Focus()
}

// focusedFields retorna los inputs activos de la pantalla actual.
func (m *LoginModel) focusedFields() []*textinput.Model {
	switch {
	case m.flow.Step() == authflow.StepCredentials:
		out := make([]*textinput.Model, len(m.inputs))
		for i := range m.inputs {
			out[i] = &m.inputs[i]
		}
		return out
	case m.flow.SecurityMode():
		out := make([]*textinput.Model, len(m.answers))
		for i := range m.answers {
			out[i] = &m.answers[i]
		}
		return out
	default:
		return []*textinput.Model{&m.mfaCode}
	}
}

func (m *LoginModel) updateInputs(msg tea.Msg) tea.Cmd {
	fields := m.focusedFields()
	cmds := make([]tea.Cmd, 0, len(fields))
	for _, f := range fields {
		var cmd tea.Cmd
		*f, cmd = f.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *LoginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EventApp — Iniciar sesión"))
	b.WriteString("\n")

	switch {
	case m.flow.Step() == authflow.StepCredentials:
		b.WriteString(formStyle.Render(
			labelStyle.Render("Correo") + "\n" + m.inputs[0].View() + "\n" +
				labelStyle.Render("Contraseña") + "\n" + m.inputs[1].View(),
		))
		b.WriteString("\n")
		b.WriteString(captchaBox.Render(m.flow.Captcha().Render()))
		b.WriteString("\n" + m.inputs[2].View())
		if r := m.flow.LockoutRemaining(); r > 0 {
			b.WriteString("\n" + warnStyle.Render(
				fmt.Sprintf("Cuenta bloqueada: reintenta en %s", flow.FormatMMSS(r))))
		}
		b.WriteString(hintStyle.Render("enter entrar · ctrl+r otro captcha · esc salir"))

	case m.flow.SecurityMode():
		b.WriteString(labelStyle.Render("Correo: ") + m.flow.Email() + "\n\n")
		for i, q := range m.flow.Questions() {
			b.WriteString(q.Question + "\n" + m.answers[i].View() + "\n")
		}
		b.WriteString(hintStyle.Render("enter verificar · esc salir"))

	default:
		b.WriteString(labelStyle.Render("Correo: ") + m.flow.Email() + "\n\n")
		if m.qr != "" {
			b.WriteString(qrBoxStyle.Render(m.qr) + "\n")
		}
		b.WriteString(labelStyle.Render("Código MFA") + "\n" + m.mfaCode.View())
		b.WriteString(hintStyle.Render("enter verificar · ctrl+p preguntas de seguridad · esc salir"))
	}

	if m.busy {
		b.WriteString("\n" + labelStyle.Render("Verificando..."))
	}
	if m.notice != "" {
		b.WriteString("\n" + okStyle.Render(m.notice))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	if m.restartPending {
		b.WriteString("\n" + warnStyle.Render("Volviendo al inicio de sesión..."))
	}
	return b.String()
}

// RunLogin ejecuta el asistente y retorna la ruta resuelta por rol.
// Ruta vacía: el usuario salió sin autenticarse.
func RunLogin(client *api.Client, store *session.Store) (flow.Route, error) {
	m := NewLogin(client, store)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	return final.(*LoginModel).Route(), nil
}
