package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/captcha"
	"github.com/dropDatabas3/eventapp-cli/internal/flow"
	"github.com/dropDatabas3/eventapp-cli/internal/recovery"
)

type (
	codeSentMsg struct {
		res recovery.Result
		err error
	}
	codeCheckMsg struct {
		res recovery.Result
		err error
	}
	resetDoneMsg struct {
		res recovery.Result
		err error
	}
	expiryTickMsg struct{}
)

func expiryTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return expiryTickMsg{} })
}

// RecoveryModel es el asistente de recuperación de contraseña.
type RecoveryModel struct {
	client *api.Client
	flow   *recovery.Flow

	email   textinput.Model
	capt    textinput.Model
	code    textinput.Model
	newPass textinput.Model
	confirm textinput.Model
	focus   int

	busy   bool
	errMsg string
	notice string
	done   bool
}

// NewRecovery crea el asistente en el paso de solicitud.
func NewRecovery(client *api.Client) *RecoveryModel {
	m := &RecoveryModel{client: client}
	m.resetAll()
	return m
}

// Done reporta si la contraseña quedó restablecida.
func (m *RecoveryModel) Done() bool { return m.done }

func (m *RecoveryModel) resetAll() {
	if m.flow != nil {
		m.flow.StopTimers()
	}
	m.flow = recovery.New(m.client)

	m.email = textinput.New()
	m.email.Placeholder = "correo"
	m.email.CharLimit = 128
	m.email.Focus()

	m.capt = textinput.New()
	m.capt.Placeholder = "captcha"
	m.capt.CharLimit = captcha.RegisterLength

	m.code = textinput.New()
	m.code.Placeholder = "código de 6 dígitos"
	m.code.CharLimit = 6

	m.newPass = textinput.New()
	m.newPass.Placeholder = "contraseña nueva"
	m.newPass.EchoMode = textinput.EchoPassword
	m.newPass.CharLimit = 128

	m.confirm = textinput.New()
	m.confirm.Placeholder = "confirmar contraseña"
	m.confirm.EchoMode = textinput.EchoPassword
	m.confirm.CharLimit = 128

	m.focus = 0
	m.busy = false
	m.errMsg = ""
	m.notice = ""
}

func (m *RecoveryModel) Init() tea.Cmd { return textinput.Blink }

func (m *RecoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case codeSentMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			return m, nil
		}
		m.errMsg = ""
		m.notice = msg.res.Message
		m.code.Focus()
		// El código vence a los 15 minutos; al expirar se reinicia todo
		m.flow.StartExpiry(func(int) {})
		return m, tea.Batch(textinput.Blink, expiryTick())

	case expiryTickMsg:
		if m.flow.Step() != recovery.StepCode {
			return m, nil
		}
		if m.flow.ExpiryRemaining() <= 0 {
			m.resetAll()
			m.errMsg = "El código expiró, solicita uno nuevo"
			return m, textinput.Blink
		}
		return m, expiryTick()

	case codeCheckMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			if msg.res.ForceRestart {
				m.resetAll()
				m.errMsg = "Intentos agotados, solicita un código nuevo"
			}
			return m, textinput.Blink
		}
		m.errMsg = ""
		m.notice = msg.res.Message
		m.newPass.Focus()
		m.focus = 0
		return m, textinput.Blink

	case resetDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			return m, nil
		}
		m.notice = msg.res.Message
		m.done = true
		return m, tea.Quit
	}

	return m, m.updateInputs(msg)
}

func (m *RecoveryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.flow.StopTimers()
		return m, tea.Quit

	case "ctrl+r":
		if m.flow.Step() == recovery.StepRequest {
			m.flow.Captcha().Reload()
			m.capt.Reset()
		}
		return m, nil

	case "tab", "shift+tab", "up", "down":
		m.cycleFocus(msg.String() == "tab" || msg.String() == "down")
		return m, textinput.Blink

	case "enter":
		return m.submit()
	}

	return m, m.updateInputs(msg)
}

func (m *RecoveryModel) submit() (tea.Model, tea.Cmd) {
	m.busy = true
	m.errMsg = ""

	switch m.flow.Step() {
	case recovery.StepRequest:
		email, capt := m.email.Value(), m.capt.Value()
		return m, func() tea.Msg {
			res, err := m.flow.RequestCode(context.Background(), email, capt)
			return codeSentMsg{res: res, err: err}
		}
	case recovery.StepCode:
		code := m.code.Value()
		return m, func() tea.Msg {
			res, err := m.flow.SubmitCode(context.Background(), code)
			return codeCheckMsg{res: res, err: err}
		}
	default:
		newPass, confirm := m.newPass.Value(), m.confirm.Value()
		return m, func() tea.Msg {
			res, err := m.flow.SubmitNewPassword(context.Background(), newPass, confirm)
			return resetDoneMsg{res: res, err: err}
		}
	}
}

func (m *RecoveryModel) fields() []*textinput.Model {
	switch m.flow.Step() {
	case recovery.StepRequest:
		return []*textinput.Model{&m.email, &m.capt}
	case recovery.StepCode:
		return []*textinput.Model{&m.code}
	default:
		return []*textinput.Model{&m.newPass, &m.confirm}
	}
}

func (m *RecoveryModel) cycleFocus(forward bool) {
	fields := m.fields()
	if len(fields) < 2 {
		return
	}
	fields[m.focus].Blur()
	if forward {
		m.focus = (m.focus + 1) % len(fields)
	} else {
		m.focus = (m.focus - 1 + len(fields)) % len(fields)
	}
	fields[m.focus].Focus()
}

func (m *RecoveryModel) updateInputs(msg tea.Msg) tea.Cmd {
	fields := m.fields()
	cmds := make([]tea.Cmd, 0, len(fields))
	for _, f := range fields {
		var cmd tea.Cmd
		*f, cmd = f.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *RecoveryModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EventApp — Recuperar contraseña"))
	b.WriteString("\n")

	switch m.flow.Step() {
	case recovery.StepRequest:
		b.WriteString(formStyle.Render(labelStyle.Render("Correo") + "\n" + m.email.View()))
		b.WriteString("\n" + captchaBox.Render(m.flow.Captcha().Render()))
		b.WriteString("\n" + m.capt.View())
		b.WriteString(hintStyle.Render("enter enviar código · ctrl+r otro captcha · esc salir"))

	case recovery.StepCode:
		b.WriteString(labelStyle.Render("Correo: ") + m.flow.Email() + "\n\n")
		b.WriteString(labelStyle.Render("Código recibido") + "\n" + m.code.View())
		b.WriteString("\n" + warnStyle.Render("El código expira en "+flow.FormatMMSS(m.flow.ExpiryRemaining())))
		b.WriteString(hintStyle.Render("enter validar · esc salir"))

	default:
		b.WriteString(formStyle.Render(
			labelStyle.Render("Contraseña nueva") + "\n" + m.newPass.View() + "\n" +
				labelStyle.Render("Confirmar") + "\n" + m.confirm.View(),
		))
		b.WriteString(hintStyle.Render("enter restablecer · esc salir"))
	}

	if m.busy {
		b.WriteString("\n" + labelStyle.Render("Procesando..."))
	}
	if m.notice != "" {
		b.WriteString("\n" + okStyle.Render(m.notice))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	return b.String()
}

// RunRecovery ejecuta el asistente. Retorna true si la contraseña cambió.
func RunRecovery(client *api.Client) (bool, error) {
	m := NewRecovery(client)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	return final.(*RecoveryModel).Done(), nil
}
