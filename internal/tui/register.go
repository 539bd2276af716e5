package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/captcha"
	"github.com/dropDatabas3/eventapp-cli/internal/register"
	"github.com/dropDatabas3/eventapp-cli/internal/security/password"
)

type (
	basicsMsg struct{ err error }
	qrMsg     struct {
		qr  string
		err error
	}
	createdMsg struct{ err error }
)

// RegisterModel es el asistente de registro de 3 pasos. El avance y el
// reinicio total ante fallo los decide register.Flow.
type RegisterModel struct {
	client *api.Client
	flow   *register.Flow

	// Paso 1
	inputs []textinput.Model // nombre, correo, contraseña, captcha
	focus  int

	// Paso 2
	cursor   int
	selected map[int]bool
	answers  map[int]*textinput.Model
	active   int // índice de pregunta con input enfocado, -1 ninguno

	// Paso 3
	mfaCode textinput.Model

	busy    bool
	errMsg  string
	notice  string
	created bool
}

// NewRegister crea el asistente en el paso de datos básicos.
func NewRegister(client *api.Client) *RegisterModel {
	m := &RegisterModel{client: client}
	m.resetAll(register.New(client))
	return m
}

// Created reporta si la cuenta quedó creada.
func (m *RegisterModel) Created() bool { return m.created }

func (m *RegisterModel) resetAll(f *register.Flow) {
	m.flow = f

	name := textinput.New()
	name.Placeholder = "nombre"
	name.CharLimit = 128
	name.Focus()

	email := textinput.New()
	email.Placeholder = "correo"
	email.CharLimit = 128

	pass := textinput.New()
	pass.Placeholder = "contraseña"
	pass.EchoMode = textinput.EchoPassword
	pass.CharLimit = 128

	capt := textinput.New()
	capt.Placeholder = "captcha"
	capt.CharLimit = captcha.RegisterLength

	m.inputs = []textinput.Model{name, email, pass, capt}
	m.focus = 0

	m.cursor = 0
	m.selected = map[int]bool{}
	m.answers = map[int]*textinput.Model{}
	m.active = -1

	code := textinput.New()
	code.Placeholder = "código de 6 dígitos"
	code.CharLimit = 6
	m.mfaCode = code

	m.busy = false
}

func (m *RegisterModel) Init() tea.Cmd { return textinput.Blink }

func (m *RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case basicsMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			return m, nil
		}
		m.errMsg = ""
		m.notice = "Selecciona 2 preguntas de seguridad (espacio marca, enter continúa)"
		return m, nil

	case qrMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, msg.err.Error())
			return m, nil
		}
		m.errMsg = ""
		m.notice = "Escanea el QR con tu app de autenticación"
		m.mfaCode.Focus()
		return m, textinput.Blink

	case createdMsg:
		m.busy = false
		if msg.err != nil {
			// Fallo del alta: todo lo acumulado ya se descartó y el
			// asistente cierra; se vuelve a empezar desde el login
			m.errMsg = api.Message(msg.err, msg.err.Error()) + " — el registro quedó descartado"
			return m, tea.Quit
		}
		m.created = true
		return m, tea.Quit
	}

	return m, m.updateInputs(msg)
}

func (m *RegisterModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		if m.flow.Step() == register.StepQuestions && m.active >= 0 {
			// esc dentro de una respuesta solo saca el foco
			m.answers[m.active].Blur()
			m.active = -1
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+r":
		if m.flow.Step() == register.StepBasics {
			m.flow.Captcha().Reload()
			m.inputs[3].Reset()
		}
		return m, nil
	}

	switch m.flow.Step() {
	case register.StepBasics:
		return m.keyBasics(msg)
	case register.StepQuestions:
		return m.keyQuestions(msg)
	default:
		return m.keyMFA(msg)
	}
}

func (m *RegisterModel) keyBasics(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.inputs[m.focus].Blur()
		if msg.String() == "tab" || msg.String() == "down" {
			m.focus = (m.focus + 1) % len(m.inputs)
		} else {
			m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
		}
		m.inputs[m.focus].Focus()
		return m, textinput.Blink

	case "enter":
		m.busy = true
		m.errMsg = ""
		name, email := m.inputs[0].Value(), m.inputs[1].Value()
		pass, capt := m.inputs[2].Value(), m.inputs[3].Value()
		return m, func() tea.Msg {
			return basicsMsg{err: m.flow.SubmitBasics(context.Background(), name, email, pass, capt)}
		}
	}
	return m, m.updateInputs(msg)
}

func (m *RegisterModel) keyQuestions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Con una respuesta enfocada, la entrada va al input
	if m.active >= 0 {
		if msg.String() == "enter" {
			m.answers[m.active].Blur()
			m.active = -1
			return m, nil
		}
		in := m.answers[m.active]
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(register.Catalog)-1 {
			m.cursor++
		}
	case " ":
		idx := m.cursor
		if m.selected[idx] {
			delete(m.selected, idx)
			delete(m.answers, idx)
		} else if len(m.selected) < register.RequiredQuestions {
			m.selected[idx] = true
			in := textinput.New()
			in.Placeholder = "respuesta"
			in.CharLimit = 128
			m.answers[idx] = &in
		}
	case "a":
		if m.selected[m.cursor] {
			m.active = m.cursor
			m.answers[m.active].Focus()
			return m, textinput.Blink
		}
	case "enter":
		selected := make([]int, 0, len(m.selected))
		answers := map[int]string{}
		for idx := range m.selected {
			selected = append(selected, idx)
			if in, ok := m.answers[idx]; ok {
				answers[idx] = in.Value()
			}
		}
		if err := m.flow.SubmitQuestions(selected, answers); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		// Entrar al paso 3 pide el QR de una vez
		m.busy = true
		m.errMsg = ""
		return m, func() tea.Msg {
			qr, err := m.flow.EnterMFASetup(context.Background())
			return qrMsg{qr: qr, err: err}
		}
	}
	return m, nil
}

func (m *RegisterModel) keyMFA(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		// Reemite el QR reutilizando el secreto ya entregado
		m.busy = true
		return m, func() tea.Msg {
			qr, err := m.flow.EnterMFASetup(context.Background())
			return qrMsg{qr: qr, err: err}
		}
	case "enter":
		m.busy = true
		m.errMsg = ""
		code := m.mfaCode.Value()
		return m, func() tea.Msg {
			return createdMsg{err: m.flow.SubmitMFACode(context.Background(), code)}
		}
	}
	var cmd tea.Cmd
	m.mfaCode, cmd = m.mfaCode.Update(msg)
	return m, cmd
}

func (m *RegisterModel) updateInputs(msg tea.Msg) tea.Cmd {
	if m.flow.Step() != register.StepBasics {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.inputs))
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *RegisterModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("EventApp — Crear cuenta (paso %d de 3)", int(m.flow.Step())+1)))
	b.WriteString("\n")

	switch m.flow.Step() {
	case register.StepBasics:
		b.WriteString(formStyle.Render(
			labelStyle.Render("Nombre") + "\n" + m.inputs[0].View() + "\n" +
				labelStyle.Render("Correo") + "\n" + m.inputs[1].View() + "\n" +
				labelStyle.Render("Contraseña") + "\n" + m.inputs[2].View(),
		))
		b.WriteString("\n")
		// Checklist en vivo, regla por regla
		for _, req := range password.Requirements() {
			b.WriteString(checklistLine(req.Met(m.inputs[2].Value()), req.Label) + "\n")
		}
		b.WriteString("\n" + captchaBox.Render(m.flow.Captcha().Render()))
		b.WriteString("\n" + m.inputs[3].View())
		b.WriteString(hintStyle.Render("enter continuar · ctrl+r otro captcha · esc salir"))

	case register.StepQuestions:
		for i, q := range register.Catalog {
			cursor := "  "
			if i == m.cursor {
				cursor = cursorGlyph
			}
			mark := "[ ]"
			if m.selected[i] {
				mark = "[x]"
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, mark, q))
			if m.selected[i] {
				b.WriteString("      " + m.answers[i].View() + "\n")
			}
		}
		b.WriteString(hintStyle.Render(fmt.Sprintf(
			"espacio marcar (%d/%d) · a responder · enter continuar · esc salir",
			len(m.selected), register.RequiredQuestions)))

	default:
		if m.flow.QR() != "" {
			b.WriteString(qrBoxStyle.Render(m.flow.QR()) + "\n")
		}
		b.WriteString(labelStyle.Render("Código MFA") + "\n" + m.mfaCode.View())
		b.WriteString(hintStyle.Render("enter crear cuenta · ctrl+n QR nuevo · esc salir"))
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

// RunRegister ejecuta el asistente. Retorna true si la cuenta se creó.
func RunRegister(client *api.Client) (bool, error) {
	m := NewRegister(client)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	return final.(*RegisterModel).Created(), nil
}
