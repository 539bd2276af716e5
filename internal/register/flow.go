// Package register implementa la máquina de estados del registro:
// datos básicos → preguntas de seguridad → configuración MFA → cuenta
// creada, con política de reinicio total ante cualquier fallo del alta.
package register

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/captcha"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
	"github.com/dropDatabas3/eventapp-cli/internal/security/password"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// Step es el paso actual del registro.
type Step int

const (
	// StepBasics: nombre, correo, contraseña y captcha.
	StepBasics Step = iota
	// StepQuestions: selección de exactamente 2 preguntas del catálogo.
	StepQuestions
	// StepMFASetup: QR de aprovisionamiento y código del autenticador.
	StepMFASetup
)

// Catalog son las 5 preguntas fijas del registro, en el orden que se
// muestran. El backend guarda el texto literal, así que no se traduce
// ni se reordena.
var Catalog = []string{
	"¿Cuál es el nombre de tu primera mascota?",
	"¿En qué ciudad naciste?",
	"¿Cuál es el nombre de tu profesor favorito?",
	"¿Cuál es tu comida favorita?",
	"¿Cuál es el modelo de tu primer auto?",
}

// RequiredQuestions es cuántas preguntas deben elegirse: ni una más.
const RequiredQuestions = 2

// Errores de validación local: nunca generan tráfico de red.
var (
	ErrCaptchaRequired = errors.New("register: ingresa el captcha")
	ErrCaptchaInvalid  = errors.New("register: captcha incorrecto")
	ErrWrongStep       = errors.New("register: operación fuera de paso")
	ErrQuestionCount   = errors.New("register: debes seleccionar exactamente 2 preguntas de seguridad")
	ErrEmptyAnswer     = errors.New("register: responde todas las preguntas seleccionadas")
	ErrEmptyMFACode    = errors.New("register: ingresa el código del autenticador")
	ErrNameRequired    = errors.New("register: ingresa tu nombre")
	ErrEmailRequired   = errors.New("register: ingresa tu correo")
)

// Basics son los datos del paso 1, retenidos en memoria para el alta final.
type Basics struct {
	Name     string
	Email    string
	Password string
	Captcha  string
}

// Flow es la máquina de estados de un registro. Transitoria: se descarta
// al crear la cuenta o al reiniciar por fallo.
type Flow struct {
	client *api.Client
	capt   *captcha.Engine

	step     Step
	basics   Basics
	selected []int
	answers  map[int]string

	// mfaSecret se conserva entre reintentos del QR para que el backend
	// reutilice el mismo secreto en vez de rotarlo en silencio.
	mfaSecret string
	qr        string
}

// New crea el flujo en StepBasics.
func New(client *api.Client) *Flow {
	return &Flow{
		client:  client,
		capt:    captcha.NewEngine(captcha.RegisterLength),
		answers: map[int]string{},
	}
}

// Step retorna el paso actual.
func (f *Flow) Step() Step { return f.step }

// Captcha expone el engine para el render.
func (f *Flow) Captcha() *captcha.Engine { return f.capt }

// Basics retorna los datos aceptados del paso 1.
func (f *Flow) Basics() Basics { return f.basics }

// Selected retorna los índices elegidos (orden ascendente).
func (f *Flow) Selected() []int { return append([]int(nil), f.selected...) }

// QR retorna el QR de aprovisionamiento vigente (vacío antes del paso 3).
func (f *Flow) QR() string { return f.qr }

// SubmitBasics valida política de contraseña y captcha del lado del
// cliente, y solo entonces consulta disponibilidad del correo.
func (f *Flow) SubmitBasics(ctx context.Context, name, email, pass, captchaInput string) error {
	if f.step != StepBasics {
		return ErrWrongStep
	}
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	if err := password.Check(pass); err != nil {
		return err
	}
	if captchaInput == "" {
		return ErrCaptchaRequired
	}
	if !f.capt.Validate(captchaInput) {
		f.capt.Reload()
		return ErrCaptchaInvalid
	}

	if err := f.client.ValidateEmail(ctx, email); err != nil {
		return err
	}

	f.basics = Basics{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: pass,
		Captcha:  strings.TrimSpace(captchaInput),
	}
	f.step = StepQuestions
	logger.From(ctx).Named("register").Info("datos básicos aceptados", logger.Email(email))
	return nil
}

// SubmitQuestions valida la selección: exactamente 2 preguntas del
// catálogo, cada una con respuesta. Validación 100% local, sin red.
func (f *Flow) SubmitQuestions(selected []int, answers map[int]string) error {
	if f.step != StepQuestions {
		return ErrWrongStep
	}
	if len(selected) != RequiredQuestions {
		return ErrQuestionCount
	}
	seen := map[int]bool{}
	for _, idx := range selected {
		if idx < 0 || idx >= len(Catalog) || seen[idx] {
			return ErrQuestionCount
		}
		seen[idx] = true
		if strings.TrimSpace(answers[idx]) == "" {
			return ErrEmptyAnswer
		}
	}

	f.selected = append([]int(nil), selected...)
	sort.Ints(f.selected)
	f.answers = map[int]string{}
	for _, idx := range f.selected {
		f.answers[idx] = strings.TrimSpace(answers[idx])
	}
	f.step = StepMFASetup
	return nil
}

// EnterMFASetup pide el QR de aprovisionamiento al entrar al paso 3.
// En un retry reenvía el secreto ya emitido para no rotarlo.
func (f *Flow) EnterMFASetup(ctx context.Context) (qr string, err error) {
	if f.step != StepMFASetup {
		return "", ErrWrongStep
	}
	resp, err := f.client.RequestPreMFAQR(ctx, f.basics.Email, f.mfaSecret)
	if err != nil {
		return "", err
	}
	f.qr = resp.QR
	if f.mfaSecret == "" {
		f.mfaSecret = resp.Secret
	}
	return f.qr, nil
}

// SubmitMFACode junta todo el estado acumulado en el request de alta.
// Cualquier fallo del servidor reinicia el flujo completo a StepBasics:
// política deliberada de reset total, no rollback de paso.
func (f *Flow) SubmitMFACode(ctx context.Context, code string) error {
	if f.step != StepMFASetup {
		return ErrWrongStep
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyMFACode
	}

	req := api.RegisterRequest{
		Name:     f.basics.Name,
		Email:    f.basics.Email,
		Password: f.basics.Password,
		Captcha:  f.basics.Captcha,
		MFACode:  code,
		Role:     session.RoleUsuario,
	}
	for _, idx := range f.selected {
		req.SecurityQuestions = append(req.SecurityQuestions, api.SecurityAnswer{
			Question: Catalog[idx],
			Answer:   f.answers[idx],
		})
	}

	if err := f.client.Register(ctx, req); err != nil {
		logger.From(ctx).Named("register").Warn("alta rechazada",
			logger.Email(f.basics.Email), logger.Err(err))
		f.Reset()
		return err
	}
	logger.From(ctx).Named("register").Info("cuenta creada", logger.Email(req.Email))
	return nil
}

// Reset descarta todo: datos básicos, selección, respuestas, secreto y QR.
func (f *Flow) Reset() {
	f.step = StepBasics
	f.basics = Basics{}
	f.selected = nil
	f.answers = map[int]string{}
	f.mfaSecret = ""
	f.qr = ""
	f.capt.Reload()
}
