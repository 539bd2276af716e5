// Package authflow implementa la máquina de estados del login:
// credenciales → desafío MFA → (sesión establecida | bloqueo | reinicio),
// con el camino de escape por preguntas de seguridad.
//
// El paso, los contadores de intentos y el countdown de bloqueo viven acá;
// la UI solo renderiza y reenvía la entrada del usuario. Los estados ilegales (ej:
// código MFA sin haber pasado credenciales) se rechazan con ErrWrongStep.
package authflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/captcha"
	"github.com/dropDatabas3/eventapp-cli/internal/flow"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// Step es el paso actual del flujo de login.
type Step int

const (
	// StepCredentials: formulario email/contraseña/captcha.
	StepCredentials Step = iota
	// StepMFA: código del autenticador, con modo preguntas de seguridad.
	StepMFA
)

// RestartDelay es la espera antes del reinicio forzado tras agotar
// intentos: el usuario alcanza a leer el mensaje antes de perder todo.
const RestartDelay = 3 * time.Second

// maxSecurityAttempts es el tope LOCAL de intentos de preguntas de
// seguridad. Es una política distinta del tope de MFA (que cuenta el
// servidor) y se mantiene separada a propósito.
const maxSecurityAttempts = 2

// Errores de validación local: nunca llegan a la red.
var (
	ErrCaptchaRequired = errors.New("authflow: ingresa el captcha")
	ErrCaptchaInvalid  = errors.New("authflow: captcha incorrecto")
	ErrWrongStep       = errors.New("authflow: operación fuera de paso")
	ErrEmptyCode       = errors.New("authflow: ingresa el código MFA")
)

// Result comunica a la UI el efecto de una operación. En caso de error,
// puede traer igualmente señales de control (LockoutSeconds, ForceRestart)
// que acompañan al mensaje inline.
type Result struct {
	// Route distinta de vacío: navegar (sesión escrita si corresponde).
	Route flow.Route

	// MFARequired: pasar a la pantalla del código.
	MFARequired bool

	// LockoutSeconds: arrancar el countdown de bloqueo (solo display).
	LockoutSeconds int

	// ForceRestart: agendar reinicio completo tras RestartDelay.
	ForceRestart bool

	// OneAttemptLeft: avisar que queda exactamente un intento de
	// preguntas de seguridad.
	OneAttemptLeft bool

	// QR: otpauth/QR nuevo emitido tras verificar las preguntas.
	QR string
}

// Flow es la máquina de estados de un intento de login. Es transitoria:
// se descarta en éxito o en reinicio.
type Flow struct {
	client *api.Client
	store  *session.Store
	capt   *captcha.Engine

	step             Step
	email            string
	securityMode     bool
	questions        []api.SecurityQuestion
	securityAttempts int
	lockout          *flow.Countdown
}

// New crea el flujo en StepCredentials y limpia la sesión previa: entrar
// a la pantalla de login siempre arranca deslogueado.
func New(client *api.Client, store *session.Store) *Flow {
	_ = store.Clear()
	return &Flow{
		client: client,
		store:  store,
		capt:   captcha.NewEngine(captcha.LoginLength),
	}
}

// Step retorna el paso actual.
func (f *Flow) Step() Step { return f.step }

// Email retorna el correo aceptado en credenciales (vacío antes de MFA).
func (f *Flow) Email() string { return f.email }

// Captcha expone el engine para que la UI lo renderice.
func (f *Flow) Captcha() *captcha.Engine { return f.capt }

// SecurityMode reporta si está activo el modo preguntas de seguridad.
func (f *Flow) SecurityMode() bool { return f.securityMode }

// Questions retorna las preguntas cargadas (orden del servidor).
func (f *Flow) Questions() []api.SecurityQuestion { return f.questions }

// SubmitCredentials valida captcha localmente y envía las credenciales.
func (f *Flow) SubmitCredentials(ctx context.Context, email, password, captchaInput string) (Result, error) {
	if f.step != StepCredentials {
		return Result{}, ErrWrongStep
	}
	if captchaInput == "" {
		return Result{}, ErrCaptchaRequired
	}
	if !f.capt.Validate(captchaInput) {
		f.capt.Reload()
		return Result{}, ErrCaptchaInvalid
	}

	log := logger.From(ctx).Named("authflow")
	resp, err := f.client.Login(ctx, email, password)
	if err != nil {
		if remaining, ok := api.Remaining(err); ok {
			log.Info("cuenta bloqueada", logger.Email(email), logger.Int("remaining", remaining))
			return Result{LockoutSeconds: remaining}, err
		}
		return Result{}, err
	}

	if resp.MFARequired {
		f.email = strings.TrimSpace(email)
		f.step = StepMFA
		log.Info("mfa requerido", logger.Email(f.email))
		return Result{MFARequired: true}, nil
	}

	return f.establish(ctx, resp)
}

// SubmitMFACode envía el código del autenticador. El servidor permite un
// solo intento; acá únicamente se evita el doble submit en vuelo (UI).
func (f *Flow) SubmitMFACode(ctx context.Context, code string) (Result, error) {
	if f.step != StepMFA {
		return Result{}, ErrWrongStep
	}
	if code == "" {
		return Result{}, ErrEmptyCode
	}

	resp, err := f.client.VerifyMFA(ctx, f.email, code)
	if err != nil {
		if api.GoToLogin(err) {
			logger.From(ctx).Named("authflow").Info("intentos mfa agotados", logger.Email(f.email))
			return Result{ForceRestart: true}, err
		}
		return Result{}, err
	}
	return f.establish(ctx, resp)
}

// RequestSecurityQuestions pide las preguntas del correo y entra en modo
// de recuperación por preguntas.
func (f *Flow) RequestSecurityQuestions(ctx context.Context) error {
	if f.step != StepMFA {
		return ErrWrongStep
	}
	qs, err := f.client.GetSecurityQuestions(ctx, f.email)
	if err != nil {
		return err
	}
	f.questions = qs
	f.securityMode = true
	return nil
}

// SubmitSecurityAnswers envía las respuestas en el orden de las preguntas.
// Éxito: QR nuevo y vuelta al modo código. Fallo: cuenta local de intentos;
// al segundo (o si el servidor manda goToLogin) se fuerza el reinicio.
func (f *Flow) SubmitSecurityAnswers(ctx context.Context, answers map[int]string) (Result, error) {
	if f.step != StepMFA || !f.securityMode {
		return Result{}, ErrWrongStep
	}

	payload := make([]api.SecurityAnswer, 0, len(f.questions))
	for i, q := range f.questions {
		payload = append(payload, api.SecurityAnswer{
			Question: q.Question,
			Answer:   answers[i],
		})
	}

	qr, err := f.client.VerifySecurityQuestions(ctx, f.email, payload)
	if err != nil {
		f.securityAttempts++
		if api.GoToLogin(err) || f.securityAttempts >= maxSecurityAttempts {
			return Result{ForceRestart: true}, err
		}
		return Result{OneAttemptLeft: true}, err
	}

	f.securityMode = false
	return Result{QR: qr}, nil
}

// establish escribe la sesión y resuelve la ruta por rol. Token, rol y
// usuario se persisten en una sola escritura; un rol desconocido no
// persiste nada y vuelve al login.
func (f *Flow) establish(ctx context.Context, resp *api.LoginResponse) (Result, error) {
	role := resp.User.Role
	if !session.KnownRole(role) {
		logger.From(ctx).Named("authflow").Warn("rol desconocido", logger.Role(role))
		return Result{Route: flow.RouteLogin}, nil
	}
	sess := session.Session{Token: resp.Token, Role: role, User: resp.User}
	if err := f.store.Save(sess); err != nil {
		return Result{}, err
	}
	logger.From(ctx).Named("authflow").Info("sesión establecida",
		logger.Email(resp.User.Email), logger.Role(role))
	return Result{Route: flow.RouteForRole(role)}, nil
}

// StartLockout arranca el countdown de bloqueo. Es cosmético: al llegar a
// cero NO se reintenta nada; el servidor sigue siendo quien bloquea.
func (f *Flow) StartLockout(seconds int, onTick func(remaining int)) {
	f.StopTimers()
	f.lockout = flow.StartCountdown(seconds, onTick)
}

// LockoutRemaining retorna los segundos de bloqueo visibles (0 si no hay).
func (f *Flow) LockoutRemaining() int {
	if f.lockout == nil {
		return 0
	}
	return f.lockout.Remaining()
}

// StopTimers cancela los timers del flujo. Llamar siempre al desmontar.
func (f *Flow) StopTimers() {
	if f.lockout != nil {
		f.lockout.Stop()
		f.lockout = nil
	}
}
