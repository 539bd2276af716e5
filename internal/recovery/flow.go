// Package recovery implementa el flujo de recuperación de contraseña:
// solicitud del código por correo → validación del código (con expiración
// de 15 minutos) → contraseña nueva.
package recovery

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/captcha"
	"github.com/dropDatabas3/eventapp-cli/internal/flow"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
	"github.com/dropDatabas3/eventapp-cli/internal/security/password"
)

// Step es el paso actual de la recuperación.
type Step int

const (
	// StepRequest: correo + captcha para pedir el código.
	StepRequest Step = iota
	// StepCode: ingreso del código de 6 dígitos, con countdown de expiración.
	StepCode
	// StepReset: contraseña nueva + confirmación.
	StepReset
)

// CodeTTLSeconds es la vigencia del código enviado por correo (15 min).
// Al expirar, el flujo se reinicia para poder pedir un código nuevo.
const CodeTTLSeconds = 900

var (
	ErrCaptchaInvalid   = errors.New("recovery: captcha incorrecto")
	ErrWrongStep        = errors.New("recovery: operación fuera de paso")
	ErrEmailRequired    = errors.New("recovery: ingresa tu correo")
	ErrCodeRequired     = errors.New("recovery: ingresa el código")
	ErrFieldsRequired   = errors.New("recovery: todos los campos son obligatorios")
	ErrPasswordMismatch = errors.New("recovery: las contraseñas no coinciden")
)

// Result señala efectos de control además del error inline.
type Result struct {
	// Message es el mensaje del servidor para mostrar.
	Message string

	// ForceRestart: intentos agotados, volver al login.
	ForceRestart bool

	// Done: contraseña restablecida, volver al login.
	Done bool
}

// Flow es la máquina de estados de una recuperación. Transitoria.
type Flow struct {
	client *api.Client
	capt   *captcha.Engine

	step   Step
	email  string
	expiry *flow.Countdown
}

// New crea el flujo en StepRequest.
func New(client *api.Client) *Flow {
	return &Flow{
		client: client,
		capt:   captcha.NewEngine(captcha.RegisterLength),
	}
}

// Step retorna el paso actual.
func (f *Flow) Step() Step { return f.step }

// Email retorna el correo del flujo en curso.
func (f *Flow) Email() string { return f.email }

// Captcha expone el engine para el render.
func (f *Flow) Captcha() *captcha.Engine { return f.capt }

// RequestCode valida el captcha localmente y pide el código por correo.
func (f *Flow) RequestCode(ctx context.Context, email, captchaInput string) (Result, error) {
	if f.step != StepRequest {
		return Result{}, ErrWrongStep
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return Result{}, ErrEmailRequired
	}
	if !f.capt.Validate(captchaInput) {
		f.capt.Reload()
		return Result{}, ErrCaptchaInvalid
	}

	msg, err := f.client.ForgotPassword(ctx, email)
	if err != nil {
		return Result{}, err
	}
	f.email = email
	f.step = StepCode
	logger.From(ctx).Named("recovery").Info("código enviado", logger.Email(email))
	return Result{Message: msg}, nil
}

// StartExpiry arranca el countdown de vigencia del código. Al llegar a
// cero el flujo debe reiniciarse (la UI observa el tick 0).
func (f *Flow) StartExpiry(onTick func(remaining int)) {
	f.StopTimers()
	f.expiry = flow.StartCountdown(CodeTTLSeconds, onTick)
}

// ExpiryRemaining retorna los segundos de vigencia restantes.
func (f *Flow) ExpiryRemaining() int {
	if f.expiry == nil {
		return 0
	}
	return f.expiry.Remaining()
}

// SubmitCode valida el código recibido por correo.
func (f *Flow) SubmitCode(ctx context.Context, code string) (Result, error) {
	if f.step != StepCode {
		return Result{}, ErrWrongStep
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, ErrCodeRequired
	}

	msg, err := f.client.ValidateCode(ctx, f.email, code)
	if err != nil {
		if api.GoToLogin(err) {
			return Result{ForceRestart: true}, err
		}
		return Result{}, err
	}
	f.StopTimers()
	f.step = StepReset
	return Result{Message: msg}, nil
}

// SubmitNewPassword valida la política y la confirmación, y fija la
// contraseña nueva.
func (f *Flow) SubmitNewPassword(ctx context.Context, newPass, confirm string) (Result, error) {
	if f.step != StepReset {
		return Result{}, ErrWrongStep
	}
	if newPass == "" || confirm == "" {
		return Result{}, ErrFieldsRequired
	}
	if err := password.Check(newPass); err != nil {
		return Result{}, err
	}
	if newPass != confirm {
		return Result{}, ErrPasswordMismatch
	}

	msg, err := f.client.ResetPassword(ctx, f.email, newPass)
	if err != nil {
		return Result{}, err
	}
	logger.From(ctx).Named("recovery").Info("contraseña restablecida", logger.Email(f.email))
	return Result{Message: msg, Done: true}, nil
}

// StopTimers cancela el countdown de expiración. Llamar al desmontar.
func (f *Flow) StopTimers() {
	if f.expiry != nil {
		f.expiry.Stop()
		f.expiry = nil
	}
}
