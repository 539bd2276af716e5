package api

import (
	"context"

	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// Wrappers tipados de los endpoints de autenticación. Los shapes son los
// del backend EventApp tal cual; el cliente no inventa campos.

// LoginResponse cubre los dos resultados posibles del login: o el backend
// pide MFA (mfaRequired, sin token), o entrega la sesión completa.
type LoginResponse struct {
	MFARequired bool         `json:"mfaRequired"`
	Token       string       `json:"token"`
	User        session.User `json:"user"`
}

// Login envía credenciales. El captcha ya fue validado localmente.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.Post(ctx, "/api/login/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA envía el código del autenticador. El campo se llama "token" en
// el wire por compatibilidad con el backend, aunque es el código de 6 dígitos.
func (c *Client) VerifyMFA(ctx context.Context, email, code string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "token": code}
	var out LoginResponse
	if err := c.Post(ctx, "/api/login/verify-mfa", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SecurityQuestion es una pregunta registrada del usuario.
type SecurityQuestion struct {
	Question string `json:"question"`
}

// SecurityAnswer es la respuesta a una pregunta de seguridad.
type SecurityAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GetSecurityQuestions trae las preguntas registradas del email.
func (c *Client) GetSecurityQuestions(ctx context.Context, email string) ([]SecurityQuestion, error) {
	body := map[string]string{"email": email}
	var out struct {
		Questions []SecurityQuestion `json:"questions"`
	}
	if err := c.Post(ctx, "/api/login/get-security-questions", body, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// VerifySecurityQuestions valida las respuestas; en éxito el backend emite
// un QR nuevo para reenlazar el autenticador.
func (c *Client) VerifySecurityQuestions(ctx context.Context, email string, answers []SecurityAnswer) (qr string, err error) {
	body := map[string]any{"email": email, "answers": answers}
	var out struct {
		QR string `json:"qr"`
	}
	if err := c.Post(ctx, "/api/login/verify-security-questions", body, &out); err != nil {
		return "", err
	}
	return out.QR, nil
}

// ValidateEmail verifica disponibilidad del correo para registro.
func (c *Client) ValidateEmail(ctx context.Context, email string) error {
	return c.Post(ctx, "/api/auth/validate-email", map[string]string{"email": email}, nil)
}

// PreMFAQR pide el QR de aprovisionamiento antes de existir la cuenta.
// existingSecret se reenvía en retries para no rotar el secreto en silencio.
type PreMFAQR struct {
	QR     string `json:"qr"`
	Secret string `json:"secret"`
}

func (c *Client) RequestPreMFAQR(ctx context.Context, email, existingSecret string) (*PreMFAQR, error) {
	body := map[string]string{"email": email}
	if existingSecret != "" {
		body["existingSecret"] = existingSecret
	}
	var out PreMFAQR
	if err := c.Post(ctx, "/api/auth/pre-mfa-qr", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterRequest es el payload final del registro: datos básicos + las dos
// preguntas elegidas + el código MFA, en un solo request.
type RegisterRequest struct {
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Password          string           `json:"password"`
	Captcha           string           `json:"captcha"`
	SecurityQuestions []SecurityAnswer `json:"securityQuestions"`
	MFACode           string           `json:"mfaCode"`
	Role              string           `json:"role"`
}

// Register crea la cuenta.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, "/api/auth/register", req, nil)
}

// ForgotPassword solicita el código de recuperación por correo.
func (c *Client) ForgotPassword(ctx context.Context, email string) (message string, err error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.Post(ctx, "/api/auth/forgot-password", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ValidateCode valida el código de 6 dígitos recibido por correo.
func (c *Client) ValidateCode(ctx context.Context, email, code string) (message string, err error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.Post(ctx, "/api/auth/validate-code", map[string]string{"email": email, "code": code}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ResetPassword fija la contraseña nueva tras validar el código.
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) (message string, err error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"email": email, "newPassword": newPassword}
	if err := c.Post(ctx, "/api/auth/reset-password", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
