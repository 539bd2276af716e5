// Package api es el cliente HTTP del backend EventApp.
//
// Una sola configuración base, un interceptor de request que adjunta el
// bearer token y el rol, y un interceptor de respuesta que centraliza el
// manejo de 401. Ningún flujo maneja 401 por su cuenta.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

const contentTypeJSON = "application/json"

// exemptFrom401 son los paths cuyo 401 NO limpia la sesión: el register
// (el usuario todavía no tiene sesión que perder) y la verificación de
// preguntas de seguridad (su 401 es "respuestas incorrectas", no "token
// vencido").
var exemptFrom401 = []string{
	"/api/auth/register",
	"/api/login/verify-security-questions",
}

// Client habla con el backend EventApp.
type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store

	// onExpired se invoca después de limpiar la sesión por un 401.
	// La TUI lo usa para forzar la vuelta a la pantalla de login.
	onExpired func()
}

// Option configura el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el *http.Client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithOnSessionExpired registra el hook de expiración de sesión.
func WithOnSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New crea el cliente con la URL base y el store de sesión.
func New(baseURL string, store *session.Store, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Post envía un POST JSON y decodifica la respuesta en out (out puede ser nil).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Get envía un GET y decodifica la respuesta en out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Put envía un PUT JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete envía un DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.From(ctx).Named("api")

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.intercept(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request falló",
			logger.Method(method), logger.Path(path), logger.Err(err))
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Debug("request ok",
			logger.Method(method), logger.Path(path),
			logger.Status(resp.StatusCode), logger.Duration(time.Since(start)))
		if out != nil && len(respBody) > 0 {
			return json.Unmarshal(respBody, out)
		}
		return nil
	}

	return c.handleFailure(ctx, method, path, resp.StatusCode, respBody)
}

// intercept es el interceptor de request: adjunta Authorization y user-role
// si hay sesión. Sin sesión el request sale igual, sin autenticar.
func (c *Client) intercept(req *http.Request) {
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if sess, ok := c.store.Load(); ok {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		req.Header.Set("user-role", sess.Role)
	}
}

// handleFailure es el interceptor de respuesta para el camino de error.
func (c *Client) handleFailure(ctx context.Context, method, path string, status int, body []byte) error {
	log := logger.From(ctx).Named("api")

	apiErr := &Error{Status: status}
	if len(body) > 0 {
		// Body no-JSON: se conserva crudo como mensaje
		if err := json.Unmarshal(body, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}

	switch status {
	case http.StatusUnauthorized:
		if !is401Exempt(path) {
			log.Warn("401 no autorizado, limpiando sesión",
				logger.Method(method), logger.Path(path))
			_ = c.store.Clear()
			if c.onExpired != nil {
				c.onExpired()
			}
			return ErrSessionExpired
		}
	case http.StatusForbidden:
		log.Warn("403 acceso denegado",
			logger.Method(method), logger.Path(path))
	case http.StatusInternalServerError:
		log.Error("500 error interno del servidor",
			logger.Method(method), logger.Path(path))
	}

	return apiErr
}

func is401Exempt(path string) bool {
	for _, p := range exemptFrom401 {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
