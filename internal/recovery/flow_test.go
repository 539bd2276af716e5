package recovery_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/apitest"
	"github.com/dropDatabas3/eventapp-cli/internal/recovery"
	"github.com/dropDatabas3/eventapp-cli/internal/security/password"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

func newFlow(t *testing.T) (*recovery.Flow, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return recovery.New(api.New(srv.URL, store, 0)), srv
}

func requestCode(t *testing.T, f *recovery.Flow) recovery.Result {
	t.Helper()
	res, err := f.RequestCode(context.Background(), "ana@example.com", f.Captcha().Challenge())
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	return res
}

func TestRequestCode(t *testing.T) {
	f, srv := newFlow(t)
	srv.Router.Post("/api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "código enviado"})
	})

	res := requestCode(t, f)
	if res.Message != "código enviado" {
		t.Fatalf("message: %q", res.Message)
	}
	if f.Step() != recovery.StepCode {
		t.Fatal("expected code step")
	}
}

func TestRequestCode_LocalValidation(t *testing.T) {
	f, _ := newFlow(t)
	ctx := context.Background()

	if _, err := f.RequestCode(ctx, "", f.Captcha().Challenge()); !errors.Is(err, recovery.ErrEmailRequired) {
		t.Fatalf("empty email: %v", err)
	}
	if _, err := f.RequestCode(ctx, "a@b.c", "nope"); !errors.Is(err, recovery.ErrCaptchaInvalid) {
		t.Fatalf("wrong captcha: %v", err)
	}
	if f.Step() != recovery.StepRequest {
		t.Fatal("flow must stay on request")
	}
}

func TestSubmitCode(t *testing.T) {
	f, srv := newFlow(t)
	srv.Router.Post("/api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	srv.Router.Post("/api/auth/validate-code", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
			Code  string `json:"code"`
		}
		apitest.Decode(t, r, &body)
		if body.Code != "654321" {
			apitest.JSON(w, http.StatusBadRequest, map[string]string{"message": "código incorrecto"})
			return
		}
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "código válido"})
	})

	requestCode(t, f)
	ctx := context.Background()

	if _, err := f.SubmitCode(ctx, "111111"); err == nil {
		t.Fatal("wrong code must fail")
	}
	if f.Step() != recovery.StepCode {
		t.Fatal("wrong code must not advance")
	}

	if _, err := f.SubmitCode(ctx, "654321"); err != nil {
		t.Fatalf("valid code: %v", err)
	}
	if f.Step() != recovery.StepReset {
		t.Fatal("expected reset step")
	}
}

func TestSubmitCode_ExhaustedForcesRestart(t *testing.T) {
	f, srv := newFlow(t)
	srv.Router.Post("/api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	srv.Router.Post("/api/auth/validate-code", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusForbidden, map[string]any{
			"message":   "intentos agotados",
			"goToLogin": true,
		})
	})

	requestCode(t, f)
	res, err := f.SubmitCode(context.Background(), "000000")
	if err == nil {
		t.Fatal("expected error")
	}
	if !res.ForceRestart {
		t.Fatal("goToLogin must force restart")
	}
}

func TestSubmitNewPassword(t *testing.T) {
	f, srv := newFlow(t)
	srv.Router.Post("/api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	srv.Router.Post("/api/auth/validate-code", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	var gotNew string
	srv.Router.Post("/api/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email       string `json:"email"`
			NewPassword string `json:"newPassword"`
		}
		apitest.Decode(t, r, &body)
		gotNew = body.NewPassword
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "contraseña actualizada"})
	})

	requestCode(t, f)
	ctx := context.Background()
	if _, err := f.SubmitCode(ctx, "654321"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.SubmitNewPassword(ctx, "", ""); !errors.Is(err, recovery.ErrFieldsRequired) {
		t.Fatalf("empty fields: %v", err)
	}
	var perr *password.PolicyError
	if _, err := f.SubmitNewPassword(ctx, "corta", "corta"); !errors.As(err, &perr) {
		t.Fatalf("weak password: %v", err)
	}
	if _, err := f.SubmitNewPassword(ctx, "Abcdefg1!", "Abcdefg2!"); !errors.Is(err, recovery.ErrPasswordMismatch) {
		t.Fatalf("mismatch: %v", err)
	}

	res, err := f.SubmitNewPassword(ctx, "Abcdefg1!", "Abcdefg1!")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !res.Done || res.Message != "contraseña actualizada" {
		t.Fatalf("result: %+v", res)
	}
	if gotNew != "Abcdefg1!" {
		t.Fatalf("newPassword sent: %q", gotNew)
	}
}

func TestWrongStep(t *testing.T) {
	f, _ := newFlow(t)
	ctx := context.Background()
	if _, err := f.SubmitCode(ctx, "123456"); !errors.Is(err, recovery.ErrWrongStep) {
		t.Fatalf("code before request: %v", err)
	}
	if _, err := f.SubmitNewPassword(ctx, "Abcdefg1!", "Abcdefg1!"); !errors.Is(err, recovery.ErrWrongStep) {
		t.Fatalf("password before code: %v", err)
	}
}
