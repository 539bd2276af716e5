package register_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/apitest"
	"github.com/dropDatabas3/eventapp-cli/internal/register"
	"github.com/dropDatabas3/eventapp-cli/internal/security/password"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

func newFlow(t *testing.T) (*register.Flow, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return register.New(api.New(srv.URL, store, 0)), srv
}

func acceptEmail(srv *apitest.Server) {
	srv.Router.Post("/api/auth/validate-email", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "disponible"})
	})
}

func submitBasics(t *testing.T, f *register.Flow) {
	t.Helper()
	err := f.SubmitBasics(context.Background(),
		"Ana", "ana@example.com", "Abcdefg1!", f.Captcha().Challenge())
	if err != nil {
		t.Fatalf("basics: %v", err)
	}
}

func TestBasics_LocalValidationFirst(t *testing.T) {
	f, srv := newFlow(t)
	var calls atomic.Int32
	srv.Router.Post("/api/auth/validate-email", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		apitest.JSON(w, http.StatusOK, nil)
	})

	ctx := context.Background()
	capt := f.Captcha().Challenge()

	if err := f.SubmitBasics(ctx, "", "a@b.c", "Abcdefg1!", capt); !errors.Is(err, register.ErrNameRequired) {
		t.Fatalf("empty name: %v", err)
	}
	if err := f.SubmitBasics(ctx, "Ana", "", "Abcdefg1!", capt); !errors.Is(err, register.ErrEmailRequired) {
		t.Fatalf("empty email: %v", err)
	}

	var perr *password.PolicyError
	if err := f.SubmitBasics(ctx, "Ana", "a@b.c", "corta", capt); !errors.As(err, &perr) {
		t.Fatalf("weak password: %v", err)
	}

	if err := f.SubmitBasics(ctx, "Ana", "a@b.c", "Abcdefg1!", "nope"); !errors.Is(err, register.ErrCaptchaInvalid) {
		t.Fatalf("wrong captcha: %v", err)
	}

	if calls.Load() != 0 {
		t.Fatal("local validation failures must not reach the network")
	}
	if f.Step() != register.StepBasics {
		t.Fatal("flow must stay on basics")
	}
}

func TestBasics_TakenEmail(t *testing.T) {
	f, srv := newFlow(t)
	srv.Router.Post("/api/auth/validate-email", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusConflict, map[string]string{"message": "correo ya registrado"})
	})

	err := f.SubmitBasics(context.Background(),
		"Ana", "ana@example.com", "Abcdefg1!", f.Captcha().Challenge())
	if api.AsError(err) == nil {
		t.Fatalf("expected server error, got %v", err)
	}
	if f.Step() != register.StepBasics {
		t.Fatal("taken email must keep the flow on basics")
	}
}

func TestQuestions_ExactlyTwo(t *testing.T) {
	f, srv := newFlow(t)
	acceptEmail(srv)
	submitBasics(t, f)

	cases := []struct {
		selected []int
		answers  map[int]string
		want     error
	}{
		{[]int{0}, map[int]string{0: "x"}, register.ErrQuestionCount},
		{[]int{0, 1, 2}, map[int]string{0: "x", 1: "y", 2: "z"}, register.ErrQuestionCount},
		{[]int{0, 0}, map[int]string{0: "x"}, register.ErrQuestionCount},
		{[]int{0, 99}, map[int]string{0: "x", 99: "y"}, register.ErrQuestionCount},
		{[]int{0, 1}, map[int]string{0: "x", 1: "  "}, register.ErrEmptyAnswer},
	}
	for _, c := range cases {
		if err := f.SubmitQuestions(c.selected, c.answers); !errors.Is(err, c.want) {
			t.Fatalf("selected=%v: got %v want %v", c.selected, err, c.want)
		}
		if f.Step() != register.StepQuestions {
			t.Fatal("invalid selection must not advance the step")
		}
	}

	if err := f.SubmitQuestions([]int{3, 1}, map[int]string{3: "tacos", 1: "CDMX"}); err != nil {
		t.Fatalf("valid selection: %v", err)
	}
	if f.Step() != register.StepMFASetup {
		t.Fatal("expected MFA setup step")
	}
	if got := f.Selected(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("selected must be sorted: %v", got)
	}
}

func TestMFASetup_ReusesSecretOnRetry(t *testing.T) {
	f, srv := newFlow(t)
	acceptEmail(srv)

	var secrets []string
	srv.Router.Post("/api/auth/pre-mfa-qr", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ExistingSecret string `json:"existingSecret"`
		}
		apitest.Decode(t, r, &body)
		secrets = append(secrets, body.ExistingSecret)
		apitest.JSON(w, http.StatusOK, map[string]string{"qr": "data:qr", "secret": "S3CRET"})
	})

	submitBasics(t, f)
	if err := f.SubmitQuestions([]int{0, 1}, map[int]string{0: "x", 1: "y"}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := f.EnterMFASetup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.EnterMFASetup(ctx); err != nil {
		t.Fatal(err)
	}

	if len(secrets) != 2 || secrets[0] != "" || secrets[1] != "S3CRET" {
		t.Fatalf("retry must resend the issued secret: %v", secrets)
	}
}

func TestRegister_SendsAccumulatedState(t *testing.T) {
	f, srv := newFlow(t)
	acceptEmail(srv)
	srv.Router.Post("/api/auth/pre-mfa-qr", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"qr": "data:qr", "secret": "S3CRET"})
	})

	var got api.RegisterRequest
	srv.Router.Post("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		apitest.Decode(t, r, &got)
		apitest.JSON(w, http.StatusCreated, map[string]string{"message": "cuenta creada"})
	})

	submitBasics(t, f)
	if err := f.SubmitQuestions([]int{1, 3}, map[int]string{1: "CDMX", 3: "tacos"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.EnterMFASetup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := f.SubmitMFACode(context.Background(), "123456"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got.Name != "Ana" || got.Email != "ana@example.com" {
		t.Fatalf("basics: %+v", got)
	}
	if got.Role != session.RoleUsuario {
		t.Fatalf("role: %q", got.Role)
	}
	if got.MFACode != "123456" {
		t.Fatalf("mfa code: %q", got.MFACode)
	}
	if len(got.SecurityQuestions) != 2 {
		t.Fatalf("questions: %+v", got.SecurityQuestions)
	}
	if got.SecurityQuestions[0].Question != register.Catalog[1] ||
		got.SecurityQuestions[1].Question != register.Catalog[3] {
		t.Fatalf("question text must come from the catalog: %+v", got.SecurityQuestions)
	}
}

func TestRegister_ServerFailureResetsEverything(t *testing.T) {
	f, srv := newFlow(t)
	acceptEmail(srv)
	srv.Router.Post("/api/auth/pre-mfa-qr", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"qr": "data:qr", "secret": "S3CRET"})
	})
	srv.Router.Post("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusBadRequest, map[string]string{"message": "código MFA inválido"})
	})

	submitBasics(t, f)
	if err := f.SubmitQuestions([]int{0, 1}, map[int]string{0: "x", 1: "y"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.EnterMFASetup(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := f.SubmitMFACode(context.Background(), "000000")
	if err == nil {
		t.Fatal("expected server error")
	}
	if f.Step() != register.StepBasics {
		t.Fatal("failure must reset to basics")
	}
	if f.Basics() != (register.Basics{}) {
		t.Fatalf("basics must be wiped: %+v", f.Basics())
	}
	if f.QR() != "" {
		t.Fatal("QR must be wiped")
	}
}
