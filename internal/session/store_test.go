package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func tmpStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func validSession() Session {
	return Session{
		Token: "tok-123",
		Role:  RoleUsuario,
		User:  User{Name: "Ana", Email: "ana@example.com", Role: RoleUsuario},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := tmpStore(t)

	if _, ok := s.Load(); ok {
		t.Fatal("expected no session before save")
	}

	want := validSession()
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := s.Load()
	if !ok {
		t.Fatal("expected session after save")
	}
	if got.Token != want.Token || got.Role != want.Role || got.User.Email != want.User.Email {
		t.Fatalf("loaded session mismatch: %+v", got)
	}
}

func TestStore_RejectsPartialSession(t *testing.T) {
	s := tmpStore(t)

	partials := []Session{
		{},
		{Token: "tok"},
		{Role: RoleUsuario},
		{Token: "tok", Role: RoleUsuario}, // sin usuario
		{Token: "tok", User: User{Email: "a@b.c"}},
	}
	for _, p := range partials {
		if err := s.Save(p); err != ErrPartialSession {
			t.Fatalf("expected ErrPartialSession for %+v, got %v", p, err)
		}
	}
	if _, ok := s.Load(); ok {
		t.Fatal("partial save must not leave a session on disk")
	}
}

func TestStore_MalformedFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if _, ok := s.Load(); ok {
		t.Fatal("malformed file must read as no session")
	}
}

func TestStore_PartialFileIsAbsent(t *testing.T) {
	// JSON válido pero sin rol: el invariante token+rol manda
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"token":"tok"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if _, ok := s.Load(); ok {
		t.Fatal("partial file must read as no session")
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s := tmpStore(t)
	if err := s.Clear(); err != nil {
		t.Fatalf("clear without session: %v", err)
	}
	if err := s.Save(validSession()); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, ok := s.Load(); ok {
		t.Fatal("expected no session after clear")
	}
}

func TestTimestamp_Formats(t *testing.T) {
	cases := []struct {
		in   string
		zero bool
	}{
		{`{"createdAt":{"seconds":1700000000}}`, false},
		{`{"createdAt":"2025-01-02T03:04:05Z"}`, false},
		{`{"createdAt":null}`, true},
		{`{}`, true},
	}
	for _, c := range cases {
		var u User
		if err := json.Unmarshal([]byte(c.in), &u); err != nil {
			t.Fatalf("unmarshal %s: %v", c.in, err)
		}
		if u.CreatedAt.IsZero() != c.zero {
			t.Fatalf("createdAt zero=%v for %s", u.CreatedAt.IsZero(), c.in)
		}
	}
}
