package session

import (
	"encoding/json"
	"os"
	"sync"
)

// Store persiste la sesión en un archivo JSON con escritura atómica:
// Save escribe token+rol+usuario en una sola operación, Load trata
// archivo ausente o corrupto como "sin sesión", Clear es idempotente.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore crea un store sobre el archivo dado.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load retorna la sesión vigente, o (nil, false) si no hay.
// Un archivo ilegible o con JSON inválido cuenta como ausente: el cliente
// nunca debe quedarse trabado por un archivo de sesión roto.
func (s *Store) Load() (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, false
	}
	if !sess.Valid() {
		// Estado intermedio inválido (ej: token sin rol): se descarta
		return nil, false
	}
	return &sess, true
}

// Save persiste la sesión completa. Rechaza sesiones parciales para que el
// invariante token+rol nunca se rompa en disco.
func (s *Store) Save(sess Session) error {
	if !sess.Valid() {
		return ErrPartialSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.path, b, 0o600)
}

// Clear elimina la sesión. Llamarlo sin sesión no es error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ErrPartialSession se retorna cuando Save recibe una sesión incompleta.
var ErrPartialSession = errPartialSession{}

type errPartialSession struct{}

func (errPartialSession) Error() string {
	return "session: token, rol y usuario deben escribirse juntos"
}
