// Package captcha implementa el desafío local de transcripción: un texto
// aleatorio que el usuario copia y que se valida en el cliente ANTES de
// cualquier request. No hay round-trip al servidor por un captcha
// obviamente mal escrito.
package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// charset evita caracteres ambiguos en terminal (0/O, 1/l/I).
const charset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

// Largo del desafío por pantalla: login usa 5, registro y recuperación
// usan 6.
const (
	LoginLength    = 5
	RegisterLength = 6
)

// Engine genera y valida desafíos. Cada Reload invalida el anterior.
type Engine struct {
	length  int
	current string
}

// NewEngine crea un engine y carga el primer desafío.
func NewEngine(length int) *Engine {
	e := &Engine{length: length}
	e.Reload()
	return e
}

// Reload genera un desafío nuevo.
func (e *Engine) Reload() {
	b := make([]byte, e.length)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand no debería fallar; si falla, desafío imposible
			// antes que uno predecible
			b[i] = '#'
			continue
		}
		b[i] = charset[n.Int64()]
	}
	e.current = string(b)
}

// Challenge retorna el texto vigente (para tests y render).
func (e *Engine) Challenge() string {
	return e.current
}

// Render dibuja el desafío con ruido de separadores para que no se pueda
// copiar y pegar directo.
func (e *Engine) Render() string {
	var sb strings.Builder
	seps := []string{"·", "˜", "ˆ", "¯", "˛"}
	for i, r := range e.current {
		if i > 0 {
			sb.WriteString(seps[i%len(seps)])
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Validate compara la entrada (con trim) contra el desafío vigente.
// Sensible a mayúsculas.
func (e *Engine) Validate(input string) bool {
	return strings.TrimSpace(input) == e.current
}
