// Package password valida la política de composición de contraseñas del
// lado del cliente, antes de cualquier request. Las cuatro reglas son las
// mismas que muestra el formulario de registro, evaluadas de forma
// independiente para poder pintar el checklist regla por regla.
package password

import (
	"fmt"
	"strings"
	"unicode"
)

// symbols es el set exacto de caracteres especiales que acepta el backend.
const symbols = `!@#$%^&*(),.?":{}|<>`

// Requirement es una regla de composición con su etiqueta para la UI.
type Requirement struct {
	Label  string
	Reason string
	Met    func(s string) bool
}

// Requirements retorna las cuatro reglas fijas, en el orden que se muestran.
func Requirements() []Requirement {
	return []Requirement{
		{
			Label:  "Mínimo 8 caracteres",
			Reason: "too_short",
			Met:    func(s string) bool { return len([]rune(s)) >= 8 },
		},
		{
			Label:  "Una letra mayúscula",
			Reason: "missing_upper",
			Met: func(s string) bool {
				for _, r := range s {
					if unicode.IsUpper(r) {
						return true
					}
				}
				return false
			},
		},
		{
			Label:  "Un número",
			Reason: "missing_digit",
			Met: func(s string) bool {
				for _, r := range s {
					if unicode.IsDigit(r) {
						return true
					}
				}
				return false
			},
		},
		{
			Label:  "Un carácter especial",
			Reason: "missing_symbol",
			Met: func(s string) bool {
				for _, r := range s {
					for _, sym := range symbols {
						if r == sym {
							return true
						}
					}
				}
				return false
			},
		},
	}
}

// Validate evalúa TODAS las reglas y retorna las que fallaron.
// ok es true solo si las cuatro pasan.
func Validate(s string) (ok bool, reasons []string) {
	for _, req := range Requirements() {
		if !req.Met(s) {
			reasons = append(reasons, req.Reason)
		}
	}
	return len(reasons) == 0, reasons
}

// PolicyError agrupa las reglas que fallaron, para mostrar inline.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("la contraseña no cumple con los requisitos (%s)",
		strings.Join(e.Reasons, ", "))
}

// Check es Validate con error: nil si la contraseña cumple todo.
func Check(s string) error {
	if ok, reasons := Validate(s); !ok {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}
