// Package events es el cliente del catálogo de eventos: listado,
// categorías/ubicaciones, detalle y filtrado local. Las respuestas del
// catálogo se cachean en memoria porque la home las pide en cada entrada.
package events

import "time"

// Tier es la disponibilidad de un tipo de boleto.
type Tier struct {
	Disponibles int     `json:"disponibles"`
	Precio      float64 `json:"precio"`
	Descripcion string  `json:"descripcion"`
}

// Disponibilidad agrupa los tres tipos de boleto de un evento.
type Disponibilidad struct {
	Basico  Tier `json:"basico"`
	Premium Tier `json:"premium"`
	Vip     Tier `json:"vip"`
}

// Evento es un evento del catálogo, con los nombres de campo del backend.
type Evento struct {
	ID             string         `json:"id"`
	Nombre         string         `json:"nombre"`
	Descripcion    string         `json:"descripcion"`
	Lugar          string         `json:"lugar"`
	Fecha          time.Time      `json:"fecha"`
	Imagen         string         `json:"imagen"`
	Categoria      string         `json:"categoria"`
	Subcategoria   string         `json:"subcategoria"`
	Disponibilidad Disponibilidad `json:"disponibilidad"`
}

// Filtro es el filtro local por categoría y/o ubicación. Campos vacíos
// no filtran.
type Filtro struct {
	Categoria string
	Ubicacion string
}

// Aplicar filtra la lista del lado del cliente: el backend entrega el
// catálogo completo y las facetas se aplican en memoria.
func (f Filtro) Aplicar(all []Evento) []Evento {
	if f.Categoria == "" && f.Ubicacion == "" {
		return all
	}
	out := make([]Evento, 0, len(all))
	for _, ev := range all {
		if f.Categoria != "" && ev.Categoria != f.Categoria {
			continue
		}
		if f.Ubicacion != "" && ev.Lugar != f.Ubicacion {
			continue
		}
		out = append(out, ev)
	}
	return out
}
