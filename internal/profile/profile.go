// Package profile trae los datos del perfil: información del usuario y su
// historial de compras, más las estadísticas derivadas (nivel de asistente).
package profile

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/session"
)

// Purchase es una compra del historial, con los totales por tipo de boleto.
type Purchase struct {
	EventID string `json:"eventId"`
	Nombre  string `json:"nombre"`
	Fecha   string `json:"fecha"`
	Basico  int    `json:"basico"`
	Premium int    `json:"premium"`
	Vip     int    `json:"vip"`
}

// Tickets retorna el total de boletos de la compra.
func (p Purchase) Tickets() int { return p.Basico + p.Premium + p.Vip }

// Profile agrupa usuario e historial.
type Profile struct {
	User      session.User
	Purchases []Purchase
}

// Niveles de asistente según boletos acumulados.
const (
	LevelBronce = "Bronce"
	LevelPlata  = "Plata"
	LevelOro    = "Oro"
)

// Stats son las estadísticas derivadas del historial.
type Stats struct {
	TotalEvents  int
	TotalTickets int
	Level        string
}

// Stats calcula totales y nivel: <10 boletos Bronce, 10–29 Plata, 30+ Oro.
func (p *Profile) Stats() Stats {
	s := Stats{TotalEvents: len(p.Purchases)}
	for _, c := range p.Purchases {
		s.TotalTickets += c.Tickets()
	}
	switch {
	case s.TotalTickets >= 30:
		s.Level = LevelOro
	case s.TotalTickets >= 10:
		s.Level = LevelPlata
	default:
		s.Level = LevelBronce
	}
	return s
}

// Fetch trae usuario y compras en paralelo: son endpoints independientes
// y la pantalla de perfil los necesita juntos.
func Fetch(ctx context.Context, client *api.Client, email string) (*Profile, error) {
	var p Profile
	q := "?email=" + url.QueryEscape(email)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var resp struct {
			User session.User `json:"user"`
		}
		if err := client.Get(gctx, "/api/profile/userinfo"+q, &resp); err != nil {
			return err
		}
		p.User = resp.User
		return nil
	})
	g.Go(func() error {
		var resp struct {
			Purchases []Purchase `json:"purchases"`
		}
		if err := client.Get(gctx, "/api/profile/compras"+q, &resp); err != nil {
			return err
		}
		p.Purchases = resp.Purchases
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}
