// Package checkout arma y envía la compra de boletos de un evento:
// cantidades por tipo con tope local, desglose con impuesto y confirmación.
package checkout

import (
	"context"
	"errors"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/events"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
)

// TaxRate es el impuesto aplicado sobre el subtotal (16%).
const TaxRate = 0.16

// MaxPerTier es el tope de boletos por tipo en una misma compra,
// acotado además por la disponibilidad del evento.
const MaxPerTier = 5

var (
	// ErrEmptyOrder: la compra no lleva ningún boleto.
	ErrEmptyOrder = errors.New("checkout: selecciona al menos un boleto")
	// ErrOverLimit: alguna cantidad supera el tope o la disponibilidad.
	ErrOverLimit = errors.New("checkout: cantidad por encima del máximo permitido")
)

// Order son las cantidades elegidas por tipo de boleto.
type Order struct {
	Basico  int
	Premium int
	Vip     int
}

// Empty reporta si la orden no lleva boletos.
func (o Order) Empty() bool { return o.Basico == 0 && o.Premium == 0 && o.Vip == 0 }

// Limit retorna el máximo comprable de un tipo: min(MaxPerTier, disponibles).
func Limit(t events.Tier) int {
	if t.Disponibles < MaxPerTier {
		return t.Disponibles
	}
	return MaxPerTier
}

// Breakdown es el desglose de la compra que se muestra antes de confirmar.
type Breakdown struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Quote calcula el desglose de la orden contra los precios del evento.
func Quote(ev *events.Evento, o Order) Breakdown {
	sub := float64(o.Basico)*ev.Disponibilidad.Basico.Precio +
		float64(o.Premium)*ev.Disponibilidad.Premium.Precio +
		float64(o.Vip)*ev.Disponibilidad.Vip.Precio
	tax := sub * TaxRate
	return Breakdown{Subtotal: sub, Tax: tax, Total: sub + tax}
}

// Validate chequea la orden contra los topes del evento. Local, sin red.
func Validate(ev *events.Evento, o Order) error {
	if o.Empty() {
		return ErrEmptyOrder
	}
	if o.Basico < 0 || o.Premium < 0 || o.Vip < 0 {
		return ErrOverLimit
	}
	if o.Basico > Limit(ev.Disponibilidad.Basico) ||
		o.Premium > Limit(ev.Disponibilidad.Premium) ||
		o.Vip > Limit(ev.Disponibilidad.Vip) {
		return ErrOverLimit
	}
	return nil
}

// purchaseRequest es el cuerpo del POST de compra. El backend identifica
// al comprador por su correo.
type purchaseRequest struct {
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
	Tickets struct {
		Basico  int `json:"basico"`
		Premium int `json:"premium"`
		Vip     int `json:"vip"`
	} `json:"tickets"`
}

// Purchase valida la orden y la envía. El mensaje retornado es el del servidor.
func Purchase(ctx context.Context, client *api.Client, userEmail string, ev *events.Evento, o Order) (string, error) {
	if err := Validate(ev, o); err != nil {
		return "", err
	}

	req := purchaseRequest{UserID: userEmail, EventID: ev.ID}
	req.Tickets.Basico = o.Basico
	req.Tickets.Premium = o.Premium
	req.Tickets.Vip = o.Vip

	var resp struct {
		Message string `json:"message"`
	}
	if err := client.Post(ctx, "/api/event/comprar", req, &resp); err != nil {
		return "", err
	}
	logger.From(ctx).Named("checkout").Info("compra confirmada",
		logger.Email(userEmail), logger.String("event_id", ev.ID))
	return resp.Message, nil
}
