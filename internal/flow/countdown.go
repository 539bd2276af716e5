// Package flow contiene utilidades compartidas por los flujos de varios
// pasos: temporizadores cancelables y el resultado de navegación que cada
// flujo entrega al terminar.
package flow

import (
	"fmt"
	"sync"
	"time"
)

// Countdown es un contador descendente de un tick por segundo.
//
// El callback recibe los segundos restantes (incluido el 0 final) y Stop
// cancela el timer al desmontar la pantalla, para que nunca actúe sobre
// estado ya descartado.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	stopped   bool
}

// StartCountdown arranca un contador desde seconds. onTick se invoca en una
// goroutine propia una vez por segundo con el valor ya decrementado.
func StartCountdown(seconds int, onTick func(remaining int)) *Countdown {
	c := &Countdown{
		remaining: seconds,
		stop:      make(chan struct{}),
	}
	go c.run(onTick)
	return c
}

func (c *Countdown) run(onTick func(int)) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.remaining > 0 {
				c.remaining--
			}
			r := c.remaining
			c.mu.Unlock()
			onTick(r)
			if r == 0 {
				c.Stop()
				return
			}
		}
	}
}

// Remaining retorna los segundos restantes.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancela el contador. Es idempotente y seguro llamarlo desde
// cualquier goroutine.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		close(c.stop)
	}
}

// FormatMMSS formatea segundos como mm:ss (ej: 900 → "15:00").
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
