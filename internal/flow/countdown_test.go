package flow

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdown_TicksDownToZero(t *testing.T) {
	done := make(chan struct{})
	var last atomic.Int32
	last.Store(-1)

	c := StartCountdown(2, func(remaining int) {
		last.Store(int32(remaining))
		if remaining == 0 {
			close(done)
		}
	})
	defer c.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown did not reach zero")
	}
	if got := last.Load(); got != 0 {
		t.Fatalf("last tick: got %d want 0", got)
	}
	if got := c.Remaining(); got != 0 {
		t.Fatalf("remaining: got %d want 0", got)
	}
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	var ticks atomic.Int32
	c := StartCountdown(60, func(int) { ticks.Add(1) })
	c.Stop()
	c.Stop() // segundo Stop no debe panicar

	before := ticks.Load()
	time.Sleep(1500 * time.Millisecond)
	if after := ticks.Load(); after != before {
		t.Fatalf("ticks after stop: %d -> %d", before, after)
	}
}

func TestFormatMMSS(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{900, "15:00"},
		{61, "01:01"},
		{0, "00:00"},
		{-5, "00:00"},
	}
	for _, c := range cases {
		if got := FormatMMSS(c.in); got != c.want {
			t.Fatalf("FormatMMSS(%d): got %q want %q", c.in, got, c.want)
		}
	}
}
