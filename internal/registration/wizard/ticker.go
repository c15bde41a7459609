package wizard

import "time"

// Ticker is the part of time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealTicker backs the countdown with time.NewTicker.
func RealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// countdown is one running ticker goroutine. A wizard owns at most one.
type countdown struct {
	stop chan struct{}
	done chan struct{}
}

// startCountdownLocked replaces any running countdown. Without a ticker
// factory the wizard is passive and time only moves through Tick and CatchUp.
func (w *Wizard) startCountdownLocked() {
	w.stopCountdownLocked()
	if w.newTicker == nil || w.closed {
		return
	}
	t := w.newTicker(time.Second)
	cd := &countdown{stop: make(chan struct{}), done: make(chan struct{})}
	w.countdown = cd

	go func() {
		defer close(cd.done)
		defer t.Stop()
		for {
			select {
			case <-cd.stop:
				return
			case <-t.C():
				w.mu.Lock()
				if w.countdown != cd {
					w.mu.Unlock()
					return
				}
				running := w.tickLocked()
				if !running {
					w.countdown = nil
				}
				w.mu.Unlock()
				if !running {
					return
				}
			}
		}
	}()
}

// stopCountdownLocked signals the running countdown, if any. It does not wait
// for the goroutine; Close does.
func (w *Wizard) stopCountdownLocked() *countdown {
	cd := w.countdown
	if cd != nil {
		close(cd.stop)
		w.countdown = nil
	}
	return cd
}
