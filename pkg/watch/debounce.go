package watch

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers. It fires once the triggers have
// been quiet for the quiet period, or once maxWait has passed since the
// first trigger of a burst, whichever comes first.
type debouncer struct {
	quiet   time.Duration
	maxWait time.Duration
	out     chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	first   time.Time
	pending bool
}

func newDebouncer(quiet, maxWait time.Duration) *debouncer {
	if maxWait < quiet {
		maxWait = quiet
	}
	return &debouncer{
		quiet:   quiet,
		maxWait: maxWait,
		out:     make(chan struct{}, 1),
	}
}

// Trigger records an event.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if !d.pending {
		d.pending = true
		d.first = now
	}
	wait := d.quiet
	if deadline := d.first.Add(d.maxWait); now.Add(wait).After(deadline) {
		wait = deadline.Sub(now)
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(wait, d.fire)
	} else {
		d.timer.Reset(wait)
	}
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	select {
	case d.out <- struct{}{}:
	default:
	}
}

// C delivers one value per flushed burst. Bursts flushed while a value is
// still unread are merged into it.
func (d *debouncer) C() <-chan struct{} { return d.out }

// Stop cancels a pending flush.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
