package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/auroramap/pkg/observability"
)

// Update is a published load outcome.
type Update struct {
	Generation uint64
	Result     *Result
	Err        error
}

// Loader runs the load and layout stages repeatedly and keeps the latest
// result. Every call to [Loader.Load] takes a new generation; when it
// finishes, its outcome is published only if no later load has started
// since. Results of superseded loads are dropped.
type Loader struct {
	runner *Runner
	opts   Options
	exec   func(context.Context, Options) (*Result, error)

	gen atomic.Uint64

	mu      sync.RWMutex
	current Update
	subs    map[chan Update]struct{}
}

// NewLoader creates a loader running opts through r.
func NewLoader(r *Runner, opts Options) *Loader {
	return &Loader{
		runner: r,
		opts:   opts,
		exec:   r.ExecuteLayout,
		subs:   make(map[chan Update]struct{}),
	}
}

// Options returns the options loads run with.
func (l *Loader) Options() Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opts
}

// SetOptions replaces the options of subsequent loads.
func (l *Loader) SetOptions(opts Options) {
	l.mu.Lock()
	l.opts = opts
	l.mu.Unlock()
}

// Load runs the pipeline. It reports whether the outcome was published;
// a superseded load returns (nil, false, nil).
func (l *Loader) Load(ctx context.Context) (*Result, bool, error) {
	return l.load(ctx, false)
}

// Reload is Load bypassing the dataset cache.
func (l *Loader) Reload(ctx context.Context) (*Result, bool, error) {
	return l.load(ctx, true)
}

func (l *Loader) load(ctx context.Context, refresh bool) (*Result, bool, error) {
	gen := l.gen.Add(1)
	opts := l.Options()
	opts.Refresh = opts.Refresh || refresh

	res, err := l.exec(ctx, opts)

	l.mu.Lock()
	if gen != l.gen.Load() {
		l.mu.Unlock()
		l.runner.Logger.Debug("discarded stale load", "generation", gen, "latest", l.gen.Load())
		observability.Pipeline().OnDiscard(ctx, gen)
		return nil, false, nil
	}
	u := Update{Generation: gen, Result: res, Err: err}
	if err == nil {
		l.current = u
	}
	for ch := range l.subs {
		// Drop an unread update so subscribers only ever see the latest.
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
	l.mu.Unlock()
	return res, err == nil, err
}

// Current returns the latest successful result, or nil before the first.
func (l *Loader) Current() (*Result, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.Result, l.current.Generation
}

// Subscribe returns a channel receiving every published update. The
// channel holds at most one pending update and is closed when ctx is done.
func (l *Loader) Subscribe(ctx context.Context) <-chan Update {
	ch := make(chan Update, 1)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs, ch)
		close(ch)
		l.mu.Unlock()
	}()
	return ch
}
