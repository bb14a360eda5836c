package catalog

import (
	"context"
	"sync"
	"time"

	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// DefaultReadyTimeout bounds how long a reader blocks on a catalog
// that has not finished loading
const DefaultReadyTimeout = 5 * time.Second

// Gate is a per-catalog readiness flag. It is created closed at
// catalog construction and opened exactly once after a successful
// load. Readers block cooperatively until it opens or their wait
// times out.
type Gate struct {
	name    string
	done    chan struct{}
	once    sync.Once
	timeout time.Duration
}

// NewGate creates a gate with the default wait timeout
func NewGate(name string) *Gate {
	return NewGateWithTimeout(name, DefaultReadyTimeout)
}

// NewGateWithTimeout creates a gate with an explicit wait timeout
func NewGateWithTimeout(name string, timeout time.Duration) *Gate {
	return &Gate{
		name:    name,
		done:    make(chan struct{}),
		timeout: timeout,
	}
}

// SetTimeout overrides the wait timeout. Loader-only: must be called
// during catalog construction, before the table is published.
func (g *Gate) SetTimeout(timeout time.Duration) {
	g.timeout = timeout
}

// Open marks the catalog ready. Safe to call more than once; only the
// first call has any effect.
func (g *Gate) Open() {
	g.once.Do(func() {
		close(g.done)
	})
}

// Ready reports readiness without blocking
func (g *Gate) Ready() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the gate opens, the context is canceled, or the
// gate's timeout elapses. Both failure paths yield NotReady so
// callers surface one recoverable outcome.
func (g *Gate) Wait(ctx context.Context) error {
	if g.Ready() {
		return nil
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return rollerr.WrapWithCode(ctx.Err(), rollerr.CodeNotReady,
			g.name+" catalog wait canceled")
	case <-timer.C:
		return rollerr.NotReadyf("%s catalog not loaded after %v", g.name, g.timeout)
	}
}
