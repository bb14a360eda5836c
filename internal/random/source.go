package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields the raw random numbers the selection engine consumes.
// This allows us to inject deterministic implementations for testing.
type Source interface {
	// Intn returns a uniform value in [0, n). n must be positive.
	Intn(n int) int
}

// lockedSource wraps a rand.Rand for concurrent use. Batch rolls run
// on multiple goroutines against one shared source.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a time-seeded concurrent-safe source
func NewSource() Source {
	return &lockedSource{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSource creates a concurrent-safe source with a fixed seed,
// for reproducible statistical tests
func NewSeededSource(seed int64) Source {
	return &lockedSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
