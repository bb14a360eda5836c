package random

import (
	"fmt"
	"sync"
)

// ScriptedSource implements Source for testing with predetermined
// values. Each scripted value is returned verbatim from Intn, so a
// test scripts the index it wants each draw to land on.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int
	index  int
}

// NewScriptedSource creates a new scripted source
func NewScriptedSource(values ...int) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// SetValues replaces the script and resets the cursor
func (s *ScriptedSource) SetValues(values []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.index = 0
}

// Push appends a value to the script
func (s *ScriptedSource) Push(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, value)
}

// Remaining returns how many scripted values are unconsumed
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.index
}

// Intn returns the next scripted value. It panics when the script is
// exhausted or the value does not fit the requested bound; both are
// test bugs, not expected outcomes.
func (s *ScriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.values) {
		panic(fmt.Sprintf("scripted source exhausted (used %d of %d)", s.index, len(s.values)))
	}

	v := s.values[s.index]
	s.index++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("scripted value %d out of range [0, %d)", v, n))
	}
	return v
}
