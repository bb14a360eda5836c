package catalog

import (
	"context"
	"sort"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
)

// SlotSlotless is the wondrous slot that also carries the least
// subrank tier
const SlotSlotless = "slotless"

// WondrousTable maps body slots to rank/subrank item tables. One gate
// covers the whole family; the slots load together from one source.
type WondrousTable struct {
	gate  *Gate
	slots map[string]*rankMap
}

// NewWondrousTable creates an empty, not yet ready table
func NewWondrousTable() *WondrousTable {
	return &WondrousTable{
		gate:  NewGate("wondrous"),
		slots: make(map[string]*rankMap),
	}
}

// Gate exposes the readiness gate to the loader
func (t *WondrousTable) Gate() *Gate {
	return t.gate
}

// Set installs the list for one slot/rank/subrank cell. Loader-only.
func (t *WondrousTable) Set(slot string, rank treasure.Rank, subrank treasure.Subrank, list *treasure.WeightedList) {
	m, ok := t.slots[slot]
	if !ok {
		m = newRankMap()
		t.slots[slot] = m
	}
	m.set(rank, subrank, list)
}

// HasSlot reports whether slot names a known body slot. It waits on
// the gate: slot membership is only knowable once the table loads.
func (t *WondrousTable) HasSlot(ctx context.Context, slot string) (bool, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return false, err
	}
	_, ok := t.slots[slot]
	return ok, nil
}

// Slots returns the known slot names, sorted
func (t *WondrousTable) Slots(ctx context.Context) ([]string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(t.slots))
	for name := range t.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RandomSlot picks a slot uniformly
func (t *WondrousTable) RandomSlot(ctx context.Context, src random.Source) (string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return "", err
	}

	names := make([]string, 0, len(t.slots))
	for name := range t.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return random.Uniform(src, names)
}

// Random draws an item from one slot's table
func (t *WondrousTable) Random(ctx context.Context, src random.Source, slot string, rank treasure.Rank, subrank treasure.Subrank, lo, hi *float64) (*treasure.Item, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	m, ok := t.slots[slot]
	if !ok {
		return nil, rollerr.NoMatchf("unknown wondrous slot %q", slot)
	}
	l, h := boundsOrFull(lo, hi)
	return m.random(src, rank, subrank, l, h)
}
