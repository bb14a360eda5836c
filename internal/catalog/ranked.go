package catalog

import (
	"context"
	"math"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
)

// boundsOrFull normalizes optional cost bounds to a concrete interval
func boundsOrFull(lo, hi *float64) (float64, float64) {
	l, h := math.Inf(-1), math.Inf(1)
	if lo != nil {
		l = *lo
	}
	if hi != nil {
		h = *hi
	}
	return l, h
}

// rankMap holds the rank -> subrank -> weighted list layout shared by
// ranked and wondrous-slot tables. It carries no gate of its own; the
// owning table gates access.
type rankMap struct {
	ranks map[treasure.Rank]*treasure.ListMap
}

func newRankMap() *rankMap {
	return &rankMap{ranks: make(map[treasure.Rank]*treasure.ListMap)}
}

func (m *rankMap) set(rank treasure.Rank, subrank treasure.Subrank, list *treasure.WeightedList) {
	lm, ok := m.ranks[rank]
	if !ok {
		lm = treasure.NewListMap()
		m.ranks[rank] = lm
	}
	lm.Set(string(subrank), list)
}

// rankKeys returns the populated ranks in tier order
func (m *rankMap) rankKeys() []treasure.Rank {
	keys := make([]treasure.Rank, 0, len(m.ranks))
	for _, r := range treasure.Ranks {
		if _, ok := m.ranks[r]; ok {
			keys = append(keys, r)
		}
	}
	return keys
}

// random fills unset rank and subrank uniformly over the populated
// keys, then performs a cost-filtered weighted draw within the chosen
// list.
func (m *rankMap) random(src random.Source, rank treasure.Rank, subrank treasure.Subrank, lo, hi float64) (*treasure.Item, error) {
	if rank == "" {
		picked, err := random.Uniform(src, m.rankKeys())
		if err != nil {
			return nil, rollerr.NoMatch("table has no ranks")
		}
		rank = picked
	}

	lm, ok := m.ranks[rank]
	if !ok {
		return nil, rollerr.NoMatchf("table has no %s entries", rank)
	}

	if subrank == "" {
		picked, err := random.Uniform(src, lm.Keys())
		if err != nil {
			return nil, rollerr.NoMatchf("table has no subranks under %s", rank)
		}
		subrank = treasure.Subrank(picked)
	}

	list, ok := lm.Get(string(subrank))
	if !ok {
		return nil, rollerr.NoMatchf("table has no %s %s entries", subrank, rank)
	}
	if !list.CanSatisfy(lo, hi) {
		return nil, rollerr.NoMatchf("no %s %s entry within cost bounds", subrank, rank)
	}
	return random.CostFilteredChoice(src, list.Entries(), lo, hi)
}

// RankedTable is a generic rank/subrank catalog (rings, rods, staves
// and the like)
type RankedTable struct {
	name  string
	gate  *Gate
	items *rankMap
}

// NewRankedTable creates an empty, not yet ready table
func NewRankedTable(name string) *RankedTable {
	return &RankedTable{
		name:  name,
		gate:  NewGate(name),
		items: newRankMap(),
	}
}

// Name returns the catalog key
func (t *RankedTable) Name() string {
	return t.name
}

// Gate exposes the readiness gate to the loader
func (t *RankedTable) Gate() *Gate {
	return t.gate
}

// Set installs the list for one rank/subrank cell. Loader-only; the
// table is immutable once the gate opens.
func (t *RankedTable) Set(rank treasure.Rank, subrank treasure.Subrank, list *treasure.WeightedList) {
	t.items.set(rank, subrank, list)
}

// Random draws an item, filling unset rank/subrank uniformly
func (t *RankedTable) Random(ctx context.Context, src random.Source, rank treasure.Rank, subrank treasure.Subrank, lo, hi *float64) (*treasure.Item, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}
	l, h := boundsOrFull(lo, hi)
	return t.items.random(src, rank, subrank, l, h)
}
