package catalog

import (
	"context"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
)

// CompoundTable is a rank-only catalog whose items also depend on a
// spellcasting class (potions, scrolls, wands). Subranks do not apply.
type CompoundTable struct {
	name          string
	gate          *Gate
	classRequired bool
	ranks         map[treasure.Rank]*treasure.WeightedList
}

// NewCompoundTable creates an empty, not yet ready table
func NewCompoundTable(name string, classRequired bool) *CompoundTable {
	return &CompoundTable{
		name:          name,
		gate:          NewGate(name),
		classRequired: classRequired,
		ranks:         make(map[treasure.Rank]*treasure.WeightedList),
	}
}

// Name returns the catalog key
func (t *CompoundTable) Name() string {
	return t.name
}

// Gate exposes the readiness gate to the loader
func (t *CompoundTable) Gate() *Gate {
	return t.gate
}

// ClassRequired reports whether rolls against this table must name a
// casting class
func (t *CompoundTable) ClassRequired() bool {
	return t.classRequired
}

// Set installs the list for one rank. Loader-only.
func (t *CompoundTable) Set(rank treasure.Rank, list *treasure.WeightedList) {
	t.ranks[rank] = list
}

// Random draws an item by rank, filling an unset rank uniformly over
// the populated ranks
func (t *CompoundTable) Random(ctx context.Context, src random.Source, rank treasure.Rank, lo, hi *float64) (*treasure.Item, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}
	l, h := boundsOrFull(lo, hi)

	if rank == "" {
		keys := make([]treasure.Rank, 0, len(t.ranks))
		for _, r := range treasure.Ranks {
			if _, ok := t.ranks[r]; ok {
				keys = append(keys, r)
			}
		}
		picked, err := random.Uniform(src, keys)
		if err != nil {
			return nil, rollerr.NoMatchf("%s table is empty", t.name)
		}
		rank = picked
	}

	list, ok := t.ranks[rank]
	if !ok {
		return nil, rollerr.NoMatchf("%s table has no %s entries", t.name, rank)
	}
	if !list.CanSatisfy(l, h) {
		return nil, rollerr.NoMatchf("no %s %s entry within cost bounds", rank, t.name)
	}
	return random.CostFilteredChoice(src, list.Entries(), l, h)
}
