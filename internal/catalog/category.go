package catalog

import (
	"context"
	"sort"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
)

// CategoryTable maps each rank to a weighted list of category names.
// The orchestrator draws from it when a request names a rank but no
// category.
type CategoryTable struct {
	gate  *Gate
	ranks map[treasure.Rank][]treasure.WeightedEntry[string]
}

// NewCategoryTable creates an empty, not yet ready table
func NewCategoryTable() *CategoryTable {
	return &CategoryTable{
		gate:  NewGate("category"),
		ranks: make(map[treasure.Rank][]treasure.WeightedEntry[string]),
	}
}

// Gate exposes the readiness gate to the loader
func (t *CategoryTable) Gate() *Gate {
	return t.gate
}

// Set installs the weighted category names for one rank. Loader-only.
func (t *CategoryTable) Set(rank treasure.Rank, entries []treasure.WeightedEntry[string]) {
	t.ranks[rank] = entries
}

// Random draws a category name for the given rank
func (t *CategoryTable) Random(ctx context.Context, src random.Source, rank treasure.Rank) (string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return "", err
	}

	entries, ok := t.ranks[rank]
	if !ok {
		return "", rollerr.NoMatchf("no categories for rank %s", rank)
	}
	return random.WeightedChoice(src, entries)
}

// Names returns every category name appearing under any rank, sorted
func (t *CategoryTable) Names(ctx context.Context) ([]string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, entries := range t.ranks {
		for _, e := range entries {
			seen[e.Value] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
