package random

import (
	"sort"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// WeightedChoice draws one entry, with each entry contributing Weight
// equal outcomes. The draw is a bucket search over cumulative weights
// rather than materialized repetition, so large weights cost nothing.
func WeightedChoice[T any](src Source, entries []treasure.WeightedEntry[T]) (T, error) {
	var zero T
	if len(entries) == 0 {
		return zero, rollerr.NoMatch("no entries to choose from")
	}

	cumulative := make([]int, len(entries))
	total := 0
	for i, e := range entries {
		if e.Weight < 1 {
			return zero, rollerr.Invalidf("entry %d has weight %d, must be at least 1", i, e.Weight)
		}
		total += e.Weight
		cumulative[i] = total
	}

	pick := src.Intn(total)
	idx := sort.SearchInts(cumulative, pick+1)
	return entries[idx].Value, nil
}

// FilteredChoice draws among the entries keep admits. NoMatch when the
// filter admits nothing.
func FilteredChoice[T any](src Source, entries []treasure.WeightedEntry[T], keep func(T) bool) (T, error) {
	var zero T
	kept := make([]treasure.WeightedEntry[T], 0, len(entries))
	for _, e := range entries {
		if keep(e.Value) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return zero, rollerr.NoMatch("no entry satisfies the filter")
	}
	return WeightedChoice(src, kept)
}

// CostFilteredChoice draws among items whose cost or cost range can
// satisfy [lo, hi]. Items with unknown costs are never pre-filtered.
func CostFilteredChoice(src Source, entries []treasure.WeightedEntry[*treasure.Item], lo, hi float64) (*treasure.Item, error) {
	it, err := FilteredChoice(src, entries, func(it *treasure.Item) bool {
		return it.FilterRange().Overlaps(lo, hi)
	})
	if err != nil {
		return nil, rollerr.WrapWithCode(err, rollerr.GetCode(err), "no item within cost bounds")
	}
	return it, nil
}

// Uniform picks one value with equal probability, regardless of how
// the values are populated. Used to fill unspecified rank and subrank
// keys.
func Uniform[T any](src Source, values []T) (T, error) {
	var zero T
	if len(values) == 0 {
		return zero, rollerr.NoMatch("no values to choose from")
	}
	return values[src.Intn(len(values))], nil
}
