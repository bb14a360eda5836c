package treasure

import (
	"sort"

	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// WeightedEntry pairs a catalog value with its draw weight
type WeightedEntry[T any] struct {
	Weight int `json:"weight"`
	Value  T   `json:"value"`
}

// WeightedList is a write-once-read-many sequence of weighted items.
// It tracks the union of its members' discoverable costs so cost
// filtering can skip whole tables without touching their entries.
type WeightedList struct {
	entries []WeightedEntry[*Item]
	costs   CostRange

	// unknown counts members with no discoverable cost ("varies"
	// with no declared range); such members defeat fast rejection
	unknown int
}

// NewWeightedList creates an empty list with an empty cost range
func NewWeightedList() *WeightedList {
	return &WeightedList{costs: EmptyCostRange()}
}

// Insert appends an item, folding its discoverable cost into the
// tracked range
func (l *WeightedList) Insert(weight int, it *Item) error {
	if weight < 1 {
		return rollerr.Invalidf("entry weight must be at least 1, got %d", weight)
	}
	if it == nil {
		return rollerr.Invalid("entry item cannot be nil")
	}

	l.entries = append(l.entries, WeightedEntry[*Item]{Weight: weight, Value: it})
	r := it.Range()
	if r.IsEmpty() {
		l.unknown++
	}
	l.costs = l.costs.Union(r)
	return nil
}

// CanSatisfy reports whether some member might have a cost in
// [lo, hi]. False only when every member's cost is known and outside
// the bounds, so a false result safely skips the whole list.
func (l *WeightedList) CanSatisfy(lo, hi float64) bool {
	return l.unknown > 0 || l.costs.Overlaps(lo, hi)
}

// Entries exposes the members for a weighted draw. Callers must not
// mutate the returned slice.
func (l *WeightedList) Entries() []WeightedEntry[*Item] {
	return l.entries
}

// Len returns the member count
func (l *WeightedList) Len() int {
	return len(l.entries)
}

// Costs returns the tracked cost range
func (l *WeightedList) Costs() CostRange {
	return l.costs
}

// ListMap is the keyed container variant: a map of weighted lists that
// tracks the union of its values' ranges. Overwriting a key rescans
// the survivors, since the displaced list's costs may no longer be
// discoverable anywhere.
type ListMap struct {
	lists map[string]*WeightedList
	costs CostRange
}

// NewListMap creates an empty map with an empty cost range
func NewListMap() *ListMap {
	return &ListMap{
		lists: make(map[string]*WeightedList),
		costs: EmptyCostRange(),
	}
}

// Set stores a list under key
func (m *ListMap) Set(key string, l *WeightedList) {
	_, overwrite := m.lists[key]
	m.lists[key] = l
	if overwrite {
		m.rescan()
		return
	}
	m.costs = m.costs.Union(l.Costs())
}

// Get returns the list stored under key
func (m *ListMap) Get(key string) (*WeightedList, bool) {
	l, ok := m.lists[key]
	return l, ok
}

// Keys returns the stored keys in sorted order
func (m *ListMap) Keys() []string {
	keys := make([]string, 0, len(m.lists))
	for k := range m.lists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the key count
func (m *ListMap) Len() int {
	return len(m.lists)
}

// Costs returns the tracked cost range
func (m *ListMap) Costs() CostRange {
	return m.costs
}

func (m *ListMap) rescan() {
	costs := EmptyCostRange()
	for _, l := range m.lists {
		costs = costs.Union(l.Costs())
	}
	m.costs = costs
}
