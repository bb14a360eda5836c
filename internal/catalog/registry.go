package catalog

import (
	"sort"
	"sync/atomic"
)

// Ordnance category names. The two ordnance tables are fixed; ranked
// and compound categories come from the data directory.
const (
	CategoryArmor    = "armor"
	CategoryWeapon   = "weapon"
	CategoryWondrous = "wondrous"
)

// Registry holds every catalog table for one load. It is constructed
// once at startup and passed by handle to consumers; tables are
// immutable once their gates open.
type Registry struct {
	Category *CategoryTable
	Ranked   map[string]*RankedTable
	Compound map[string]*CompoundTable
	Armor    *OrdnanceTable
	Weapon   *OrdnanceTable
	Wondrous *WondrousTable
	Classes  *ClassTable

	// SpellFile is the path of the spell source consumed by the spell
	// service, recorded here so index staleness checks share one view
	// of the data directory
	SpellFile string
}

// Ordnance returns the ordnance table for a category name
func (r *Registry) Ordnance(category string) (*OrdnanceTable, bool) {
	switch category {
	case CategoryArmor:
		return r.Armor, true
	case CategoryWeapon:
		return r.Weapon, true
	}
	return nil, false
}

// Categories returns every rollable category name, sorted
func (r *Registry) Categories() []string {
	names := []string{CategoryArmor, CategoryWeapon, CategoryWondrous}
	for name := range r.Ranked {
		names = append(names, name)
	}
	for name := range r.Compound {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle is an atomically swappable reference to a registry. Hot
// reload builds a fresh registry and swaps it in; concurrent readers
// never observe in-place mutation.
type Handle struct {
	current atomic.Pointer[Registry]
}

// NewHandle creates a handle pointing at reg
func NewHandle(reg *Registry) *Handle {
	h := &Handle{}
	h.current.Store(reg)
	return h
}

// Get returns the current registry
func (h *Handle) Get() *Registry {
	return h.current.Load()
}

// Swap atomically replaces the registry
func (h *Handle) Swap(reg *Registry) {
	h.current.Store(reg)
}
