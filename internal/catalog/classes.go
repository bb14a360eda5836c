package catalog

import (
	"context"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// ClassTable holds the spellcasting class catalog in source order.
// Iteration order matters: the class algebra breaks level ties by it.
type ClassTable struct {
	gate    *Gate
	ordered []*treasure.ClassEntry
	byName  map[string]*treasure.ClassEntry
}

// NewClassTable creates an empty, not yet ready table
func NewClassTable() *ClassTable {
	return &ClassTable{
		gate:   NewGate("classes"),
		byName: make(map[string]*treasure.ClassEntry),
	}
}

// Gate exposes the readiness gate to the loader
func (t *ClassTable) Gate() *Gate {
	return t.gate
}

// Add appends a class entry. Loader-only.
func (t *ClassTable) Add(entry *treasure.ClassEntry) error {
	if _, exists := t.byName[entry.Name]; exists {
		return rollerr.Invalidf("duplicate class %q", entry.Name)
	}
	t.ordered = append(t.ordered, entry)
	t.byName[entry.Name] = entry
	return nil
}

// Entries returns the classes in source order
func (t *ClassTable) Entries(ctx context.Context) ([]*treasure.ClassEntry, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}
	return t.ordered, nil
}

// Get resolves one class by name
func (t *ClassTable) Get(ctx context.Context, name string) (*treasure.ClassEntry, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}
	entry, ok := t.byName[name]
	if !ok {
		return nil, rollerr.NoMatchf("unknown class %q", name)
	}
	return entry, nil
}

// Known reports whether name is a real class or one of the synthetic
// aggregate names
func (t *ClassTable) Known(ctx context.Context, name string) (bool, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return false, err
	}
	if _, ok := t.byName[name]; ok {
		return true, nil
	}
	for _, s := range treasure.SyntheticClasses {
		if name == s {
			return true, nil
		}
	}
	return false, nil
}

// Names returns the real class names in source order followed by the
// synthetic aggregate names
func (t *ClassTable) Names(ctx context.Context) ([]string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(t.ordered)+len(treasure.SyntheticClasses))
	for _, entry := range t.ordered {
		names = append(names, entry.Name)
	}
	names = append(names, treasure.SyntheticClasses...)
	return names, nil
}
