package treasure

import (
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// ClassType is the magic tradition a casting class belongs to
type ClassType string

const (
	ClassArcane ClassType = "arcane"
	ClassDivine ClassType = "divine"
	ClassOccult ClassType = "occult"
)

// Valid reports whether the type is a known tradition
func (t ClassType) Valid() bool {
	return t == ClassArcane || t == ClassDivine || t == ClassOccult
}

// Derived pseudo-class names, queryable like real classes
const (
	ClassMinimum         = "minimum"
	ClassSpellpageArcane = "spellpage_arcane"
	ClassSpellpageDivine = "spellpage_divine"
)

// SyntheticClasses lists the derived pseudo-class names
var SyntheticClasses = []string{ClassMinimum, ClassSpellpageArcane, ClassSpellpageDivine}

// ClassEntry describes one spellcasting class in the class catalog.
// Levels holds the caster level required for each spell level 0..9;
// nil means the class cannot cast that spell level.
type ClassEntry struct {
	Name   string    `json:"name"`
	Type   ClassType `json:"type"`
	Levels []*int    `json:"levels,omitempty"`

	// Duplicate copies another class's level table; Merge takes the
	// minimum defined level across the referenced classes. The two are
	// mutually exclusive, and both exclude a literal Levels table.
	Duplicate string   `json:"duplicate,omitempty"`
	Merge     []string `json:"merge,omitempty"`
}

// Validate checks structural invariants: exclusivity of the level
// sources and monotonic, hole-free level tables.
func (c *ClassEntry) Validate() error {
	if c.Name == "" {
		return rollerr.Invalid("class name is required")
	}
	if !c.Type.Valid() {
		return rollerr.Invalidf("class %q has unknown type %q", c.Name, c.Type)
	}

	sources := 0
	if c.Levels != nil {
		sources++
	}
	if c.Duplicate != "" {
		sources++
	}
	if len(c.Merge) > 0 {
		sources++
	}
	if sources != 1 {
		return rollerr.Invalidf("class %q must declare exactly one of levels, duplicate, merge", c.Name)
	}

	if c.Levels != nil {
		if len(c.Levels) > 10 {
			return rollerr.Invalidf("class %q declares %d spell levels, max is 10", c.Name, len(c.Levels))
		}
		prev := 0
		seenHole := false
		for i, lvl := range c.Levels {
			if lvl == nil {
				if i > 0 && c.Levels[i-1] != nil {
					seenHole = true
				}
				continue
			}
			if seenHole {
				return rollerr.Invalidf("class %q has a hole in its level table at spell level %d", c.Name, i)
			}
			if *lvl < prev {
				return rollerr.Invalidf("class %q level table decreases at spell level %d", c.Name, i)
			}
			prev = *lvl
		}
	}

	return nil
}

// Spell is one entry in the spell catalog. ClassLevels maps class name
// to the spell's level for that class. The derived fields are computed
// once by the class algebra at load time and memoized here.
type Spell struct {
	Name        string         `json:"name"`
	ClassLevels map[string]int `json:"classes"`
	Domains     []string       `json:"domains,omitempty"`
	Tags        []string       `json:"tags,omitempty"`

	// Derived, populated at load
	Minimum         string `json:"-"`
	SpellpageArcane string `json:"-"`
	SpellpageDivine string `json:"-"`
}

// LevelFor returns the spell's level for a class, resolving the
// synthetic class names through the memoized derivations
func (s *Spell) LevelFor(class string) (int, bool) {
	switch class {
	case ClassMinimum:
		class = s.Minimum
	case ClassSpellpageArcane:
		class = s.SpellpageArcane
	case ClassSpellpageDivine:
		class = s.SpellpageDivine
	}
	if class == "" {
		return 0, false
	}
	lvl, ok := s.ClassLevels[class]
	return lvl, ok
}
