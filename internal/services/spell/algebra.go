package spell

import (
	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// maxSpellLevel is the highest spell level any class table covers
const maxSpellLevel = 9

// resolvedClass is a class entry with its duplicate/merge declaration
// flattened into a concrete caster-level table
type resolvedClass struct {
	name   string
	typ    treasure.ClassType
	levels []*int
}

// resolveClasses flattens duplicate and merge declarations. Duplicates
// copy the referenced class's table; merges take the minimum defined
// caster level per spell level across the referenced classes.
// References must bottom out in literal tables; a cycle or a dangling
// name is a catalog defect.
func resolveClasses(entries []*treasure.ClassEntry) ([]*resolvedClass, error) {
	byName := make(map[string]*treasure.ClassEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	resolved := make(map[string][]*int, len(entries))
	var resolve func(name string, trail map[string]bool) ([]*int, error)
	resolve = func(name string, trail map[string]bool) ([]*int, error) {
		if levels, ok := resolved[name]; ok {
			return levels, nil
		}
		if trail[name] {
			return nil, rollerr.Invalidf("class %q is part of a duplicate/merge cycle", name)
		}
		entry, ok := byName[name]
		if !ok {
			return nil, rollerr.Invalidf("class reference %q does not exist", name)
		}
		trail[name] = true
		defer delete(trail, name)

		var levels []*int
		switch {
		case entry.Duplicate != "":
			src, err := resolve(entry.Duplicate, trail)
			if err != nil {
				return nil, err
			}
			levels = src
		case len(entry.Merge) > 0:
			merged := make([]*int, maxSpellLevel+1)
			for _, ref := range entry.Merge {
				src, err := resolve(ref, trail)
				if err != nil {
					return nil, err
				}
				for i, lvl := range src {
					if lvl == nil {
						continue
					}
					if merged[i] == nil || *lvl < *merged[i] {
						v := *lvl
						merged[i] = &v
					}
				}
			}
			levels = merged
		default:
			levels = entry.Levels
		}

		resolved[name] = levels
		return levels, nil
	}

	out := make([]*resolvedClass, 0, len(entries))
	for _, e := range entries {
		levels, err := resolve(e.Name, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		out = append(out, &resolvedClass{name: e.Name, typ: e.Type, levels: levels})
	}
	return out, nil
}

// casterLevelFor looks up the caster level a class needs for a spell
// level
func (c *resolvedClass) casterLevelFor(spellLevel int) (int, bool) {
	if spellLevel < 0 || spellLevel >= len(c.levels) || c.levels[spellLevel] == nil {
		return 0, false
	}
	return *c.levels[spellLevel], true
}

// deriveSpell computes the memoized per-spell derivations: the class
// with the lowest level for the spell, and the arcane/divine spellpage
// classes. Ties break by catalog order, which is why classes arrives
// as a slice.
func deriveSpell(s *treasure.Spell, classes []*resolvedClass) {
	s.Minimum = lowestFor(s, classes, nil)
	s.SpellpageArcane = spellpageFor(s, classes, "wizard", treasure.ClassArcane)
	s.SpellpageDivine = spellpageFor(s, classes, "cleric", treasure.ClassDivine)
}

// lowestFor finds the class with the lowest level for the spell among
// those the filter admits, breaking ties by catalog order
func lowestFor(s *treasure.Spell, classes []*resolvedClass, admit func(*resolvedClass) bool) string {
	best := ""
	bestLevel := 0
	for _, c := range classes {
		if admit != nil && !admit(c) {
			continue
		}
		lvl, ok := s.ClassLevels[c.name]
		if !ok {
			continue
		}
		if best == "" || lvl < bestLevel {
			best = c.name
			bestLevel = lvl
		}
	}
	return best
}

// spellpageFor prefers the canonical class when it can cast the spell
// and otherwise falls back to the lowest-level class of the tradition
func spellpageFor(s *treasure.Spell, classes []*resolvedClass, canonical string, typ treasure.ClassType) string {
	if _, ok := s.ClassLevels[canonical]; ok {
		for _, c := range classes {
			if c.name == canonical {
				return canonical
			}
		}
	}
	return lowestFor(s, classes, func(c *resolvedClass) bool {
		return c.typ == typ
	})
}
