package treasure

import (
	"strings"

	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// TagDouble marks base items whose masterwork and per-bonus unit costs
// are doubled (double weapons, for example)
const TagDouble = "double"

// BaseItem is an ordnance base: a mundane armor or weapon shape that
// enchantments stack onto.
type BaseItem struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Tags []string `json:"tags,omitempty"`
	Cost Cost     `json:"cost"`
}

// HasTag reports whether tag names the item's type or appears in its
// tag set. Matching is case-insensitive.
func (b *BaseItem) HasTag(tag string) bool {
	if strings.EqualFold(tag, b.Type) {
		return true
	}
	for _, t := range b.Tags {
		if strings.EqualFold(tag, t) {
			return true
		}
	}
	return false
}

// Double reports whether the item carries the "double" cost tag
func (b *BaseItem) Double() bool {
	return b.HasTag(TagDouble)
}

// Pattern describes one drawn enchantment layout: either a flat bonus
// with per-slot enchantment targets, or a specific-item path that
// bypasses assembly entirely.
type Pattern struct {
	Bonus    int      `json:"bonus,omitempty"`
	Enchants []int    `json:"enchants,omitempty"`
	Specific []string `json:"specific,omitempty"`
}

// Validate enforces the specific-vs-generic exclusivity
func (p *Pattern) Validate() error {
	if len(p.Specific) > 0 {
		if p.Bonus != 0 || len(p.Enchants) > 0 {
			return rollerr.Invalid("pattern cannot combine specific with bonus or enchants")
		}
		if len(p.Specific) < 2 || len(p.Specific) > 3 {
			return rollerr.Invalidf("specific path must have 2 or 3 elements, got %d", len(p.Specific))
		}
		return nil
	}
	if p.Bonus < 1 {
		return rollerr.Invalidf("pattern bonus must be at least 1, got %d", p.Bonus)
	}
	for _, e := range p.Enchants {
		if e < 1 {
			return rollerr.Invalidf("enchant slot target must be at least 1, got %d", e)
		}
	}
	return nil
}

// IsSpecific reports whether the pattern names a pre-defined item
func (p *Pattern) IsSpecific() bool {
	return len(p.Specific) > 0
}

// TagLimit restricts which base items an enchantment may land on
type TagLimit struct {
	Only []string `json:"only,omitempty"`
	Not  []string `json:"not,omitempty"`
}

// Enchant is a single stackable enchantment
type Enchant struct {
	Name string `json:"name"`

	// Bonus and BonusCost are mutually exclusive: an enchantment
	// either consumes bonus slots or charges a flat surcharge
	Bonus     int     `json:"bonus,omitempty"`
	BonusCost float64 `json:"bonuscost,omitempty"`

	// Exclude lists enchantment names this one cannot stack with
	Exclude []string `json:"exclude,omitempty"`

	// Add and Remove mutate the base item's working tag set for
	// subsequent draws
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`

	Limit *TagLimit `json:"limit,omitempty"`
}

// Validate enforces the bonus-vs-bonuscost exclusivity
func (e *Enchant) Validate() error {
	if e.Name == "" {
		return rollerr.Invalid("enchant name is required")
	}
	if e.Bonus != 0 && e.BonusCost != 0 {
		return rollerr.Invalidf("enchant %q cannot declare both bonus and bonuscost", e.Name)
	}
	return nil
}

// Allowed reports whether the enchantment may land on an item with the
// given working tag set
func (e *Enchant) Allowed(tags []string) bool {
	if e.Limit == nil {
		return true
	}
	if len(e.Limit.Only) > 0 {
		hit := false
		for _, want := range e.Limit.Only {
			if containsFold(tags, want) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, deny := range e.Limit.Not {
		if containsFold(tags, deny) {
			return false
		}
	}
	return true
}

// ConflictsWith reports whether the enchantment cannot stack with an
// already-selected set. Exclusion is bidirectional: either side naming
// the other blocks the pairing, as does a duplicate name.
func (e *Enchant) ConflictsWith(selected []*Enchant) bool {
	for _, s := range selected {
		if strings.EqualFold(s.Name, e.Name) {
			return true
		}
		if containsFold(e.Exclude, s.Name) {
			return true
		}
		if containsFold(s.Exclude, e.Name) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
