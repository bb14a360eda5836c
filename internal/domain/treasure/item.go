package treasure

// Rank is the coarse item power tier
type Rank string

const (
	RankMinor  Rank = "minor"
	RankMedium Rank = "medium"
	RankMajor  Rank = "major"
)

// Ranks lists every valid rank in catalog order
var Ranks = []Rank{RankMinor, RankMedium, RankMajor}

// Valid reports whether the rank is one of the known tiers
func (r Rank) Valid() bool {
	return r == RankMinor || r == RankMedium || r == RankMajor
}

// Subrank is the fine-grained tier within a rank
type Subrank string

const (
	SubrankLeast   Subrank = "least"
	SubrankLesser  Subrank = "lesser"
	SubrankGreater Subrank = "greater"
)

// Subranks lists the subranks available to every table. Least is only
// valid for top-level slotless wondrous entries and is handled by the
// orchestrator, not listed here.
var Subranks = []Subrank{SubrankLesser, SubrankGreater}

// Valid reports whether the subrank is one of the known tiers
func (s Subrank) Valid() bool {
	return s == SubrankLeast || s == SubrankLesser || s == SubrankGreater
}

// SpellRef constrains the spell attached to a compound item
type SpellRef struct {
	// Level pins the spell level when set
	Level *int `json:"level,omitempty"`

	// Class names the casting class, or "minimum", "spellpage_arcane",
	// "spellpage_divine" for the derived classes
	Class string `json:"cls,omitempty"`
}

// Item is a single catalog entry. Exactly one table owns each item;
// orchestration copies items out rather than sharing pointers.
type Item struct {
	Name      string     `json:"name"`
	Cost      Cost       `json:"cost"`
	CostRange *CostRange `json:"costrange,omitempty"`

	// CostMult scales an attached spell's cost contribution
	CostMult float64 `json:"costmult,omitempty"`

	// Reroll redirects resolution to another catalog path instead of
	// yielding this item directly
	Reroll []string `json:"reroll,omitempty"`

	// Weight is the carrying weight in pounds, when the source lists one
	Weight *float64 `json:"weight,omitempty"`

	Spell *SpellRef `json:"spell,omitempty"`
}

// Range reports the cost interval discoverable from the item itself:
// the explicit cost range when present, the point cost otherwise, and
// the empty range when the cost varies with no declared range.
func (it *Item) Range() CostRange {
	if it.CostRange != nil {
		return *it.CostRange
	}
	if it.Cost.Varies {
		return EmptyCostRange()
	}
	return CostRange{Min: it.Cost.Value, Max: it.Cost.Value}
}

// FilterRange is the interval used for cost filtering. An unknown cost
// cannot be ruled out, so it passes every bound.
func (it *Item) FilterRange() CostRange {
	r := it.Range()
	if r.IsEmpty() {
		return FullCostRange()
	}
	return r
}
