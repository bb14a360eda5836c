package treasure

// RollRequest is a partially specified treasure roll. Unset fields are
// filled by the orchestrator's decision table.
type RollRequest struct {
	Category string  `json:"category,omitempty"`
	Rank     Rank    `json:"rank,omitempty"`
	Subrank  Subrank `json:"subrank,omitempty"`

	// Slot targets a wondrous body slot ("belt", "slotless", ...)
	Slot string `json:"slot,omitempty"`

	// Class constrains compound items to a casting class
	Class string `json:"class,omitempty"`

	// Base names an ordnance base item to build on
	Base string `json:"base,omitempty"`

	// MinCost and MaxCost bound the final item cost when set
	MinCost *float64 `json:"min_cost,omitempty"`
	MaxCost *float64 `json:"max_cost,omitempty"`
}

// InBounds reports whether cost satisfies the request's bounds
func (r *RollRequest) InBounds(cost float64) bool {
	if r.MinCost != nil && cost < *r.MinCost {
		return false
	}
	if r.MaxCost != nil && cost > *r.MaxCost {
		return false
	}
	return true
}

// Bounded reports whether the request carries any cost bound
func (r *RollRequest) Bounded() bool {
	return r.MinCost != nil || r.MaxCost != nil
}

// RolledItem is a fully resolved item, structured enough for an
// external renderer: the raw composite name, the final cost, and the
// attached spell when the item carries one.
type RolledItem struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
	Spell *Spell `json:"spell,omitempty"`
}
