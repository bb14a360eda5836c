package treasure

import (
	"encoding/json"
	"math"
)

// Cost is an item cost in gold pieces. Some catalog entries carry the
// literal string "varies" instead of a number; those costs are only
// known after assembly.
type Cost struct {
	Value  float64
	Varies bool
}

// UnmarshalJSON accepts either a number or the "varies" sentinel
func (c *Cost) UnmarshalJSON(data []byte) error {
	if string(data) == `"varies"` {
		*c = Cost{Varies: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Cost{Value: v}
	return nil
}

// MarshalJSON emits the sentinel for varying costs
func (c Cost) MarshalJSON() ([]byte, error) {
	if c.Varies {
		return json.Marshal("varies")
	}
	return json.Marshal(c.Value)
}

// CostRange is a closed [Min, Max] interval over the extended reals.
// The empty range is (+Inf, -Inf) and is the identity for Union.
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EmptyCostRange returns the empty interval
func EmptyCostRange() CostRange {
	return CostRange{Min: math.Inf(1), Max: math.Inf(-1)}
}

// FullCostRange returns the interval containing every cost
func FullCostRange() CostRange {
	return CostRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

// IsEmpty reports whether the range contains no costs
func (r CostRange) IsEmpty() bool {
	return r.Min > r.Max
}

// Add extends the range to include a single cost
func (r CostRange) Add(cost float64) CostRange {
	return r.Union(CostRange{Min: cost, Max: cost})
}

// Union returns the smallest range containing both operands
func (r CostRange) Union(o CostRange) CostRange {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return CostRange{
		Min: math.Min(r.Min, o.Min),
		Max: math.Max(r.Max, o.Max),
	}
}

// Contains reports whether cost lies within the range
func (r CostRange) Contains(cost float64) bool {
	return cost >= r.Min && cost <= r.Max
}

// Overlaps reports whether any cost in [lo, hi] lies within the range.
// The empty range overlaps nothing.
func (r CostRange) Overlaps(lo, hi float64) bool {
	if r.IsEmpty() {
		return false
	}
	return r.Min <= hi && r.Max >= lo
}
