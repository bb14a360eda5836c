package roll

import (
	"context"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
)

// rollState carries the shared attempt counter through one request's
// resolution. Reroll hops, cost-bound retries, and random rank or
// category iterations all draw from the same ceiling, so even a
// reroll cycle terminates.
type rollState struct {
	attempts int
}

// consume spends one attempt
func (st *rollState) consume() error {
	st.attempts++
	if st.attempts > maxAttempts {
		return rollerr.Limitedf("request exceeded %d resolution attempts", maxAttempts)
	}
	return nil
}

// resolve runs the full resolution loop: the decision table, then the
// post-resolution reroll and cost-bound checks, iterating rather than
// self-recursing so the call stack stays flat.
func (s *service) resolve(ctx context.Context, req treasure.RollRequest, st *rollState) (*treasure.RolledItem, error) {
	for {
		if err := st.consume(); err != nil {
			return nil, err
		}

		rolled, reroll, err := s.resolveOnce(ctx, req, st)
		if err != nil {
			return nil, err
		}
		if len(reroll) > 0 {
			req = rerollRequest(req, reroll)
			continue
		}
		if req.Bounded() && !req.InBounds(rolled.Cost) {
			continue
		}
		return rolled, nil
	}
}

// resolveOnce is the ordered decision table. It returns either a
// concrete item or a reroll path to resolve instead.
func (s *service) resolveOnce(ctx context.Context, req treasure.RollRequest, st *rollState) (*treasure.RolledItem, []string, error) {
	reg := s.registry()
	cat := req.Category

	// 1. slotless least wondrous: the only least-tier table
	if cat == catalog.CategoryWondrous && req.Slot == catalog.SlotSlotless && req.Subrank == treasure.SubrankLeast {
		item, err := reg.Wondrous.Random(ctx, s.src, catalog.SlotSlotless, req.Rank, treasure.SubrankLeast, req.MinCost, req.MaxCost)
		if err != nil {
			return nil, nil, err
		}
		return s.finalizeItem(ctx, item, req)
	}

	// 2. least anywhere else is structurally invalid
	if req.Subrank == treasure.SubrankLeast {
		return nil, nil, rollerr.Invalidf("subrank least is only valid for slotless wondrous items")
	}

	// 3. explicit slot, given as wondrous or bare
	if req.Slot != "" && (cat == catalog.CategoryWondrous || cat == "") {
		known, err := reg.Wondrous.HasSlot(ctx, req.Slot)
		if err != nil {
			return nil, nil, err
		}
		if known {
			item, err := reg.Wondrous.Random(ctx, s.src, req.Slot, req.Rank, req.Subrank, req.MinCost, req.MaxCost)
			if err != nil {
				return nil, nil, err
			}
			return s.finalizeItem(ctx, item, req)
		}
	}

	// 4. wondrous without a slot: pick one, then resolve as branch 3
	if cat == catalog.CategoryWondrous && req.Slot == "" {
		slot, err := reg.Wondrous.RandomSlot(ctx, s.src)
		if err != nil {
			return nil, nil, err
		}
		sub := req
		sub.Slot = slot
		item, err := s.resolve(ctx, sub, st)
		return item, nil, err
	}

	if table, ok := reg.Ordnance(cat); ok {
		// 5. ordnance with no base named: pattern decides everything
		if req.Base == "" {
			pattern, err := table.RandomPattern(ctx, s.src, req.Rank, req.Subrank, true)
			if err != nil {
				return nil, nil, err
			}
			if pattern.IsSpecific() {
				item, err := table.RandomSpecific(ctx, s.src, pattern.Specific, req.MinCost, req.MaxCost)
				if err != nil {
					return nil, nil, err
				}
				return s.finalizeItem(ctx, item, req)
			}
			base, err := table.RandomBase(ctx, s.src, nil)
			if err != nil {
				return nil, nil, err
			}
			rolled, err := s.assemble(ctx, table, base, pattern)
			return rolled, nil, err
		}

		// 6. ordnance on a named base: resolve it, then assemble
		base, err := table.GetBase(ctx, req.Base)
		if err != nil {
			return nil, nil, err
		}
		pattern, err := table.RandomPattern(ctx, s.src, req.Rank, req.Subrank, false)
		if err != nil {
			return nil, nil, err
		}
		rolled, err := s.assemble(ctx, table, base, pattern)
		return rolled, nil, err
	}

	if table, ok := reg.Compound[cat]; ok {
		// 7. compound requiring a class: validate against the known
		// classes plus the aggregate names before drawing
		if table.ClassRequired() {
			class := req.Class
			if class == "" {
				class = treasure.ClassMinimum
			}
			known, err := reg.Classes.Known(ctx, class)
			if err != nil {
				return nil, nil, err
			}
			if !known {
				return nil, nil, rollerr.Invalidf("unknown class %q", req.Class)
			}
			sub := req
			sub.Class = class
			item, err := table.Random(ctx, s.src, req.Rank, req.MinCost, req.MaxCost)
			if err != nil {
				return nil, nil, err
			}
			return s.finalizeItem(ctx, item, sub)
		}

		// 8. compound without class requirements: draw by rank
		item, err := table.Random(ctx, s.src, req.Rank, req.MinCost, req.MaxCost)
		if err != nil {
			return nil, nil, err
		}
		return s.finalizeItem(ctx, item, req)
	}

	// 9. plain ranked category
	if table, ok := reg.Ranked[cat]; ok {
		item, err := table.Random(ctx, s.src, req.Rank, req.Subrank, req.MinCost, req.MaxCost)
		if err != nil {
			return nil, nil, err
		}
		return s.finalizeItem(ctx, item, req)
	}

	// 10. a base item without a category to interpret it
	if req.Base != "" && cat == "" {
		return nil, nil, rollerr.Invalid("base item requires an armor or weapon category")
	}

	// 11. nothing specified: random rank, then resolve as branch 13,
	// discarding draws the rank cannot satisfy
	if cat == "" && req.Rank == "" {
		for {
			if err := st.consume(); err != nil {
				return nil, nil, err
			}
			rank, err := random.Uniform(s.src, treasure.Ranks)
			if err != nil {
				return nil, nil, err
			}
			sub := req
			sub.Rank = rank
			rolled, err := s.resolve(ctx, sub, st)
			if rollerr.IsNoMatch(err) {
				continue
			}
			return rolled, nil, err
		}
	}

	// 12. a category that matched no table, with no rank to guide a
	// category draw
	if cat != "" && req.Rank == "" {
		return nil, nil, rollerr.Invalidf("unknown category %q (and no rank specified)", cat)
	}

	// 13. rank without category: draw categories for the rank until
	// one resolves
	if cat == "" && req.Rank != "" {
		for {
			if err := st.consume(); err != nil {
				return nil, nil, err
			}
			picked, err := reg.Category.Random(ctx, s.src, req.Rank)
			if err != nil {
				return nil, nil, err
			}
			sub := req
			sub.Category = picked
			rolled, err := s.resolve(ctx, sub, st)
			if rollerr.IsNoMatch(err) {
				continue
			}
			return rolled, nil, err
		}
	}

	// 14. anything else is malformed
	return nil, nil, rollerr.Invalidf("cannot resolve request for category %q", cat)
}

// finalizeItem turns a drawn catalog item into a concrete result,
// surfacing its reroll path instead when it has one and attaching a
// spell when the item calls for it
func (s *service) finalizeItem(ctx context.Context, item *treasure.Item, req treasure.RollRequest) (*treasure.RolledItem, []string, error) {
	if len(item.Reroll) > 0 {
		return nil, item.Reroll, nil
	}

	rolled := &treasure.RolledItem{
		Name: item.Name,
		Cost: item.Cost.Value,
	}

	if item.Spell != nil {
		if s.spells == nil {
			return nil, nil, rollerr.Failedf("item %q needs a spell but no spell service is wired", item.Name)
		}
		class := item.Spell.Class
		if class == "" {
			class = req.Class
		}
		if class == "" {
			class = treasure.ClassMinimum
		}
		res, err := s.spells.Random(ctx, class, item.Spell.Level, nil)
		if err != nil {
			return nil, nil, err
		}
		rolled.Spell = res.Spell
		rolled.Name = item.Name + " of " + res.Spell.Name

		if item.Cost.Varies {
			// level 0 spells price as half a level
			level := float64(res.Level)
			if res.Level == 0 {
				level = 0.5
			}
			mult := item.CostMult
			if mult == 0 {
				mult = 1
			}
			rolled.Cost = mult * level * float64(res.CasterLevel)
		}
	} else if item.Cost.Varies {
		return nil, nil, rollerr.Failedf("item %q has a varying cost but nothing to derive it from", item.Name)
	}

	return rolled, nil, nil
}

// rerollRequest maps a reroll path onto a fresh request, carrying the
// original rank, subrank, class, and cost bounds forward. The path's
// first element is the target category; a second element names a
// wondrous slot or overrides the rank; a third overrides the subrank.
func rerollRequest(base treasure.RollRequest, path []string) treasure.RollRequest {
	req := treasure.RollRequest{
		Category: path[0],
		Rank:     base.Rank,
		Subrank:  base.Subrank,
		Class:    base.Class,
		MinCost:  base.MinCost,
		MaxCost:  base.MaxCost,
	}
	if len(path) > 1 {
		if req.Category == catalog.CategoryWondrous {
			req.Slot = path[1]
		} else if treasure.Rank(path[1]).Valid() {
			req.Rank = treasure.Rank(path[1])
		}
	}
	if len(path) > 2 && treasure.Subrank(path[2]).Valid() {
		req.Subrank = treasure.Subrank(path[2])
	}
	return req
}
