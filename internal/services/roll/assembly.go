package roll

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// maxAssemblyAttempts bounds how often one assembly restarts after an
// unfillable enchantment slot
const maxAssemblyAttempts = 6

// assemble builds a composite ordnance item from a base and a drawn
// pattern. Any slot that cannot be filled fails the whole attempt and
// the assembly restarts from scratch, up to the attempt ceiling.
func (s *service) assemble(ctx context.Context, table *catalog.OrdnanceTable, base *treasure.BaseItem, pattern *treasure.Pattern) (*treasure.RolledItem, error) {
	for attempt := 0; attempt < maxAssemblyAttempts; attempt++ {
		rolled, err := s.assembleOnce(ctx, table, base, pattern)
		if err == nil {
			return rolled, nil
		}
		if rollerr.IsNoMatch(err) || rollerr.IsNotReady(err) {
			continue
		}
		return nil, err
	}
	return nil, rollerr.Limitedf("could not assemble %q in %d attempts", base.Name, maxAssemblyAttempts)
}

func (s *service) assembleOnce(ctx context.Context, table *catalog.OrdnanceTable, base *treasure.BaseItem, pattern *treasure.Pattern) (*treasure.RolledItem, error) {
	masterwork, unit := table.BonusCosts(base)

	group, err := table.EnchantGroup(ctx, base)
	if err != nil {
		return nil, err
	}

	// The working tag set starts as the base item's and evolves as
	// drawn enchantments add and remove tags for later slots.
	tags := make([]string, 0, len(base.Tags)+1)
	tags = append(tags, base.Type)
	tags = append(tags, base.Tags...)

	// Bonus contributions sum across all enchantments and are squared
	// once at the end; flat surcharges accumulate separately.
	totalBonus := pattern.Bonus
	var surcharge float64
	var selected []*treasure.Enchant

	for _, slotTarget := range pattern.Enchants {
		enchant, err := table.RandomEnchant(ctx, s.src, group, slotTarget, selected, tags)
		if err != nil {
			return nil, err
		}
		selected = append(selected, enchant)

		switch {
		case enchant.Bonus > 0:
			totalBonus += enchant.Bonus
		case enchant.BonusCost > 0:
			surcharge += enchant.BonusCost
		default:
			totalBonus += slotTarget
		}

		tags = applyTagDelta(tags, enchant.Add, enchant.Remove)
	}

	cost := base.Cost.Value + masterwork +
		float64(totalBonus*totalBonus)*unit + surcharge

	return &treasure.RolledItem{
		Name: compositeName(pattern.Bonus, selected, base.Name),
		Cost: cost,
	}, nil
}

// compositeName renders "+<bonus> <enchant names...> <base name>"
func compositeName(bonus int, enchants []*treasure.Enchant, baseName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "+%d", bonus)
	for _, e := range enchants {
		b.WriteByte(' ')
		b.WriteString(e.Name)
	}
	b.WriteByte(' ')
	b.WriteString(baseName)
	return b.String()
}

// applyTagDelta removes then adds tags, keeping the set free of
// duplicates
func applyTagDelta(tags, add, remove []string) []string {
	out := make([]string, 0, len(tags)+len(add))
	for _, t := range tags {
		if !containsFold(remove, t) {
			out = append(out, t)
		}
	}
	for _, t := range add {
		if !containsFold(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
