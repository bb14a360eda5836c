package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
)

// OrdnanceTable is an armor or weapon catalog: weighted base items,
// stacked enchantments grouped by slot bonus, enchantment-layout
// patterns per rank/subrank, and specific-item tables that bypass
// assembly.
type OrdnanceTable struct {
	name string
	gate *Gate

	bases     []treasure.WeightedEntry[*treasure.BaseItem]
	baseIndex map[string]*treasure.BaseItem

	// enchants: group ("armor", "shield", "melee", ...) -> slot bonus
	enchants map[string]map[int][]treasure.WeightedEntry[*treasure.Enchant]

	patterns map[treasure.Rank]map[treasure.Subrank][]treasure.WeightedEntry[*treasure.Pattern]

	// specific: group -> rank/subrank item tables
	specific map[string]*rankMap

	masterwork float64
	unitCost   float64
}

// NewOrdnanceTable creates an empty, not yet ready table
func NewOrdnanceTable(name string, masterwork, unitCost float64) *OrdnanceTable {
	return &OrdnanceTable{
		name:       name,
		gate:       NewGate(name),
		baseIndex:  make(map[string]*treasure.BaseItem),
		enchants:   make(map[string]map[int][]treasure.WeightedEntry[*treasure.Enchant]),
		patterns:   make(map[treasure.Rank]map[treasure.Subrank][]treasure.WeightedEntry[*treasure.Pattern]),
		specific:   make(map[string]*rankMap),
		masterwork: masterwork,
		unitCost:   unitCost,
	}
}

// Name returns the catalog key
func (t *OrdnanceTable) Name() string {
	return t.name
}

// Gate exposes the readiness gate to the loader
func (t *OrdnanceTable) Gate() *Gate {
	return t.gate
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddBase registers a base item. Loader-only.
func (t *OrdnanceTable) AddBase(weight int, b *treasure.BaseItem) {
	t.bases = append(t.bases, treasure.WeightedEntry[*treasure.BaseItem]{Weight: weight, Value: b})
	t.baseIndex[normalizeName(b.Name)] = b
}

// AddEnchant registers an enchantment under a group and slot bonus.
// Loader-only.
func (t *OrdnanceTable) AddEnchant(group string, bonus, weight int, e *treasure.Enchant) {
	byBonus, ok := t.enchants[group]
	if !ok {
		byBonus = make(map[int][]treasure.WeightedEntry[*treasure.Enchant])
		t.enchants[group] = byBonus
	}
	byBonus[bonus] = append(byBonus[bonus], treasure.WeightedEntry[*treasure.Enchant]{Weight: weight, Value: e})
}

// AddPattern registers an enchantment layout for a rank/subrank cell.
// Loader-only.
func (t *OrdnanceTable) AddPattern(rank treasure.Rank, subrank treasure.Subrank, weight int, p *treasure.Pattern) {
	bySubrank, ok := t.patterns[rank]
	if !ok {
		bySubrank = make(map[treasure.Subrank][]treasure.WeightedEntry[*treasure.Pattern])
		t.patterns[rank] = bySubrank
	}
	bySubrank[subrank] = append(bySubrank[subrank], treasure.WeightedEntry[*treasure.Pattern]{Weight: weight, Value: p})
}

// SetSpecific installs a specific-item list for a group/rank/subrank
// cell. Loader-only.
func (t *OrdnanceTable) SetSpecific(group string, rank treasure.Rank, subrank treasure.Subrank, list *treasure.WeightedList) {
	m, ok := t.specific[group]
	if !ok {
		m = newRankMap()
		t.specific[group] = m
	}
	m.set(rank, subrank, list)
}

// RandomBase draws a base item. Every requested tag must match the
// item's type or appear in its tag set.
func (t *OrdnanceTable) RandomBase(ctx context.Context, src random.Source, tags []string) (*treasure.BaseItem, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	return random.FilteredChoice(src, t.bases, func(b *treasure.BaseItem) bool {
		for _, tag := range tags {
			if !b.HasTag(tag) {
				return false
			}
		}
		return true
	})
}

// GetBase resolves a base item by normalized exact name. On a miss it
// returns NoMatch carrying ranked did-you-mean suggestions in the
// error metadata under "suggestions".
func (t *OrdnanceTable) GetBase(ctx context.Context, name string) (*treasure.BaseItem, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	norm := normalizeName(name)
	if b, ok := t.baseIndex[norm]; ok {
		return b, nil
	}

	names := make([]string, 0, len(t.baseIndex))
	for _, e := range t.bases {
		names = append(names, e.Value.Name)
	}
	err := rollerr.NoMatchf("no base item named %q", name)
	if s := suggestNames(names, norm); len(s) > 0 {
		err = err.WithMeta("suggestions", s)
	}
	return nil, err
}

// RandomEnchant draws an enchantment from a group's slot-bonus list,
// excluding conflicts with the already-selected set and respecting
// each candidate's tag limits against the item's working tags.
func (t *OrdnanceTable) RandomEnchant(ctx context.Context, src random.Source, group string, bonus int, selected []*treasure.Enchant, tags []string) (*treasure.Enchant, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	byBonus, ok := t.enchants[group]
	if !ok {
		return nil, rollerr.NoMatchf("no %s enchantments for group %q", t.name, group)
	}
	entries, ok := byBonus[bonus]
	if !ok {
		return nil, rollerr.NoMatchf("no +%d %s enchantments in group %q", bonus, t.name, group)
	}

	return random.FilteredChoice(src, entries, func(e *treasure.Enchant) bool {
		return !e.ConflictsWith(selected) && e.Allowed(tags)
	})
}

// RandomPattern draws an enchantment layout for the rank/subrank.
// Specific-item patterns are filtered out when not allowed.
func (t *OrdnanceTable) RandomPattern(ctx context.Context, src random.Source, rank treasure.Rank, subrank treasure.Subrank, allowSpecific bool) (*treasure.Pattern, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	if rank == "" {
		keys := make([]treasure.Rank, 0, len(t.patterns))
		for _, r := range treasure.Ranks {
			if _, ok := t.patterns[r]; ok {
				keys = append(keys, r)
			}
		}
		picked, err := random.Uniform(src, keys)
		if err != nil {
			return nil, rollerr.NoMatchf("%s table has no patterns", t.name)
		}
		rank = picked
	}

	bySubrank, ok := t.patterns[rank]
	if !ok {
		return nil, rollerr.NoMatchf("no %s %s patterns", rank, t.name)
	}

	if subrank == "" {
		keys := make([]treasure.Subrank, 0, len(bySubrank))
		for _, s := range treasure.Subranks {
			if _, ok := bySubrank[s]; ok {
				keys = append(keys, s)
			}
		}
		picked, err := random.Uniform(src, keys)
		if err != nil {
			return nil, rollerr.NoMatchf("no %s %s patterns", rank, t.name)
		}
		subrank = picked
	}

	entries, ok := bySubrank[subrank]
	if !ok {
		return nil, rollerr.NoMatchf("no %s %s %s patterns", subrank, rank, t.name)
	}

	return random.FilteredChoice(src, entries, func(p *treasure.Pattern) bool {
		return allowSpecific || !p.IsSpecific()
	})
}

// RandomSpecific resolves a pattern's specific path: the group name
// followed by a rank and an optional subrank.
func (t *OrdnanceTable) RandomSpecific(ctx context.Context, src random.Source, path []string, lo, hi *float64) (*treasure.Item, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	if len(path) < 2 || len(path) > 3 {
		return nil, rollerr.Invalidf("specific path must have 2 or 3 elements, got %d", len(path))
	}
	m, ok := t.specific[path[0]]
	if !ok {
		return nil, rollerr.Failedf("pattern names unknown specific group %q", path[0])
	}
	rank := treasure.Rank(path[1])
	if !rank.Valid() {
		return nil, rollerr.Failedf("specific path has unknown rank %q", path[1])
	}
	var subrank treasure.Subrank
	if len(path) == 3 {
		subrank = treasure.Subrank(path[2])
		if !subrank.Valid() {
			return nil, rollerr.Failedf("specific path has unknown subrank %q", path[2])
		}
	}

	l, h := boundsOrFull(lo, hi)
	return m.random(src, rank, subrank, l, h)
}

// EnchantGroup resolves which enchantment group a base item draws
// from, matching the item's type and then its tags against the group
// names
func (t *OrdnanceTable) EnchantGroup(ctx context.Context, b *treasure.BaseItem) (string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return "", err
	}

	groups := make([]string, 0, len(t.enchants))
	for group := range t.enchants {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	for _, group := range groups {
		if strings.EqualFold(group, b.Type) {
			return group, nil
		}
	}
	for _, group := range groups {
		if b.HasTag(group) {
			return group, nil
		}
	}
	return "", rollerr.Failedf("base item %q matches no enchantment group", b.Name)
}

// BonusCosts returns the masterwork surcharge and per-bonus unit cost
// for a base item, doubling both for "double"-tagged items
func (t *OrdnanceTable) BonusCosts(b *treasure.BaseItem) (masterwork, unit float64) {
	masterwork, unit = t.masterwork, t.unitCost
	if b.Double() {
		masterwork *= 2
		unit *= 2
	}
	return masterwork, unit
}

// Tags returns every distinct base-item tag, including the item
// types, sorted
func (t *OrdnanceTable) Tags(ctx context.Context) ([]string, error) {
	if err := t.gate.Wait(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, e := range t.bases {
		seen[strings.ToLower(e.Value.Type)] = struct{}{}
		for _, tag := range e.Value.Tags {
			seen[strings.ToLower(tag)] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}
