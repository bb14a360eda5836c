package roll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/domain/treasure"
	"github.com/Ferroin/roll35/internal/random"
	spellsvc "github.com/Ferroin/roll35/internal/services/spell"
)

func mustList(t *testing.T, items ...*treasure.Item) *treasure.WeightedList {
	t.Helper()
	l := treasure.NewWeightedList()
	for _, it := range items {
		require.NoError(t, l.Insert(1, it))
	}
	return l
}

func floatp(v float64) *float64 {
	return &v
}

func intp(v int) *int {
	return &v
}

// stubSpells is a canned spell service for orchestrator tests
type stubSpells struct {
	result *spellsvc.Result
	err    error

	// captured arguments of the last Random call
	gotClass string
	gotLevel *int
}

func (s *stubSpells) Random(ctx context.Context, class string, level *int, tags []string) (*spellsvc.Result, error) {
	s.gotClass = class
	s.gotLevel = level
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSpells) CasterLevel(ctx context.Context, class string, spellLevel int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.result.CasterLevel, nil
}

// newRankedRegistry builds a registry with a single open ranked table
// under the given category name
func newRankedRegistry(t *testing.T, category string, items ...*treasure.Item) *catalog.Registry {
	t.Helper()
	table := catalog.NewRankedTable(category)
	table.Set(treasure.RankMinor, treasure.SubrankLesser, mustList(t, items...))
	table.Gate().Open()
	return &catalog.Registry{
		Ranked: map[string]*catalog.RankedTable{category: table},
	}
}

// newTestWeaponTable builds a small open weapon table for assembly
// tests
func newTestWeaponTable(t *testing.T) *catalog.OrdnanceTable {
	t.Helper()
	table := catalog.NewOrdnanceTable(catalog.CategoryWeapon, 300, 2000)

	table.AddBase(1, &treasure.BaseItem{Name: "Longsword", Type: "melee", Tags: []string{"slashing"}, Cost: treasure.Cost{Value: 15}})
	table.AddBase(1, &treasure.BaseItem{Name: "Two-Bladed Sword", Type: "melee", Tags: []string{"double", "slashing"}, Cost: treasure.Cost{Value: 100}})

	table.AddEnchant("melee", 1, 1, &treasure.Enchant{Name: "flaming", Bonus: 1})

	table.Gate().Open()
	return table
}

func newService(t *testing.T, reg *catalog.Registry, spells spellsvc.Service, src random.Source) *service {
	t.Helper()
	svc, err := NewService(&ServiceConfig{
		Registry: reg,
		Spells:   spells,
		Source:   src,
	})
	require.NoError(t, err)
	return svc.(*service)
}
