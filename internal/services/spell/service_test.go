package spell

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/services/spell/sqlite"
)

const testSpellSource = `[
	{
		"name": "fireball",
		"classes": {"wizard": 3, "sorcerer": 3},
		"tags": ["evocation", "fire"]
	},
	{
		"name": "cure light wounds",
		"classes": {"cleric": 1, "druid": 1},
		"tags": ["conjuration", "healing"]
	},
	{
		"name": "barkskin",
		"classes": {"druid": 2, "sorcerer": 3},
		"tags": ["transmutation"]
	}
]`

func testClassTable(t *testing.T) *catalog.ClassTable {
	t.Helper()
	table := catalog.NewClassTable()
	entries := []*treasure.ClassEntry{
		{Name: "wizard", Type: treasure.ClassArcane, Levels: levels(1, 1, 3, 5)},
		{Name: "sorcerer", Type: treasure.ClassArcane, Levels: levels(1, 1, 4, 6)},
		{Name: "cleric", Type: treasure.ClassDivine, Levels: levels(1, 1, 3, 5)},
		{Name: "druid", Type: treasure.ClassDivine, Levels: levels(1, 1, 3, 5)},
	}
	for _, e := range entries {
		require.NoError(t, table.Add(e))
	}
	table.Gate().Open()
	return table
}

func newTestService(t *testing.T) Service {
	t.Helper()
	dir := t.TempDir()

	spellFile := filepath.Join(dir, "spells.json")
	require.NoError(t, os.WriteFile(spellFile, []byte(testSpellSource), 0o644))

	store, err := sqlite.Open(filepath.Join(dir, "spells.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewService(&ServiceConfig{
		Classes:   testClassTable(t),
		SpellFile: spellFile,
		Store:     store,
		SyncLoad:  true,
	})
	require.NoError(t, err)
	return svc
}

func TestService_RandomByClass(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Random(ctx, "wizard", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "fireball", res.Spell.Name)
	assert.Equal(t, "wizard", res.Class)
	assert.Equal(t, 3, res.Level)
	assert.Equal(t, 5, res.CasterLevel)
}

func TestService_RandomByLevelAndTag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Random(ctx, "druid", intp(2), nil)
	require.NoError(t, err)
	assert.Equal(t, "barkskin", res.Spell.Name)

	res, err = svc.Random(ctx, "", nil, []string{"healing"})
	require.NoError(t, err)
	assert.Equal(t, "cure light wounds", res.Spell.Name)
}

func TestService_RandomMinimumResolvesConcreteClass(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// barkskin: druid level 2 beats sorcerer level 3
	res, err := svc.Random(ctx, treasure.ClassMinimum, intp(2), []string{"transmutation"})
	require.NoError(t, err)
	assert.Equal(t, "barkskin", res.Spell.Name)
	assert.Equal(t, "druid", res.Class)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 3, res.CasterLevel)
}

func TestService_RandomSpellpage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// barkskin has no wizard entry, so the arcane spellpage falls back
	// to the lowest arcane caster
	res, err := svc.Random(ctx, treasure.ClassSpellpageArcane, nil, []string{"transmutation"})
	require.NoError(t, err)
	assert.Equal(t, "sorcerer", res.Class)
	assert.Equal(t, 3, res.Level)
}

func TestService_RandomUnknownClass(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Random(context.Background(), "bard", nil, nil)
	assert.True(t, rollerr.IsInvalid(err))
}

func TestService_RandomNoMatch(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Random(context.Background(), "cleric", intp(9), nil)
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestService_CasterLevel(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cl, err := svc.CasterLevel(ctx, "wizard", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, cl)

	_, err = svc.CasterLevel(ctx, "wizard", 9)
	assert.True(t, rollerr.IsNoMatch(err))

	_, err = svc.CasterLevel(ctx, "bard", 1)
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestService_RebuildSkippedWhenFresh(t *testing.T) {
	dir := t.TempDir()
	spellFile := filepath.Join(dir, "spells.json")
	require.NoError(t, os.WriteFile(spellFile, []byte(testSpellSource), 0o644))

	store, err := sqlite.Open(filepath.Join(dir, "spells.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = NewService(&ServiceConfig{
		Classes:   testClassTable(t),
		SpellFile: spellFile,
		Store:     store,
		SyncLoad:  true,
	})
	require.NoError(t, err)

	first, err := store.BuiltAt(context.Background())
	require.NoError(t, err)
	require.NotZero(t, first)

	// a second service over the same unchanged source keeps the watermark
	_, err = NewService(&ServiceConfig{
		Classes:   testClassTable(t),
		SpellFile: spellFile,
		Store:     store,
		SyncLoad:  true,
	})
	require.NoError(t, err)

	second, err := store.BuiltAt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_RequiresClassCatalog(t *testing.T) {
	_, err := NewService(&ServiceConfig{})
	assert.True(t, rollerr.IsInvalid(err))
}
