package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

func intp(v int) *int {
	return &v
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "spells.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSpells() []*treasure.Spell {
	return []*treasure.Spell{
		{
			Name:        "fireball",
			ClassLevels: map[string]int{"wizard": 3, "sorcerer": 3},
			Tags:        []string{"evocation", "fire"},
		},
		{
			Name:        "cure light wounds",
			ClassLevels: map[string]int{"cleric": 1, "druid": 1},
			Tags:        []string{"conjuration", "healing"},
		},
		{
			Name:        "detect magic",
			ClassLevels: map[string]int{"wizard": 0, "cleric": 0},
			Tags:        []string{"divination"},
		},
	}
}

func identityLevels(sp *treasure.Spell) map[string]int {
	return sp.ClassLevels
}

func TestStore_OpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestStore_BuiltAtZeroBeforeRebuild(t *testing.T) {
	store := openTestStore(t)

	ts, err := store.BuiltAt(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ts)
}

func TestStore_RebuildAndWatermark(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Rebuild(ctx, testSpells(), identityLevels, 1000))

	ts, err := store.BuiltAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ts)

	// a second rebuild replaces, not appends
	require.NoError(t, store.Rebuild(ctx, testSpells()[:1], identityLevels, 2000))

	ts, err = store.BuiltAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), ts)

	_, err = store.Random(ctx, "cleric", nil, nil)
	assert.True(t, rollerr.IsNoMatch(err))
}

func TestStore_RandomFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Rebuild(ctx, testSpells(), identityLevels, 1))

	tests := []struct {
		name     string
		class    string
		level    *int
		tags     []string
		expected []string
	}{
		{
			name:     "class only",
			class:    "druid",
			expected: []string{"cure light wounds"},
		},
		{
			name:     "class and level",
			class:    "wizard",
			level:    intp(0),
			expected: []string{"detect magic"},
		},
		{
			name:     "tag only",
			tags:     []string{"healing"},
			expected: []string{"cure light wounds"},
		},
		{
			name:     "tags are case-insensitive",
			tags:     []string{"FIRE"},
			expected: []string{"fireball"},
		},
		{
			name:     "every tag must match",
			tags:     []string{"evocation", "fire"},
			expected: []string{"fireball"},
		},
		{
			name:     "unfiltered draws from everything",
			expected: []string{"fireball", "cure light wounds", "detect magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := store.Random(ctx, tt.class, tt.level, tt.tags)
			require.NoError(t, err)
			assert.Contains(t, tt.expected, name)
		})
	}
}

func TestStore_RandomNoMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Rebuild(ctx, testSpells(), identityLevels, 1))

	tests := []struct {
		name  string
		class string
		level *int
		tags  []string
	}{
		{name: "unknown class", class: "bard"},
		{name: "level nobody casts at", class: "wizard", level: intp(9)},
		{name: "unknown tag", tags: []string{"necromancy"}},
		{name: "class and tag disagree", class: "cleric", tags: []string{"fire"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Random(ctx, tt.class, tt.level, tt.tags)
			assert.True(t, rollerr.IsNoMatch(err))
		})
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spells.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Rebuild(ctx, testSpells(), identityLevels, 42))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	ts, err := reopened.BuiltAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}
