package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	"github.com/Ferroin/roll35/internal/random"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixtureDataDir lays out a minimal but complete catalog directory
func fixtureDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFixture(t, dir, "category.json", `{
		"minor": [
			{"weight": 3, "value": "potion"},
			{"weight": 1, "value": "ring"}
		],
		"medium": [
			{"weight": 1, "value": "ring"}
		]
	}`)

	writeFixture(t, dir, "classes.json", `{
		"classes": [
			{"name": "wizard", "type": "arcane", "levels": [1, 1, 3, 5, 7, 9, 11, 13, 15, 17]},
			{"name": "cleric", "type": "divine", "levels": [1, 1, 3, 5, 7, 9, 11, 13, 15, 17]},
			{"name": "arcanist", "type": "arcane", "duplicate": "wizard"}
		]
	}`)

	writeFixture(t, dir, "wondrous.json", `{
		"slots": {
			"belt": {
				"minor": {
					"lesser": [
						{"weight": 1, "value": {"name": "belt of the weasel", "cost": 4000}}
					]
				}
			},
			"slotless": {
				"minor": {
					"least": [
						{"weight": 1, "value": {"name": "elixir of love", "cost": 150}}
					]
				}
			}
		}
	}`)

	writeFixture(t, dir, "armor.json", `{
		"base": [
			{"weight": 1, "value": {"name": "Full Plate", "type": "heavy", "cost": 1500}}
		],
		"enchants": {
			"armor": {
				"1": [
					{"weight": 1, "value": {"name": "shadow", "bonuscost": 3750}}
				]
			}
		},
		"patterns": {
			"minor": {
				"lesser": [
					{"weight": 1, "value": {"bonus": 1}}
				]
			}
		}
	}`)

	writeFixture(t, dir, "weapon.json", `{
		"masterwork": 300,
		"enchant_cost": 2000,
		"base": [
			{"weight": 1, "value": {"name": "Longsword", "type": "melee", "tags": ["slashing"], "cost": 15}}
		],
		"enchants": {
			"melee": {
				"1": [
					{"weight": 1, "value": {"name": "flaming", "bonus": 1}}
				]
			}
		},
		"patterns": {
			"minor": {
				"lesser": [
					{"weight": 3, "value": {"bonus": 1}},
					{"weight": 1, "value": {"specific": ["weapon", "minor", "lesser"]}}
				]
			}
		},
		"specific": {
			"weapon": {
				"minor": {
					"lesser": [
						{"weight": 1, "value": {"name": "sleep arrow", "cost": 132}}
					]
				}
			}
		}
	}`)

	writeFixture(t, dir, filepath.Join("ranked", "ring.json"), `{
		"minor": {
			"lesser": [
				{"weight": 1, "value": {"name": "ring of swimming", "cost": 2500}}
			]
		}
	}`)

	writeFixture(t, dir, filepath.Join("compound", "potion.json"), `{
		"class_required": true,
		"ranks": {
			"minor": [
				{"weight": 1, "value": {"name": "potion of cure light wounds", "cost": 50, "spell": {"level": 1, "cls": "cleric"}}}
			]
		}
	}`)

	writeFixture(t, dir, "spells.json", `[]`)

	return dir
}

func TestLoad_FullCatalog(t *testing.T) {
	dir := fixtureDataDir(t)

	reg, err := Load(context.Background(), &LoaderConfig{DataDir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	// every gate is open after a synchronous load
	assert.True(t, reg.Category.Gate().Ready())
	assert.True(t, reg.Armor.Gate().Ready())
	assert.True(t, reg.Weapon.Gate().Ready())
	assert.True(t, reg.Wondrous.Gate().Ready())
	assert.True(t, reg.Classes.Gate().Ready())

	assert.Equal(t, []string{"armor", "potion", "ring", "weapon", "wondrous"}, reg.Categories())
	assert.Equal(t, filepath.Join(dir, "spells.json"), reg.SpellFile)

	// ranked table round-trips
	ring, ok := reg.Ranked["ring"]
	require.True(t, ok)
	it, err := ring.Random(ctx, random.NewScriptedSource(0), treasure.RankMinor, treasure.SubrankLesser, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ring of swimming", it.Name)

	// compound table carries its class requirement
	potion, ok := reg.Compound["potion"]
	require.True(t, ok)
	assert.True(t, potion.ClassRequired())
	it, err = potion.Random(ctx, random.NewScriptedSource(0), treasure.RankMinor, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, it.Spell)
	assert.Equal(t, "cleric", it.Spell.Class)

	// ordnance cost overrides from the file
	b, err := reg.Weapon.GetBase(ctx, "longsword")
	require.NoError(t, err)
	masterwork, unit := reg.Weapon.BonusCosts(b)
	assert.Equal(t, 300.0, masterwork)
	assert.Equal(t, 2000.0, unit)

	// armor file omitted the overrides, so the defaults hold
	fp, err := reg.Armor.GetBase(ctx, "full plate")
	require.NoError(t, err)
	masterwork, unit = reg.Armor.BonusCosts(fp)
	assert.Equal(t, float64(DefaultArmorMasterwork), masterwork)
	assert.Equal(t, float64(DefaultArmorUnitCost), unit)

	// wondrous least survives only under slotless
	itm, err := reg.Wondrous.Random(ctx, random.NewScriptedSource(0),
		SlotSlotless, treasure.RankMinor, treasure.SubrankLeast, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "elixir of love", itm.Name)

	names, err := reg.Classes.Names(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "arcanist")
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(context.Background(), &LoaderConfig{DataDir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestLoad_RequiresDataDir(t *testing.T) {
	_, err := Load(context.Background(), &LoaderConfig{})
	assert.Error(t, err)
}

func TestLoad_RejectsLeastOutsideSlotless(t *testing.T) {
	dir := fixtureDataDir(t)
	writeFixture(t, dir, "wondrous.json", `{
		"slots": {
			"belt": {
				"minor": {
					"least": [
						{"weight": 1, "value": {"name": "bad", "cost": 1}}
					]
				}
			}
		}
	}`)

	_, err := Load(context.Background(), &LoaderConfig{DataDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "least")
}

func TestLoad_RejectsUnknownRank(t *testing.T) {
	dir := fixtureDataDir(t)
	writeFixture(t, dir, filepath.Join("ranked", "ring.json"), `{
		"mythic": {
			"lesser": [
				{"weight": 1, "value": {"name": "bad", "cost": 1}}
			]
		}
	}`)

	_, err := Load(context.Background(), &LoaderConfig{DataDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mythic")
}

func TestLoadAsync_GatesOpenEventually(t *testing.T) {
	dir := fixtureDataDir(t)

	reg, err := LoadAsync(context.Background(), &LoaderConfig{DataDir: dir})
	require.NoError(t, err)

	// a gated read blocks until the background load finishes
	it, err := reg.Ranked["ring"].Random(context.Background(), random.NewScriptedSource(0),
		treasure.RankMinor, treasure.SubrankLesser, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ring of swimming", it.Name)
}

func TestLoad_AppliesReadyTimeout(t *testing.T) {
	dir := fixtureDataDir(t)

	l := NewLoader(&LoaderConfig{DataDir: dir, ReadyTimeout: 123})
	reg, err := l.Build()
	require.NoError(t, err)

	for _, g := range registryGates(reg) {
		assert.Equal(t, int64(123), int64(g.timeout))
	}
}
