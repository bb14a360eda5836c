package treasure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	rollerr "github.com/Ferroin/roll35/internal/errors"
)

func intp(v int) *int {
	return &v
}

func TestClassEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   ClassEntry
		wantErr bool
	}{
		{
			name:  "literal levels",
			entry: ClassEntry{Name: "wizard", Type: ClassArcane, Levels: []*int{intp(1), intp(1), intp(3)}},
		},
		{
			name:  "trailing nils are a short caster",
			entry: ClassEntry{Name: "paladin", Type: ClassDivine, Levels: []*int{nil, intp(4), intp(7), intp(10)}},
		},
		{
			name:  "duplicate reference",
			entry: ClassEntry{Name: "arcanist", Type: ClassArcane, Duplicate: "wizard"},
		},
		{
			name:  "merge reference",
			entry: ClassEntry{Name: "hunter", Type: ClassDivine, Merge: []string{"druid", "ranger"}},
		},
		{
			name:    "missing name",
			entry:   ClassEntry{Type: ClassArcane, Levels: []*int{intp(1)}},
			wantErr: true,
		},
		{
			name:    "unknown type",
			entry:   ClassEntry{Name: "bard", Type: "musical", Levels: []*int{intp(1)}},
			wantErr: true,
		},
		{
			name:    "no level source",
			entry:   ClassEntry{Name: "bard", Type: ClassArcane},
			wantErr: true,
		},
		{
			name:    "two level sources",
			entry:   ClassEntry{Name: "bard", Type: ClassArcane, Levels: []*int{intp(1)}, Duplicate: "wizard"},
			wantErr: true,
		},
		{
			name:    "too many spell levels",
			entry:   ClassEntry{Name: "bard", Type: ClassArcane, Levels: make([]*int, 11)},
			wantErr: true,
		},
		{
			name:    "decreasing table",
			entry:   ClassEntry{Name: "bard", Type: ClassArcane, Levels: []*int{intp(5), intp(3)}},
			wantErr: true,
		},
		{
			name:    "hole in the table",
			entry:   ClassEntry{Name: "bard", Type: ClassArcane, Levels: []*int{intp(1), nil, intp(5)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				assert.True(t, rollerr.IsInvalid(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpell_LevelFor(t *testing.T) {
	sp := &Spell{
		Name: "fireball",
		ClassLevels: map[string]int{
			"wizard":   3,
			"sorcerer": 3,
		},
		Minimum:         "wizard",
		SpellpageArcane: "wizard",
	}

	lvl, ok := sp.LevelFor("wizard")
	assert.True(t, ok)
	assert.Equal(t, 3, lvl)

	lvl, ok = sp.LevelFor(ClassMinimum)
	assert.True(t, ok)
	assert.Equal(t, 3, lvl)

	lvl, ok = sp.LevelFor(ClassSpellpageArcane)
	assert.True(t, ok)
	assert.Equal(t, 3, lvl)

	// no divine class can cast it, so the derivation stayed empty
	_, ok = sp.LevelFor(ClassSpellpageDivine)
	assert.False(t, ok)

	_, ok = sp.LevelFor("cleric")
	assert.False(t, ok)
}
