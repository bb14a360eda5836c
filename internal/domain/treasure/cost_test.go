package treasure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCost_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Cost
		wantErr  bool
	}{
		{
			name:     "plain number",
			input:    `2500`,
			expected: Cost{Value: 2500},
		},
		{
			name:     "fractional number",
			input:    `12.5`,
			expected: Cost{Value: 12.5},
		},
		{
			name:     "varies sentinel",
			input:    `"varies"`,
			expected: Cost{Varies: true},
		},
		{
			name:    "other string rejected",
			input:   `"lots"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cost
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestCost_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Cost{Varies: true})
	require.NoError(t, err)
	assert.Equal(t, `"varies"`, string(data))

	data, err = json.Marshal(Cost{Value: 750})
	require.NoError(t, err)
	assert.Equal(t, `750`, string(data))
}

func TestCostRange_EmptyIsUnionIdentity(t *testing.T) {
	r := CostRange{Min: 100, Max: 500}

	assert.Equal(t, r, EmptyCostRange().Union(r))
	assert.Equal(t, r, r.Union(EmptyCostRange()))
	assert.True(t, EmptyCostRange().Union(EmptyCostRange()).IsEmpty())
}

func TestCostRange_Union(t *testing.T) {
	tests := []struct {
		name     string
		a, b     CostRange
		expected CostRange
	}{
		{
			name:     "disjoint intervals span the gap",
			a:        CostRange{Min: 10, Max: 20},
			b:        CostRange{Min: 100, Max: 200},
			expected: CostRange{Min: 10, Max: 200},
		},
		{
			name:     "contained interval is absorbed",
			a:        CostRange{Min: 10, Max: 200},
			b:        CostRange{Min: 50, Max: 60},
			expected: CostRange{Min: 10, Max: 200},
		},
		{
			name:     "single point extends the edge",
			a:        CostRange{Min: 10, Max: 20},
			b:        CostRange{Min: 5, Max: 5},
			expected: CostRange{Min: 5, Max: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Union(tt.b))
			assert.Equal(t, tt.expected, tt.b.Union(tt.a))
		})
	}
}

func TestCostRange_Add(t *testing.T) {
	r := EmptyCostRange().Add(100)
	assert.Equal(t, CostRange{Min: 100, Max: 100}, r)

	r = r.Add(40)
	assert.Equal(t, CostRange{Min: 40, Max: 100}, r)
}

func TestCostRange_Overlaps(t *testing.T) {
	r := CostRange{Min: 100, Max: 500}

	assert.True(t, r.Overlaps(400, 600))
	assert.True(t, r.Overlaps(500, 500))
	assert.True(t, r.Overlaps(0, 100))
	assert.False(t, r.Overlaps(501, 1000))
	assert.False(t, r.Overlaps(0, 99))

	// the empty range overlaps nothing, not even everything
	assert.False(t, EmptyCostRange().Overlaps(0, 1e9))
	assert.True(t, FullCostRange().Overlaps(0, 0))
}

func TestCostRange_Contains(t *testing.T) {
	r := CostRange{Min: 100, Max: 500}

	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(500))
	assert.False(t, r.Contains(99.99))
	assert.False(t, EmptyCostRange().Contains(0))
}
