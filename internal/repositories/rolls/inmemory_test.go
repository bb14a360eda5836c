package rolls

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rollerr "github.com/Ferroin/roll35/internal/errors"
)

func TestInMemoryRepository_RecordAndRecent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := repo.Record(ctx, &Record{
			ChannelID: "chan-1",
			Name:      fmt.Sprintf("item %d", i),
			Cost:      float64(i * 100),
			RolledAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	records, err := repo.Recent(ctx, "chan-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// newest first
	assert.Equal(t, "item 3", records[0].Name)
	assert.Equal(t, "item 2", records[1].Name)
	assert.NotEmpty(t, records[0].ID)
}

func TestInMemoryRepository_ChannelsAreIsolated(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, &Record{ChannelID: "chan-1", Name: "a"}))
	require.NoError(t, repo.Record(ctx, &Record{ChannelID: "chan-2", Name: "b"}))

	records, err := repo.Recent(ctx, "chan-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Name)
}

func TestInMemoryRepository_TrimsToDepth(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < historyDepth+10; i++ {
		err := repo.Record(ctx, &Record{
			ChannelID: "chan-1",
			Name:      fmt.Sprintf("item %d", i),
		})
		require.NoError(t, err)
	}

	records, err := repo.Recent(ctx, "chan-1", historyDepth*2)
	require.NoError(t, err)
	assert.Len(t, records, historyDepth)
	// the oldest records fell off
	assert.Equal(t, fmt.Sprintf("item %d", historyDepth+9), records[0].Name)
}

func TestInMemoryRepository_Validation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	err := repo.Record(ctx, nil)
	assert.True(t, rollerr.IsInvalid(err))

	err = repo.Record(ctx, &Record{Name: "no channel"})
	assert.True(t, rollerr.IsInvalid(err))

	_, err = repo.Recent(ctx, "", 5)
	assert.True(t, rollerr.IsInvalid(err))

	_, err = repo.Recent(ctx, "chan-1", 0)
	assert.True(t, rollerr.IsInvalid(err))
}

func TestInMemoryRepository_CopiesRecords(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	original := &Record{ChannelID: "chan-1", Name: "original"}
	require.NoError(t, repo.Record(ctx, original))

	// mutating the caller's record must not affect the stored copy
	original.Name = "mutated"

	records, err := repo.Recent(ctx, "chan-1", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "original", records[0].Name)

	// and mutating the returned record must not affect storage either
	records[0].Name = "mutated again"
	records, err = repo.Recent(ctx, "chan-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "original", records[0].Name)
}
