package rolls

import (
	"context"
	"sync"

	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/uuid"
)

// historyDepth bounds how many records each channel keeps
const historyDepth = 100

// InMemoryRepository is an in-memory implementation of the roll
// history repository. Useful for testing and for running without
// Redis.
type InMemoryRepository struct {
	mu            sync.RWMutex
	byChannel     map[string][]*Record
	uuidGenerator uuid.Generator
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		byChannel:     make(map[string][]*Record),
		uuidGenerator: uuid.NewGoogleUUIDGenerator(),
	}
}

// Record stores one generated item
func (r *InMemoryRepository) Record(ctx context.Context, record *Record) error {
	if record == nil {
		return rollerr.Invalid("record cannot be nil")
	}
	if record.ChannelID == "" {
		return rollerr.Invalid("record channel ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recCopy := *record
	if recCopy.ID == "" {
		recCopy.ID = r.uuidGenerator.New()
	}

	records := append([]*Record{&recCopy}, r.byChannel[record.ChannelID]...)
	if len(records) > historyDepth {
		records = records[:historyDepth]
	}
	r.byChannel[record.ChannelID] = records

	return nil
}

// Recent retrieves up to n records for a channel, newest first
func (r *InMemoryRepository) Recent(ctx context.Context, channelID string, n int) ([]*Record, error) {
	if channelID == "" {
		return nil, rollerr.Invalid("channel ID is required")
	}
	if n < 1 {
		return nil, rollerr.Invalidf("record count must be positive, got %d", n)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.byChannel[channelID]
	if len(records) > n {
		records = records[:n]
	}

	out := make([]*Record, len(records))
	for i, rec := range records {
		recCopy := *rec
		out[i] = &recCopy
	}
	return out, nil
}
