package rolls

//go:generate mockgen -destination=mock/mock.go -package=mockrolls -source=interface.go

import (
	"context"
	"time"
)

// Record is one generated item kept for the history view
type Record struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Category  string    `json:"category,omitempty"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
	RolledAt  time.Time `json:"rolled_at"`
}

// Repository defines the interface for roll history persistence
type Repository interface {
	// Record stores one generated item
	Record(ctx context.Context, record *Record) error

	// Recent retrieves up to n records for a channel, newest first
	Recent(ctx context.Context, channelID string, n int) ([]*Record, error)
}
