package rolls

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/uuid"
)

// redisRepo implements the Repository interface using Redis lists,
// one per channel, trimmed to historyDepth
type redisRepo struct {
	client        redis.UniversalClient
	uuidGenerator uuid.Generator
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedis creates a Redis-backed roll history repository
func NewRedis(cfg *RedisRepoConfig) Repository {
	return &redisRepo{
		client:        cfg.Client,
		uuidGenerator: uuid.NewGoogleUUIDGenerator(),
	}
}

func historyKey(channelID string) string {
	return fmt.Sprintf("roll35:history:%s", channelID)
}

// Record stores one generated item
func (r *redisRepo) Record(ctx context.Context, record *Record) error {
	if record == nil {
		return rollerr.Invalid("record cannot be nil")
	}
	if record.ChannelID == "" {
		return rollerr.Invalid("record channel ID is required")
	}

	recCopy := *record
	if recCopy.ID == "" {
		recCopy.ID = r.uuidGenerator.New()
	}

	data, err := json.Marshal(&recCopy)
	if err != nil {
		return rollerr.WrapWithCode(err, rollerr.CodeFailed, "failed to marshal roll record")
	}

	key := historyKey(record.ChannelID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, historyDepth-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return rollerr.WrapWithCode(err, rollerr.CodeFailed, "failed to store roll record")
	}
	return nil
}

// Recent retrieves up to n records for a channel, newest first
func (r *redisRepo) Recent(ctx context.Context, channelID string, n int) ([]*Record, error) {
	if channelID == "" {
		return nil, rollerr.Invalid("channel ID is required")
	}
	if n < 1 {
		return nil, rollerr.Invalidf("record count must be positive, got %d", n)
	}

	values, err := r.client.LRange(ctx, historyKey(channelID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, rollerr.WrapWithCode(err, rollerr.CodeFailed, "failed to read roll history")
	}

	records := make([]*Record, 0, len(values))
	for _, v := range values {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, rollerr.WrapWithCode(err, rollerr.CodeFailed, "failed to unmarshal roll record")
		}
		records = append(records, &rec)
	}
	return records, nil
}
