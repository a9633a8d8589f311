package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	DefaultHistoryLimit = 50
	DefaultHistoryTTL   = 24 * time.Hour
)

type MatchRepository interface {
	Save(ctx context.Context, record entity.MatchRecord) error
	// ListByRoom - newest first; limit <= 0 or above the retained size returns everything kept.
	ListByRoom(ctx context.Context, roomID string, limit int) ([]entity.MatchRecord, error)
}

// HistoryOptions - how many records are kept per room and for how long.
type HistoryOptions struct {
	Limit int
	TTL   time.Duration
}

func (that HistoryOptions) withDefaults() HistoryOptions {
	if that.Limit <= 0 {
		that.Limit = DefaultHistoryLimit
	}
	if that.TTL <= 0 {
		that.TTL = DefaultHistoryTTL
	}
	return that
}

func (that HistoryOptions) clamp(limit int) int {
	if limit <= 0 || limit > that.Limit {
		return that.Limit
	}
	return limit
}

type dbMatch struct {
	client  *redis.Client
	options HistoryOptions
}

func NewMatchRepository(client *redis.Client, options HistoryOptions) MatchRepository {
	return &dbMatch{
		client:  client,
		options: options.withDefaults(),
	}
}

func (that *dbMatch) Save(ctx context.Context, record entity.MatchRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal match record: %w", err)
	}

	key := matchesKey(record.RoomID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, recordJSON)
		pipe.LTrim(ctx, key, 0, int64(that.options.Limit-1))
		pipe.Expire(ctx, key, that.options.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save match record: %w", err)
	}

	return nil
}

func (that *dbMatch) ListByRoom(ctx context.Context, roomID string, limit int) ([]entity.MatchRecord, error) {
	limit = that.options.clamp(limit)

	response, err := that.client.LRange(ctx, matchesKey(roomID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list match records: %w", err)
	}

	records := make([]entity.MatchRecord, 0, len(response))
	for _, raw := range response {
		var record entity.MatchRecord
		if err = json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}
