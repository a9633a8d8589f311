package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type memoryEntry struct {
	records   []entity.MatchRecord // newest first
	expiresAt time.Time
}

// memoryMatch keeps match history in process; used when no Redis is configured.
type memoryMatch struct {
	mu      sync.Mutex
	rooms   map[string]*memoryEntry
	options HistoryOptions
	now     func() time.Time
}

func NewMemoryMatchRepository(options HistoryOptions) MatchRepository {
	return &memoryMatch{
		rooms:   make(map[string]*memoryEntry),
		options: options.withDefaults(),
		now:     time.Now,
	}
}

func (that *memoryMatch) Save(_ context.Context, record entity.MatchRecord) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()

	entry, ok := that.rooms[record.RoomID]
	if !ok || now.After(entry.expiresAt) {
		entry = &memoryEntry{}
		that.rooms[record.RoomID] = entry
	}

	entry.records = slices.Insert(entry.records, 0, record)
	if len(entry.records) > that.options.Limit {
		entry.records = entry.records[:that.options.Limit]
	}
	entry.expiresAt = now.Add(that.options.TTL)

	return nil
}

func (that *memoryMatch) ListByRoom(_ context.Context, roomID string, limit int) ([]entity.MatchRecord, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.rooms[roomID]
	if !ok {
		return []entity.MatchRecord{}, nil
	}

	if that.now().After(entry.expiresAt) {
		delete(that.rooms, roomID)
		return []entity.MatchRecord{}, nil
	}

	limit = min(that.options.clamp(limit), len(entry.records))

	return slices.Clone(entry.records[:limit]), nil
}
