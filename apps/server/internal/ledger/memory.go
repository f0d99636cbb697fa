package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type handKey struct {
	userID uint64
	source Source
	handID string
}

type memoryHand struct {
	item   HistoryItem
	events []EventItem
}

// MemoryService keeps the ledger in process memory.
type MemoryService struct {
	mu    sync.RWMutex
	hands map[handKey]*memoryHand
	now   func() time.Time
}

func NewMemoryService() *MemoryService {
	return &MemoryService{hands: make(map[handKey]*memoryHand), now: time.Now}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) RecordHand(_ context.Context, rec HandRecord) error {
	if rec.Source == "" {
		rec.Source = SourceLive
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	key := handKey{rec.UserID, rec.Source, rec.HandID}
	events := append([]EventItem(nil), rec.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })

	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hands[key]
	if !ok {
		h = &memoryHand{item: HistoryItem{HandID: rec.HandID, Source: rec.Source}}
		s.hands[key] = h
	}
	h.item.PlayedAt = rec.PlayedAt.UTC()
	h.item.Summary = rec.Summary
	h.item.UpdatedAt = s.now().UTC()
	h.events = events
	return nil
}

func (s *MemoryService) ListRecent(_ context.Context, userID uint64, source Source, limit int) ([]HistoryItem, error) {
	s.mu.RLock()
	items := make([]HistoryItem, 0)
	for key, h := range s.hands {
		if key.userID == userID && key.source == source {
			items = append(items, h.item)
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].PlayedAt.Equal(items[j].PlayedAt) {
			return items[i].PlayedAt.After(items[j].PlayedAt)
		}
		return items[i].HandID > items[j].HandID
	})
	if limit = clampLimit(limit); len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryService) GetHandEvents(_ context.Context, userID uint64, source Source, handID string) ([]EventItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hands[handKey{userID, source, handID}]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]EventItem(nil), h.events...), nil
}

func (s *MemoryService) SetSaved(_ context.Context, userID uint64, source Source, handID string, saved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hands[handKey{userID, source, handID}]
	if !ok {
		return ErrNotFound
	}
	if saved == h.item.IsSaved {
		return nil
	}
	if saved {
		count := 0
		for key, other := range s.hands {
			if key.userID == userID && other.item.IsSaved {
				count++
			}
		}
		if count >= defaultSavedLimit {
			return ErrSavedLimitReach
		}
		at := s.now().UTC()
		h.item.SavedAt = &at
	} else {
		h.item.SavedAt = nil
	}
	h.item.IsSaved = saved
	h.item.UpdatedAt = s.now().UTC()
	return nil
}
