package storage

import (
	"context"
	"sync"
	"time"

	"github.com/velora-ai/velora/internal/models"
)

// MemoryStorage is the in-memory Storage implementation used in tests and
// single-node deployments.
type MemoryStorage struct {
	mu       sync.RWMutex
	contexts map[string]*models.ConversationContext
	history  map[string][]*models.ConversationContext
	turns    map[string][]*models.Message
	usage    []*models.UsageRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		contexts: make(map[string]*models.ConversationContext),
		history:  make(map[string][]*models.ConversationContext),
		turns:    make(map[string][]*models.Message),
	}
}

func (s *MemoryStorage) GetOrCreateContext(ctx context.Context, threadID string) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(threadID).Clone(), nil
}

func (s *MemoryStorage) getOrCreateLocked(threadID string) *models.ConversationContext {
	if c, exists := s.contexts[threadID]; exists {
		return c
	}
	c := &models.ConversationContext{
		ThreadID:    threadID,
		Version:     1,
		LastUpdated: time.Now().UTC(),
	}
	s.contexts[threadID] = c
	return c
}

// snapshotLocked pushes the current state onto the bounded version history.
func (s *MemoryStorage) snapshotLocked(threadID string, current *models.ConversationContext) {
	h := append(s.history[threadID], current.Clone())
	if len(h) > MaxContextVersions {
		h = h[len(h)-MaxContextVersions:]
	}
	s.history[threadID] = h
}

func (s *MemoryStorage) MergeLongTerm(ctx context.Context, threadID string, partial models.LongTermContext) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreateLocked(threadID)
	s.snapshotLocked(threadID, c)
	c.MergeLongTerm(partial)
	c.Version++
	c.LastUpdated = time.Now().UTC()
	return c.Clone(), nil
}

func (s *MemoryStorage) MergeShortTerm(ctx context.Context, threadID string, partial models.ShortTermContext) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreateLocked(threadID)
	s.snapshotLocked(threadID, c)
	c.MergeShortTerm(partial)
	c.Version++
	c.LastUpdated = time.Now().UTC()
	return c.Clone(), nil
}

func (s *MemoryStorage) ListVersions(ctx context.Context, threadID string) ([]*models.ConversationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.history[threadID]
	out := make([]*models.ConversationContext, len(h))
	for i, c := range h {
		out[i] = c.Clone()
	}
	return out, nil
}

func (s *MemoryStorage) ResetToVersion(ctx context.Context, threadID string, version int) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.contexts[threadID]
	if !exists {
		return nil, ErrNotFound
	}
	var target *models.ConversationContext
	for _, c := range s.history[threadID] {
		if c.Version == version {
			target = c
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}

	s.snapshotLocked(threadID, current)
	restored := target.Clone()
	// Version numbers only move forward, even when restoring old content.
	restored.Version = current.Version + 1
	restored.LastUpdated = time.Now().UTC()
	s.contexts[threadID] = restored
	return restored.Clone(), nil
}

func (s *MemoryStorage) ClearContext(ctx context.Context, threadID string) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.getOrCreateLocked(threadID)
	s.snapshotLocked(threadID, current)
	cleared := &models.ConversationContext{
		ThreadID:    threadID,
		Version:     current.Version + 1,
		LastUpdated: time.Now().UTC(),
	}
	s.contexts[threadID] = cleared
	return cleared.Clone(), nil
}

func (s *MemoryStorage) SaveTurn(ctx context.Context, turn *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *turn
	s.turns[turn.ThreadID] = append(s.turns[turn.ThreadID], &cp)
	return nil
}

func (s *MemoryStorage) GetTurns(ctx context.Context, threadID string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[threadID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*models.Message, len(all))
	for i, m := range all {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (s *MemoryStorage) LatestTurnByTask(ctx context.Context, threadID string, role models.Role, taskType string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[threadID]
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Role == role && all[i].TaskType == taskType {
			cp := *all[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) AppendUsage(ctx context.Context, record *models.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.usage = append(s.usage, &cp)
	return nil
}

func (s *MemoryStorage) CountUsage(ctx context.Context, userID string, capability models.Capability, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.usage {
		if r.UserID != userID || r.Capability != capability {
			continue
		}
		if r.Timestamp.Before(from) || !r.Timestamp.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *MemoryStorage) SumTokens(ctx context.Context, userID string, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, r := range s.usage {
		if r.UserID != userID {
			continue
		}
		if r.Timestamp.Before(from) || !r.Timestamp.Before(to) {
			continue
		}
		total += r.Tokens
	}
	return total, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
