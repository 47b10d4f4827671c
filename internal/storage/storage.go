package storage

import (
	"context"
	"errors"
	"time"

	"github.com/velora-ai/velora/internal/models"
)

// ErrNotFound is returned when a thread, turn, or context version does not
// exist.
var ErrNotFound = errors.New("storage: not found")

// MaxContextVersions bounds the per-thread context version history; the
// oldest snapshot is evicted when the bound is exceeded.
const MaxContextVersions = 10

// ContextStore maintains the versioned conversation context per thread.
// Mutations snapshot the pre-change state into a bounded history before
// committing, so any of the last MaxContextVersions states can be restored.
type ContextStore interface {
	// GetOrCreateContext is idempotent; the first call for a thread
	// creates an empty context at version 1.
	GetOrCreateContext(ctx context.Context, threadID string) (*models.ConversationContext, error)
	// MergeLongTerm deep-merges durable facts (scalars last-write-wins,
	// lists union-deduped) and bumps the version.
	MergeLongTerm(ctx context.Context, threadID string, partial models.LongTermContext) (*models.ConversationContext, error)
	// MergeShortTerm merges ephemeral facts; recent topics are capped and
	// most-recent-first.
	MergeShortTerm(ctx context.Context, threadID string, partial models.ShortTermContext) (*models.ConversationContext, error)
	// ListVersions returns historical snapshots, oldest first.
	ListVersions(ctx context.Context, threadID string) ([]*models.ConversationContext, error)
	// ResetToVersion restores a historical snapshot's content under a new,
	// strictly higher version number. Returns ErrNotFound when the thread
	// or version does not exist.
	ResetToVersion(ctx context.Context, threadID string, version int) (*models.ConversationContext, error)
	// ClearContext resets the thread to an empty context, retaining the
	// prior state in history. Contexts are never hard-deleted.
	ClearContext(ctx context.Context, threadID string) (*models.ConversationContext, error)
}

// TurnStore persists the chat transcript.
type TurnStore interface {
	SaveTurn(ctx context.Context, turn *models.Message) error
	// GetTurns returns the most recent turns for a thread, newest last.
	GetTurns(ctx context.Context, threadID string, limit int) ([]*models.Message, error)
	// LatestTurnByTask returns the newest turn with the given role and
	// TaskType, for resolving modification follow-ups against the
	// original request text. ErrNotFound when none exists.
	LatestTurnByTask(ctx context.Context, threadID string, role models.Role, taskType string) (*models.Message, error)
}

// UsageStore is the append-only usage ledger. Each delivered generation
// appends one independent record; concurrent writers for the same user
// never lose entries because nothing is ever updated in place.
type UsageStore interface {
	AppendUsage(ctx context.Context, record *models.UsageRecord) error
	// CountUsage counts a user's records for a capability within
	// [from, to).
	CountUsage(ctx context.Context, userID string, capability models.Capability, from, to time.Time) (int, error)
	// SumTokens totals a user's token spend across all capabilities within
	// [from, to).
	SumTokens(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// Storage bundles every persistence concern behind one constructor-injected
// dependency, memory-backed or Postgres-backed.
type Storage interface {
	ContextStore
	TurnStore
	UsageStore
	Close() error
}
