package router

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/models"
	"github.com/velora-ai/velora/internal/storage"
)

// Ledger answers quota questions and records delivered generations against
// the append-only usage store. The insert-then-count model means two
// concurrent generations for one user each append their own record; nothing
// is ever read-modify-written.
type Ledger struct {
	store  storage.UsageStore
	logger *zap.Logger
	// now is swappable in tests.
	now func() time.Time
}

func NewLedger(store storage.UsageStore, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// Check reports whether the user may run one more generation of the given
// capability today on their tier. A store read failure counts as allowed:
// quota enforcement is best-effort and must never block a paying user on a
// flaky read.
func (l *Ledger) Check(ctx context.Context, userID string, capability models.Capability, tier models.Tier) models.UsageStatus {
	limit := models.DailyLimit(tier, capability)
	from, to := models.DayWindow(l.now())

	used, err := l.store.CountUsage(ctx, userID, capability, from, to)
	if err != nil {
		l.logger.Error("Failed to count usage, allowing request",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("capability", capability.String()))
		return models.UsageStatus{Allowed: true, Limit: limit, Remaining: limit}
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return models.UsageStatus{
		Allowed:   used < limit,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
	}
}

// CheckTokens reports whether the user still has monthly token budget left
// on their tier. Like Check, a store read failure fails open.
func (l *Ledger) CheckTokens(ctx context.Context, userID string, tier models.Tier) models.TokenStatus {
	budget := models.MonthlyTokenBudget(tier)
	from, to := models.MonthWindow(l.now())

	used, err := l.store.SumTokens(ctx, userID, from, to)
	if err != nil {
		l.logger.Error("Failed to sum token usage, allowing request",
			zap.Error(err),
			zap.String("user_id", userID))
		return models.TokenStatus{Allowed: true, Budget: budget, Remaining: budget}
	}

	remaining := budget - used
	if remaining < 0 {
		remaining = 0
	}
	return models.TokenStatus{
		Allowed:   used < budget,
		Used:      used,
		Budget:    budget,
		Remaining: remaining,
	}
}

// Record appends one usage entry for a delivered generation. Persistence
// failures are logged and swallowed; billing gaps are preferable to failing
// a turn that already produced output.
func (l *Ledger) Record(ctx context.Context, userID string, capability models.Capability, tokens int, metadata map[string]string) {
	record := &models.UsageRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		Capability: capability,
		Timestamp:  l.now().UTC(),
		Tokens:     tokens,
		Metadata:   metadata,
	}
	if err := l.store.AppendUsage(ctx, record); err != nil {
		l.logger.Error("Failed to record usage",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("capability", capability.String()))
	}
}
