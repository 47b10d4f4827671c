// Package orchestrator is the surface the UI backend calls: it runs the
// interpret → gate → dispatch pipeline for a turn, folds context updates
// back into the store, and guarantees every turn ends in a terminal state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/interpreter"
	"github.com/velora-ai/velora/internal/models"
	"github.com/velora-ai/velora/internal/router"
	"github.com/velora-ai/velora/internal/storage"
)

// ThreadState is the caller-owned per-thread send state. The caller
// serializes turns; the orchestrator only refuses to start a turn on a
// thread that is already in flight.
type ThreadState string

const (
	ThreadIdle      ThreadState = "idle"
	ThreadSending   ThreadState = "sending"
	ThreadReceiving ThreadState = "receiving"
)

// ErrThreadBusy is returned when a turn arrives for a thread that already
// has one in flight.
var ErrThreadBusy = errors.New("orchestrator: thread already has a turn in flight")

// TurnRequest is one user turn.
type TurnRequest struct {
	UserID   string
	ThreadID string
	Message  string
	Tier     models.Tier
	// ForceCapability is set when the user picked a mode button.
	ForceCapability models.Capability
	WebResearch     bool
	// State is the caller's thread state machine, read-only here.
	State ThreadState
}

// TurnResult is everything the UI needs to render the assistant's reply.
type TurnResult struct {
	Interpretation *models.Interpretation
	Outcome        *models.Outcome
	AssistantTurn  *models.Message
}

// Orchestrator wires the interpreter, router, and stores into one turn
// pipeline.
type Orchestrator struct {
	interp *interpreter.Interpreter
	router *router.Router
	ledger *router.Ledger
	store  storage.Storage
	logger *zap.Logger
}

func New(interp *interpreter.Interpreter, rt *router.Router, ledger *router.Ledger, store storage.Storage, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		interp: interp,
		router: rt,
		ledger: ledger,
		store:  store,
		logger: logger,
	}
}

// HandleTurn runs one full user turn. Every entry into generation exits
// into either a success or a terminal failure turn; cancellation records a
// "stopped" turn and consumes no quota.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.State != ThreadIdle && req.State != "" {
		return nil, ErrThreadBusy
	}

	interp := o.interpretTurn(ctx, req)

	if interp.NeedsClarification {
		o.saveUserTurn(ctx, req, interp)
		outcome := &models.Outcome{
			Kind:        models.OutcomeClarification,
			Capability:  interp.Intent,
			DisplayText: "I need a little more detail before I can create this.",
		}
		assistant := o.saveAssistantTurn(ctx, req.ThreadID, interp.Intent, outcome)
		return &TurnResult{Interpretation: interp, Outcome: outcome, AssistantTurn: assistant}, nil
	}

	// Routing happens before the user turn is persisted so that a
	// modification follow-up resolves against the previous exchange, not
	// against itself.
	outcome := o.router.Route(ctx, router.Request{
		Interpretation: interp,
		UserID:         req.UserID,
		ThreadID:       req.ThreadID,
		Tier:           req.Tier,
		RawMessage:     req.Message,
	})
	o.saveUserTurn(ctx, req, interp)

	if ctx.Err() != nil {
		// User cancellation: replace the in-progress state with a
		// terminal stopped turn. Nothing was recorded to the ledger for
		// an undelivered generation.
		outcome = &models.Outcome{
			Kind:        models.OutcomeFailed,
			Capability:  interp.Intent,
			DisplayText: "Stopped by user.",
		}
	}

	o.foldContextUpdates(req.ThreadID, interp)

	assistant := o.saveAssistantTurn(ctx, req.ThreadID, interp.Intent, outcome)
	return &TurnResult{Interpretation: interp, Outcome: outcome, AssistantTurn: assistant}, nil
}

// Interpret exposes interpretation on its own, for callers that preview the
// routing decision before dispatching.
func (o *Orchestrator) Interpret(ctx context.Context, req TurnRequest) *models.Interpretation {
	return o.interpretTurn(ctx, req)
}

func (o *Orchestrator) interpretTurn(ctx context.Context, req TurnRequest) *models.Interpretation {
	conv, err := o.store.GetOrCreateContext(ctx, req.ThreadID)
	if err != nil {
		o.logger.Error("Failed to load context, interpreting without it",
			zap.Error(err), zap.String("thread_id", req.ThreadID))
		conv = nil
	}
	history, err := o.store.GetTurns(ctx, req.ThreadID, 0)
	if err != nil {
		o.logger.Error("Failed to load history, interpreting without it",
			zap.Error(err), zap.String("thread_id", req.ThreadID))
	}

	return o.interp.Interpret(ctx, interpreter.Request{
		ThreadID:        req.ThreadID,
		Message:         req.Message,
		History:         history,
		Context:         conv,
		Tier:            req.Tier,
		ForceCapability: req.ForceCapability,
		WebResearch:     req.WebResearch,
	})
}

// Route exposes dispatch on its own for pre-built interpretations.
func (o *Orchestrator) Route(ctx context.Context, interp *models.Interpretation, userID, threadID string, tier models.Tier, rawMessage string) *models.Outcome {
	return o.router.Route(ctx, router.Request{
		Interpretation: interp,
		UserID:         userID,
		ThreadID:       threadID,
		Tier:           tier,
		RawMessage:     rawMessage,
	})
}

// CheckUsageLimits answers the UI's quota display query.
func (o *Orchestrator) CheckUsageLimits(ctx context.Context, userID string, capability models.Capability, tier models.Tier) models.UsageStatus {
	return o.ledger.Check(ctx, userID, capability, tier)
}

// RecordUsage appends a usage entry outside the normal dispatch path (for
// generations delivered by out-of-band pipelines).
func (o *Orchestrator) RecordUsage(ctx context.Context, userID string, capability models.Capability, tokens int, metadata map[string]string) {
	o.ledger.Record(ctx, userID, capability, tokens, metadata)
}

// CheckTokenBudget answers the UI's monthly token budget display query.
func (o *Orchestrator) CheckTokenBudget(ctx context.Context, userID string, tier models.Tier) models.TokenStatus {
	return o.ledger.CheckTokens(ctx, userID, tier)
}

// GetContext returns the thread's conversation context, creating it lazily.
func (o *Orchestrator) GetContext(ctx context.Context, threadID string) (*models.ConversationContext, error) {
	return o.store.GetOrCreateContext(ctx, threadID)
}

// UpdateContext applies explicit context edits from the UI (e.g. the user
// corrected an assumption).
func (o *Orchestrator) UpdateContext(ctx context.Context, threadID string, updates models.ContextUpdates) (*models.ConversationContext, error) {
	var (
		conv *models.ConversationContext
		err  error
	)
	if updates.LongTerm != nil {
		conv, err = o.store.MergeLongTerm(ctx, threadID, *updates.LongTerm)
		if err != nil {
			return nil, fmt.Errorf("merging long-term context: %w", err)
		}
	}
	if updates.ShortTerm != nil {
		conv, err = o.store.MergeShortTerm(ctx, threadID, *updates.ShortTerm)
		if err != nil {
			return nil, fmt.Errorf("merging short-term context: %w", err)
		}
	}
	if conv == nil {
		conv, err = o.store.GetOrCreateContext(ctx, threadID)
	}
	return conv, err
}

// foldContextUpdates merges the interpretation's proposed deltas, logging
// and swallowing persistence errors so the turn still completes.
func (o *Orchestrator) foldContextUpdates(threadID string, interp *models.Interpretation) {
	if interp.ContextUpdates.IsEmpty() {
		return
	}
	// A fresh context so a cancelled turn still persists its updates.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if interp.ContextUpdates.LongTerm != nil {
		if _, err := o.store.MergeLongTerm(ctx, threadID, *interp.ContextUpdates.LongTerm); err != nil {
			o.logger.Error("Failed to persist long-term context updates",
				zap.Error(err), zap.String("thread_id", threadID))
		}
	}
	if interp.ContextUpdates.ShortTerm != nil {
		if _, err := o.store.MergeShortTerm(ctx, threadID, *interp.ContextUpdates.ShortTerm); err != nil {
			o.logger.Error("Failed to persist short-term context updates",
				zap.Error(err), zap.String("thread_id", threadID))
		}
	}
}

// saveUserTurn persists the user's message tagged with the resolved task
// type so later modification follow-ups can find its source text.
func (o *Orchestrator) saveUserTurn(ctx context.Context, req TurnRequest, interp *models.Interpretation) {
	turn := &models.Message{
		ID:          uuid.New().String(),
		ThreadID:    req.ThreadID,
		Role:        models.RoleUser,
		Content:     req.Message,
		Timestamp:   time.Now().UTC(),
		TaskType:    interp.Intent.String(),
		Assumptions: interp.Assumptions,
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.store.SaveTurn(saveCtx, turn); err != nil {
		// Durability is best-effort; the turn proceeds regardless.
		o.logger.Error("Failed to save user turn", zap.Error(err),
			zap.String("thread_id", req.ThreadID))
	}
}

// saveAssistantTurn writes the terminal assistant turn for this exchange.
func (o *Orchestrator) saveAssistantTurn(ctx context.Context, threadID string, capability models.Capability, outcome *models.Outcome) *models.Message {
	content := outcome.DisplayText
	if content == "" {
		content = outcome.Reason
	}
	turn := &models.Message{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
		TaskType:  capability.String(),
		MediaURL:  outcome.ArtifactURL,
		MediaType: mediaType(capability),
	}
	// Save with a background-derived context so cancellation can't leave
	// the thread without its terminal turn.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.store.SaveTurn(saveCtx, turn); err != nil {
		o.logger.Error("Failed to save assistant turn", zap.Error(err),
			zap.String("thread_id", threadID))
	}
	return turn
}

func mediaType(c models.Capability) string {
	switch c {
	case models.CapabilityImage, models.CapabilityImageEdit:
		return "image"
	case models.CapabilityVideo:
		return "video"
	case models.CapabilityTTS, models.CapabilityMusic:
		return "audio"
	case models.CapabilityPPT:
		return "file"
	default:
		return ""
	}
}
