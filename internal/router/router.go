// Package router dispatches an interpretation to the matching generation
// pathway, enforcing tier gates and daily quotas on the way in and
// normalizing every result into one outcome envelope on the way out.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/generation"
	"github.com/velora-ai/velora/internal/models"
	"github.com/velora-ai/velora/internal/storage"
)

// Options tune dispatch behavior.
type Options struct {
	// GenerationTimeout bounds each downstream generation call.
	GenerationTimeout time.Duration
	// FallbackChatModel serves the single automatic chat retry.
	FallbackChatModel string
}

func DefaultOptions() Options {
	return Options{
		GenerationTimeout: 3 * time.Minute,
		FallbackChatModel: "gpt-4o-mini",
	}
}

// Request is one dispatch: the interpretation plus the identity and raw
// text the heuristics need.
type Request struct {
	Interpretation *models.Interpretation
	UserID         string
	ThreadID       string
	Tier           models.Tier
	// RawMessage is the user's original text, used for parameter
	// extraction and modification-follow-up detection.
	RawMessage string
}

// Router gates, meters, and dispatches generation requests.
type Router struct {
	providers generation.Providers
	ledger    *Ledger
	turns     storage.TurnStore
	opts      Options
	logger    *zap.Logger
}

func New(providers generation.Providers, ledger *Ledger, turns storage.TurnStore, opts Options, logger *zap.Logger) *Router {
	if opts.GenerationTimeout == 0 {
		opts.GenerationTimeout = DefaultOptions().GenerationTimeout
	}
	if opts.FallbackChatModel == "" {
		opts.FallbackChatModel = DefaultOptions().FallbackChatModel
	}
	return &Router{
		providers: providers,
		ledger:    ledger,
		turns:     turns,
		opts:      opts,
		logger:    logger,
	}
}

// Route runs the gate → quota → dispatch → record pipeline for one
// interpretation. Usage is recorded only for delivered output: a failed or
// cancelled generation consumes no quota.
func (r *Router) Route(ctx context.Context, req Request) *models.Outcome {
	interp := req.Interpretation
	capability := interp.Intent

	if interp.NeedsClarification {
		return &models.Outcome{
			Kind:        models.OutcomeClarification,
			Capability:  capability,
			DisplayText: "I need a little more detail before I can create this.",
		}
	}

	// Tier gate comes before any quota lookup: a gated capability reports
	// the upgrade path, not a quota number.
	if !req.Tier.Allows(capability) {
		minTier := models.MinimumTier(capability)
		return &models.Outcome{
			Kind:       models.OutcomeUpgradeRequired,
			Capability: capability,
			Reason: fmt.Sprintf("%s generation is available from the %s plan. Upgrade to unlock it.",
				capabilityNoun(capability), titleCase(minTier.String())),
		}
	}

	status := r.ledger.Check(ctx, req.UserID, capability, req.Tier)
	if !status.Allowed {
		return &models.Outcome{
			Kind:       models.OutcomeQuotaExceeded,
			Capability: capability,
			Used:       status.Used,
			Limit:      status.Limit,
			Reason: fmt.Sprintf("You've used all %d of today's %s generations. Your quota resets at midnight UTC.",
				status.Limit, capabilityNoun(capability)),
		}
	}

	// Token spend only accrues on the chat pathway, so only chat hits the
	// monthly budget gate.
	if capability == models.CapabilityChat {
		tokens := r.ledger.CheckTokens(ctx, req.UserID, req.Tier)
		if !tokens.Allowed {
			return &models.Outcome{
				Kind:       models.OutcomeQuotaExceeded,
				Capability: capability,
				Used:       tokens.Used,
				Limit:      tokens.Budget,
				Reason:     "You've used this month's token budget. It resets on the first of the month.",
			}
		}
	}

	prompt := interp.EnhancedPrompt
	params := extractParams(capability, req.RawMessage)

	// Edits regenerate against the prior artifact; resolve its URL so the
	// pathway can look at what it is editing.
	if capability == models.CapabilityImageEdit {
		params.SourceImageURL = r.priorImageURL(ctx, req.ThreadID)
	}

	// A tweak like "make the voice deeper" reuses the prior artifact's
	// source text combined with the new modifier instead of generating
	// from the bare follow-up.
	if capability.IsMedia() && isModification(req.RawMessage) {
		if prior := r.priorPrompt(ctx, req.ThreadID, capability); prior != "" {
			prompt = fmt.Sprintf("%s\n\nApply this change: %s", prior, req.RawMessage)
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, r.opts.GenerationTimeout)
	defer cancel()

	var outcome *models.Outcome
	if capability == models.CapabilityChat {
		outcome = r.dispatchChat(genCtx, interp, prompt)
	} else {
		outcome = r.dispatchMedia(genCtx, capability, interp.SuggestedModel, prompt, params)
	}

	if outcome.Kind == models.OutcomeSuccess {
		// Record only after delivery; ctx rather than genCtx so a
		// generation finishing near the timeout still gets billed.
		r.ledger.Record(ctx, req.UserID, capability, outcome.Tokens, map[string]string{
			"model":  interp.SuggestedModel,
			"thread": req.ThreadID,
		})
	}
	return outcome
}

// dispatchChat runs the chat pathway with exactly one retry against the
// fixed fallback model.
func (r *Router) dispatchChat(ctx context.Context, interp *models.Interpretation, prompt string) *models.Outcome {
	messages := []generation.ChatMessage{
		{Role: string(models.RoleUser), Content: prompt},
	}

	result, err := r.providers.Chat.Complete(ctx, interp.SuggestedModel, messages)
	if err != nil {
		r.logger.Warn("Chat generation failed, retrying on fallback model",
			zap.String("model", interp.SuggestedModel),
			zap.Error(err))
		result, err = r.providers.Chat.Complete(ctx, r.opts.FallbackChatModel, messages)
	}
	if err != nil {
		r.logger.Error("Chat generation failed on fallback model", zap.Error(err))
		return &models.Outcome{
			Kind:        models.OutcomeFailed,
			Capability:  models.CapabilityChat,
			DisplayText: "Sorry, I couldn't generate a response just now. Please try again.",
		}
	}

	content := sanitizeOutput(result.Content)
	return &models.Outcome{
		Kind:        models.OutcomeSuccess,
		Capability:  models.CapabilityChat,
		Content:     content,
		DisplayText: content,
		Tokens:      result.Tokens,
	}
}

// dispatchMedia runs a media pathway with no retries; media failures
// surface immediately with a capability-flavored message.
func (r *Router) dispatchMedia(ctx context.Context, capability models.Capability, modelID, prompt string, params generation.MediaParams) *models.Outcome {
	provider, ok := r.providers.Media[capability]
	if !ok {
		r.logger.Error("No provider configured for capability",
			zap.String("capability", capability.String()))
		return &models.Outcome{
			Kind:        models.OutcomeFailed,
			Capability:  capability,
			DisplayText: fmt.Sprintf("%s generation isn't available right now.", titleCase(capabilityNoun(capability))),
		}
	}

	artifact, err := provider.Generate(ctx, modelID, prompt, params)
	if err != nil {
		r.logger.Error("Media generation failed",
			zap.String("capability", capability.String()),
			zap.String("model", modelID),
			zap.Error(err))
		return &models.Outcome{
			Kind:       models.OutcomeFailed,
			Capability: capability,
			DisplayText: fmt.Sprintf("Sorry, your %s couldn't be created. Please try again in a moment.",
				capabilityNoun(capability)),
		}
	}

	return &models.Outcome{
		Kind:        models.OutcomeSuccess,
		Capability:  capability,
		ArtifactURL: artifact.URL,
		Content:     sanitizeOutput(artifact.Content),
		DisplayText: fmt.Sprintf("Here's your %s!", capabilityNoun(capability)),
	}
}

// priorPrompt finds the source text of the latest prior turn of the same
// capability, for modification follow-ups.
func (r *Router) priorPrompt(ctx context.Context, threadID string, capability models.Capability) string {
	turn, err := r.turns.LatestTurnByTask(ctx, threadID, models.RoleUser, capability.String())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("Failed to look up prior turn", zap.Error(err))
		}
		return ""
	}
	return turn.Content
}

// priorImageURL finds the newest image artifact in the thread, whether it
// came from a generation or an earlier edit.
func (r *Router) priorImageURL(ctx context.Context, threadID string) string {
	var newest *models.Message
	for _, task := range []models.Capability{models.CapabilityImage, models.CapabilityImageEdit} {
		turn, err := r.turns.LatestTurnByTask(ctx, threadID, models.RoleAssistant, task.String())
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				r.logger.Warn("Failed to look up prior image turn", zap.Error(err))
			}
			continue
		}
		if turn.MediaURL == "" {
			continue
		}
		if newest == nil || turn.Timestamp.After(newest.Timestamp) {
			newest = turn
		}
	}
	if newest == nil {
		return ""
	}
	return newest.MediaURL
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func capabilityNoun(c models.Capability) string {
	switch c {
	case models.CapabilityImage:
		return "image"
	case models.CapabilityImageEdit:
		return "image edit"
	case models.CapabilityVideo:
		return "video"
	case models.CapabilityPPT:
		return "presentation"
	case models.CapabilityTTS:
		return "audio"
	case models.CapabilityMusic:
		return "track"
	default:
		return "response"
	}
}
