// Package interpreter turns a raw user message into a structured
// interpretation: which capability it maps to, how complex it is, which
// downstream model should serve it, and the rewritten prompt to send there.
package interpreter

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/classifier"
	"github.com/velora-ai/velora/internal/generation"
	"github.com/velora-ai/velora/internal/models"
)

// Options tune the interpreter's thresholds and timeouts.
type Options struct {
	// Model is the gateway model used for the classification call.
	Model string
	// ConfidenceThreshold gates clarification: below it the turn pauses
	// for user input.
	ConfidenceThreshold float64
	// MaxRecent bounds the verbatim history window fed to the remote call.
	MaxRecent int
	// Timeout bounds the remote classification call.
	Timeout time.Duration
}

// DefaultOptions mirror the production configuration defaults.
func DefaultOptions() Options {
	return Options{
		Model:               "gpt-4o-mini",
		ConfidenceThreshold: 0.6,
		MaxRecent:           35,
		Timeout:             15 * time.Second,
	}
}

// Request is one interpretation request: the new message plus everything
// the decision depends on.
type Request struct {
	ThreadID string
	Message  string
	History  []*models.Message
	Context  *models.ConversationContext
	Tier     models.Tier
	// ForceCapability is set when the user explicitly picked a mode; it
	// always wins over remote and local classification.
	ForceCapability models.Capability
	WebResearch     bool
}

// Interpreter is the per-turn decision engine.
type Interpreter struct {
	chat       generation.ChatProvider
	local      *classifier.Local
	summarizer *Summarizer
	opts       Options
	logger     *zap.Logger
}

func New(chat generation.ChatProvider, local *classifier.Local, summarizer *Summarizer, opts Options, logger *zap.Logger) *Interpreter {
	if opts.Model == "" {
		opts.Model = DefaultOptions().Model
	}
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = DefaultOptions().ConfidenceThreshold
	}
	if opts.MaxRecent == 0 {
		opts.MaxRecent = DefaultOptions().MaxRecent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Interpreter{
		chat:       chat,
		local:      local,
		summarizer: summarizer,
		opts:       opts,
		logger:     logger,
	}
}

// Interpret produces the interpretation for one user turn. It never returns
// an error: remote failures collapse into the default interpretation so a
// flaky classification call can never fail a turn.
func (i *Interpreter) Interpret(ctx context.Context, req Request) *models.Interpretation {
	// Fast path: trivially simple chat skips the remote call entirely. The
	// research toggle disables it; a turn the user wants grounded in fresh
	// sources always runs the full pipeline.
	if req.ForceCapability == "" && !req.WebResearch && i.local.IsTrivial(req.Message) {
		return i.fastPath(req)
	}

	interp := i.remoteInterpret(ctx, req)

	// Safety net: the local classifier may override a remote chat verdict,
	// never a non-chat one.
	if interp.Intent == models.CapabilityChat {
		if cap, ok := i.local.Classify(req.Message); ok {
			i.logger.Debug("Local classifier overrode remote chat verdict",
				zap.String("capability", cap.String()))
			interp.Intent = cap
		}
	}

	// Product keyword rules fire after the local override and win over it.
	if cap, ok := classifier.ApplyOverrides(req.Message); ok {
		interp.Intent = cap
	}

	// An explicit mode choice by the user beats everything.
	if req.ForceCapability != "" {
		interp.Intent = req.ForceCapability
		interp.NeedsClarification = false
		interp.ClarifyingQuestions = nil
	}

	if interp.Confidence < i.opts.ConfidenceThreshold && !interp.NeedsClarification && req.ForceCapability == "" {
		interp.NeedsClarification = true
		interp.ClarifyingQuestions = append(interp.ClarifyingQuestions, models.ClarifyingQuestion{
			ID:       "refine_request",
			Question: "Could you tell me a bit more about what you'd like me to create?",
			Required: true,
		})
	}

	// The model table is authoritative regardless of what the remote
	// interpreter suggested; recompute after all intent overrides. A
	// default interpretation that stayed chat keeps the fallback model.
	if interp.SuggestedModel == "" || interp.Intent != models.CapabilityChat {
		interp.SuggestedModel = SelectModel(interp.Intent, interp.Complexity, req.Tier)
	}
	if interp.StatusMessage == "" {
		interp.StatusMessage = models.StatusLabel(interp.Intent, models.PhaseGenerating)
	}
	// A research turn reports the researching phase while the downstream
	// call gathers and grounds its answer.
	if req.WebResearch {
		interp.StatusMessage = models.StatusLabel(interp.Intent, models.PhaseResearching)
	}
	if interp.EnhancedPrompt == "" {
		interp.EnhancedPrompt = req.Message
	}
	return interp
}

// fastPath builds a chat interpretation without any remote call. It must
// stay behaviorally equivalent to what the slow path would decide for the
// same trivially simple input.
func (i *Interpreter) fastPath(req Request) *models.Interpretation {
	complexity := models.ComplexitySimple
	return &models.Interpretation{
		Intent:         models.CapabilityChat,
		Confidence:     1.0,
		EnhancedPrompt: req.Message,
		Complexity:     complexity,
		SuggestedModel: SelectModel(models.CapabilityChat, complexity, req.Tier),
		StatusMessage:  models.StatusLabel(models.CapabilityChat, models.PhaseGenerating),
	}
}

// remoteResponse is the strict JSON contract of the classification call.
type remoteResponse struct {
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	EnhancedPrompt string  `json:"enhanced_prompt"`
	Complexity     string  `json:"complexity"`
	ContextUpdates struct {
		LongTerm  *models.LongTermContext  `json:"long_term"`
		ShortTerm *models.ShortTermContext `json:"short_term"`
	} `json:"context_updates"`
	Assumptions         []models.Assumption         `json:"assumptions"`
	NeedsClarification  bool                        `json:"needs_clarification"`
	ClarifyingQuestions []models.ClarifyingQuestion `json:"clarifying_questions"`
	StatusMessage       string                      `json:"status_message"`
}

func (i *Interpreter) remoteInterpret(ctx context.Context, req Request) *models.Interpretation {
	ctx, cancel := context.WithTimeout(ctx, i.opts.Timeout)
	defer cancel()

	condensed := i.summarizer.Condense(ctx, req.History, i.opts.MaxRecent)

	result, err := i.chat.Complete(ctx, i.opts.Model, []generation.ChatMessage{
		{Role: string(models.RoleSystem), Content: classificationSystemPrompt},
		{Role: string(models.RoleUser), Content: buildUserPrompt(req.Context, condensed, req.Tier, req.Message)},
	})
	if err != nil {
		i.logger.Error("Remote interpretation failed", zap.Error(err))
		return i.defaultInterpretation(req)
	}

	var parsed remoteResponse
	raw := extractJSON(result.Content)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		i.logger.Error("Failed to parse interpretation response",
			zap.Error(err),
			zap.String("response", result.Content))
		return i.defaultInterpretation(req)
	}

	intent, ok := models.ParseCapability(parsed.Intent)
	if !ok {
		intent = models.CapabilityChat
	}
	confidence := parsed.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0.7
	}
	interp := &models.Interpretation{
		Intent:              intent,
		Confidence:          confidence,
		EnhancedPrompt:      parsed.EnhancedPrompt,
		Complexity:          models.ParseComplexity(parsed.Complexity),
		Assumptions:         parsed.Assumptions,
		NeedsClarification:  parsed.NeedsClarification,
		ClarifyingQuestions: parsed.ClarifyingQuestions,
		StatusMessage:       parsed.StatusMessage,
	}
	if parsed.ContextUpdates.LongTerm != nil {
		interp.ContextUpdates.LongTerm = parsed.ContextUpdates.LongTerm
	}
	if parsed.ContextUpdates.ShortTerm != nil {
		interp.ContextUpdates.ShortTerm = parsed.ContextUpdates.ShortTerm
	}
	return interp
}

// defaultInterpretation is the recovery path for any classification
// failure: treat the turn as medium chat on the fallback model.
func (i *Interpreter) defaultInterpretation(req Request) *models.Interpretation {
	return &models.Interpretation{
		Intent:         models.CapabilityChat,
		Confidence:     0.7,
		EnhancedPrompt: req.Message,
		Complexity:     models.ComplexityMedium,
		SuggestedModel: FallbackChatModel,
		StatusMessage:  models.StatusLabel(models.CapabilityChat, models.PhaseGenerating),
	}
}

// extractJSON strips code fences and surrounding prose from a model
// response so strict parsing still succeeds on slightly chatty output.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
