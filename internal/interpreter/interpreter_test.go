package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/classifier"
	"github.com/velora-ai/velora/internal/generation"
	"github.com/velora-ai/velora/internal/models"
)

// fakeChat scripts the remote interpreter: it returns responses in order
// and counts calls.
type fakeChat struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeChat) Complete(ctx context.Context, modelID string, messages []generation.ChatMessage) (*generation.ChatResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return &generation.ChatResult{Content: f.responses[idx], Tokens: 42}, nil
}

func remoteJSON(t *testing.T, intent string, confidence float64, extra map[string]any) string {
	t.Helper()
	payload := map[string]any{
		"intent":          intent,
		"confidence":      confidence,
		"enhanced_prompt": "enhanced",
		"complexity":      "medium",
		"status_message":  "Working on it...",
	}
	for k, v := range extra {
		payload[k] = v
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(b)
}

func newTestInterpreter(chat generation.ChatProvider) *Interpreter {
	logger := zap.NewNop()
	return New(chat, classifier.NewLocal(), NewSummarizer(chat, "gpt-4o-mini", logger), DefaultOptions(), logger)
}

func TestFastPathSkipsRemoteCall(t *testing.T) {
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{Message: "hi", Tier: models.TierFree})

	assert.Equal(t, models.CapabilityChat, interp.Intent)
	assert.Equal(t, 1.0, interp.Confidence)
	assert.Equal(t, models.ComplexitySimple, interp.Complexity)
	assert.NotEmpty(t, interp.SuggestedModel)
	assert.Zero(t, chat.calls, "fast path must not issue a remote call")
}

// The fast path and slow path agree on intent for trivially simple input.
func TestFastPathEquivalence(t *testing.T) {
	slow := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.95, nil)}}
	i := newTestInterpreter(slow)

	fast := i.Interpret(context.Background(), Request{Message: "hi", Tier: models.TierFree})
	viaRemote := i.remoteInterpret(context.Background(), Request{Message: "hi", Tier: models.TierFree})

	assert.Equal(t, viaRemote.Intent, fast.Intent)
}

func TestWebResearchDisablesFastPath(t *testing.T) {
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message:     "hi",
		Tier:        models.TierFree,
		WebResearch: true,
	})

	assert.Equal(t, 1, chat.calls, "a research turn always runs the full pipeline")
	assert.Equal(t, models.StatusLabel(models.CapabilityChat, models.PhaseResearching), interp.StatusMessage)
}

func TestWebResearchReportsResearchingStatus(t *testing.T) {
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message:     "what changed in the EU AI act this year",
		Tier:        models.TierPro,
		WebResearch: true,
	})

	assert.Equal(t, "Researching...", interp.StatusMessage,
		"the research toggle overrides the remote status line")
}

func TestLocalOverrideOnlyFiresOnChatVerdict(t *testing.T) {
	// Remote says chat, local patterns say video: local wins.
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "please generate a video of a sunset over the ocean",
		Tier:    models.TierPro,
	})
	assert.Equal(t, models.CapabilityVideo, interp.Intent)

	// Remote says image, local patterns say video: remote verdict stands.
	chat = &fakeChat{responses: []string{remoteJSON(t, "image", 0.9, nil)}}
	i = newTestInterpreter(chat)

	interp = i.Interpret(context.Background(), Request{
		Message: "please generate a video of a sunset over the ocean",
		Tier:    models.TierPro,
	})
	assert.Equal(t, models.CapabilityImage, interp.Intent)
}

func TestKeywordOverrideBeatsLocalClassifier(t *testing.T) {
	// Local patterns read "make a video" as video; the voice-modification
	// phrase is the stronger product signal and wins.
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "make a video of the ad but with a deeper voice",
		Tier:    models.TierPro,
	})
	assert.Equal(t, models.CapabilityTTS, interp.Intent)
}

func TestForceCapabilityAlwaysWins(t *testing.T) {
	chat := &fakeChat{responses: []string{remoteJSON(t, "video", 0.95, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message:         "generate a video of a sunset",
		Tier:            models.TierPremium,
		ForceCapability: models.CapabilityImage,
	})
	assert.Equal(t, models.CapabilityImage, interp.Intent)
}

func TestRemoteFailureFallsBackToDefault(t *testing.T) {
	chat := &fakeChat{err: errors.New("network down")}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "help me write a product launch plan for my bakery",
		Tier:    models.TierStarter,
	})

	assert.Equal(t, models.CapabilityChat, interp.Intent)
	assert.Equal(t, 0.7, interp.Confidence)
	assert.Equal(t, models.ComplexityMedium, interp.Complexity)
	assert.Equal(t, FallbackChatModel, interp.SuggestedModel)
	assert.Equal(t, "Generating response...", interp.StatusMessage)
}

func TestMalformedJSONFallsBackToDefault(t *testing.T) {
	chat := &fakeChat{responses: []string{"sorry, I can't answer in JSON today"}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "help me write a product launch plan for my bakery",
		Tier:    models.TierStarter,
	})

	assert.Equal(t, models.CapabilityChat, interp.Intent)
	assert.Equal(t, 0.7, interp.Confidence)
}

func TestFencedJSONStillParses(t *testing.T) {
	fenced := "```json\n" + remoteJSON(t, "image", 0.9, nil) + "\n```"
	chat := &fakeChat{responses: []string{fenced}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "a watercolor painting of my shop front",
		Tier:    models.TierPro,
	})
	assert.Equal(t, models.CapabilityImage, interp.Intent)
}

func TestLowConfidenceTriggersClarification(t *testing.T) {
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.3, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "do the thing we discussed with the stuff",
		Tier:    models.TierFree,
	})

	assert.True(t, interp.NeedsClarification)
	require.NotEmpty(t, interp.ClarifyingQuestions)
}

// Resubmitting the original message plus answers must not re-ask for the
// same slots once the remote interpreter is satisfied.
func TestClarificationRoundTrip(t *testing.T) {
	chat := &fakeChat{responses: []string{
		remoteJSON(t, "tts", 0.9, map[string]any{
			"needs_clarification": true,
			"clarifying_questions": []map[string]any{
				{"id": "tts_text", "question": "What text should I narrate?", "required": true},
			},
		}),
		remoteJSON(t, "tts", 0.95, nil),
	}}
	i := newTestInterpreter(chat)

	first := i.Interpret(context.Background(), Request{
		Message: "narrate something for my ad",
		Tier:    models.TierPro,
	})
	require.True(t, first.NeedsClarification)

	second := i.Interpret(context.Background(), Request{
		Message: "narrate something for my ad\n\ntts_text: Welcome to Beanhouse, the home of slow-roasted coffee.",
		Tier:    models.TierPro,
	})
	assert.False(t, second.NeedsClarification)
	assert.Empty(t, second.ClarifyingQuestions)
	assert.Equal(t, models.CapabilityTTS, second.Intent)
}

func TestRemoteContextUpdatesCarriedThrough(t *testing.T) {
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, map[string]any{
		"context_updates": map[string]any{
			"long_term":  map[string]any{"business_name": "Beanhouse"},
			"short_term": map[string]any{"current_task": "naming"},
		},
	})}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "my business is called Beanhouse by the way",
		Tier:    models.TierFree,
	})

	require.NotNil(t, interp.ContextUpdates.LongTerm)
	assert.Equal(t, "Beanhouse", interp.ContextUpdates.LongTerm.BusinessName)
	require.NotNil(t, interp.ContextUpdates.ShortTerm)
	assert.Equal(t, "naming", interp.ContextUpdates.ShortTerm.CurrentTask)
}

func TestModelRecomputedAfterOverride(t *testing.T) {
	// Remote says chat; local override flips to video; the suggested
	// model must come from the video table, not the chat table.
	chat := &fakeChat{responses: []string{remoteJSON(t, "chat", 0.9, nil)}}
	i := newTestInterpreter(chat)

	interp := i.Interpret(context.Background(), Request{
		Message: "generate a video of our grand opening",
		Tier:    models.TierPro,
	})

	assert.Equal(t, models.CapabilityVideo, interp.Intent)
	assert.Equal(t, SelectModel(models.CapabilityVideo, models.ComplexityMedium, models.TierPro), interp.SuggestedModel)
}
