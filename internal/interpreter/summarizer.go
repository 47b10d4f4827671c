package interpreter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/generation"
	"github.com/velora-ai/velora/internal/models"
)

// Condensed is the bounded view of a conversation: at most maxRecent
// verbatim messages plus an optional prose summary of everything older.
type Condensed struct {
	Recent  []*models.Message
	Summary string
}

// Summarizer compresses conversation history that has outgrown the recent
// window. Summarization failures degrade to the recent window alone; losing
// old detail beats failing the turn.
type Summarizer struct {
	chat    generation.ChatProvider
	modelID string
	logger  *zap.Logger
}

func NewSummarizer(chat generation.ChatProvider, modelID string, logger *zap.Logger) *Summarizer {
	return &Summarizer{chat: chat, modelID: modelID, logger: logger}
}

// Condense returns the history unchanged when it fits within maxRecent;
// otherwise the oldest excess is compressed into one remote-generated
// summary and only the most recent maxRecent messages are kept verbatim.
func (s *Summarizer) Condense(ctx context.Context, history []*models.Message, maxRecent int) Condensed {
	if maxRecent <= 0 || len(history) <= maxRecent {
		return Condensed{Recent: history}
	}

	excess := history[:len(history)-maxRecent]
	recent := history[len(history)-maxRecent:]

	summary, err := s.summarize(ctx, excess)
	if err != nil {
		s.logger.Warn("History summarization failed, dropping oldest messages",
			zap.Int("dropped", len(excess)),
			zap.Error(err))
		return Condensed{Recent: recent}
	}
	return Condensed{Recent: recent, Summary: summary}
}

func (s *Summarizer) summarize(ctx context.Context, excess []*models.Message) (string, error) {
	var transcript strings.Builder
	for _, m := range excess {
		transcript.WriteString(string(m.Role))
		transcript.WriteString(": ")
		transcript.WriteString(m.Content)
		transcript.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Summarize the conversation below in a few sentences. Keep every business fact, stated goal, decision made, and asset created (with what it was). Drop pleasantries.

%s`, transcript.String())

	result, err := s.chat.Complete(ctx, s.modelID, []generation.ChatMessage{
		{Role: string(models.RoleUser), Content: prompt},
	})
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(result.Content)
	if summary == "" {
		return "", fmt.Errorf("summarizer returned empty summary")
	}
	return summary, nil
}
