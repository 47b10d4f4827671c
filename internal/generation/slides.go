package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Slide is one slide of a generated deck.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes,omitempty"`
}

// SlideSerializer turns structured slides into a downloadable deck file.
// The file format is out of scope here; the serializer is consumed as a
// black box that returns the artifact URL.
type SlideSerializer interface {
	Serialize(ctx context.Context, title string, slides []Slide) (string, error)
}

// SlidesProvider builds a deck outline with a chat model, then hands the
// structured slides to the serializer.
type SlidesProvider struct {
	chat       ChatProvider
	serializer SlideSerializer
	logger     *zap.Logger
}

func NewSlidesProvider(chat ChatProvider, serializer SlideSerializer, logger *zap.Logger) *SlidesProvider {
	return &SlidesProvider{chat: chat, serializer: serializer, logger: logger}
}

type deckOutline struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

func (p *SlidesProvider) Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error) {
	slideCount := params.SlideCount
	if slideCount == 0 {
		slideCount = 8
	}

	outlinePrompt := fmt.Sprintf(`Create a %d-slide presentation outline for the request below.
Return only a JSON object with this structure:
{
  "title": "deck title",
  "slides": [{"title": "slide title", "bullets": ["point"], "notes": "speaker notes"}]
}

Request: %s`, slideCount, prompt)

	result, err := p.chat.Complete(ctx, modelID, []ChatMessage{
		{Role: "user", Content: outlinePrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("deck outline generation failed: %w", err)
	}

	var outline deckOutline
	raw := extractJSON(result.Content)
	if err := json.Unmarshal([]byte(raw), &outline); err != nil {
		return nil, fmt.Errorf("deck outline was not valid JSON: %w", err)
	}
	if len(outline.Slides) == 0 {
		return nil, fmt.Errorf("deck outline contained no slides")
	}
	if len(outline.Slides) > slideCount {
		outline.Slides = outline.Slides[:slideCount]
	}

	url, err := p.serializer.Serialize(ctx, outline.Title, outline.Slides)
	if err != nil {
		return nil, fmt.Errorf("deck serialization failed: %w", err)
	}
	return &Artifact{URL: url}, nil
}

// extractJSON strips markdown code fences and surrounding prose so a chatty
// model response still parses.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
