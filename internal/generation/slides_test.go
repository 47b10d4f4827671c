package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedChat struct {
	content string
	err     error
	prompts []string
}

func (s *scriptedChat) Complete(ctx context.Context, modelID string, messages []ChatMessage) (*ChatResult, error) {
	s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResult{Content: s.content}, nil
}

type recordingSerializer struct {
	url    string
	err    error
	title  string
	slides []Slide
}

func (r *recordingSerializer) Serialize(ctx context.Context, title string, slides []Slide) (string, error) {
	r.title = title
	r.slides = slides
	if r.err != nil {
		return "", r.err
	}
	return r.url, nil
}

const outlineJSON = `{
	"title": "Beanhouse Investor Pitch",
	"slides": [
		{"title": "The Problem", "bullets": ["Coffee is rushed"], "notes": "open warm"},
		{"title": "Our Roast", "bullets": ["Slow-roasted", "Single origin"]},
		{"title": "The Ask", "bullets": ["Seed round"]}
	]
}`

func TestSlidesGenerate(t *testing.T) {
	chat := &scriptedChat{content: outlineJSON}
	ser := &recordingSerializer{url: "https://cdn.example.com/deck.pptx"}
	p := NewSlidesProvider(chat, ser, zap.NewNop())

	artifact, err := p.Generate(context.Background(), "gpt-4o", "an investor pitch for my cafe", MediaParams{SlideCount: 5})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/deck.pptx", artifact.URL)
	assert.Equal(t, "Beanhouse Investor Pitch", ser.title)
	require.Len(t, ser.slides, 3)
	assert.Equal(t, "The Problem", ser.slides[0].Title)
	require.Len(t, chat.prompts, 1)
	assert.True(t, strings.Contains(chat.prompts[0], "5-slide"), "the requested count reaches the outline prompt")
}

func TestSlidesGenerateDefaultsToEightSlides(t *testing.T) {
	chat := &scriptedChat{content: outlineJSON}
	ser := &recordingSerializer{url: "https://cdn.example.com/deck.pptx"}
	p := NewSlidesProvider(chat, ser, zap.NewNop())

	_, err := p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{})
	require.NoError(t, err)
	assert.Contains(t, chat.prompts[0], "8-slide")
}

func TestSlidesGenerateTruncatesOversizedOutline(t *testing.T) {
	chat := &scriptedChat{content: outlineJSON}
	ser := &recordingSerializer{url: "https://cdn.example.com/deck.pptx"}
	p := NewSlidesProvider(chat, ser, zap.NewNop())

	_, err := p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{SlideCount: 2})
	require.NoError(t, err)
	assert.Len(t, ser.slides, 2, "the model overshooting the count is trimmed, not an error")
}

func TestSlidesGenerateParsesFencedJSON(t *testing.T) {
	chat := &scriptedChat{content: "Sure! Here's the outline:\n```json\n" + outlineJSON + "\n```"}
	ser := &recordingSerializer{url: "https://cdn.example.com/deck.pptx"}
	p := NewSlidesProvider(chat, ser, zap.NewNop())

	_, err := p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{})
	require.NoError(t, err)
	assert.Equal(t, "Beanhouse Investor Pitch", ser.title)
}

func TestSlidesGenerateSurfacesFailures(t *testing.T) {
	ser := &recordingSerializer{url: "unused"}
	p := NewSlidesProvider(&scriptedChat{err: errors.New("gateway down")}, ser, zap.NewNop())
	_, err := p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{})
	assert.Error(t, err)

	p = NewSlidesProvider(&scriptedChat{content: "not json at all"}, ser, zap.NewNop())
	_, err = p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{})
	assert.Error(t, err)

	p = NewSlidesProvider(&scriptedChat{content: `{"title":"Empty","slides":[]}`}, ser, zap.NewNop())
	_, err = p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{})
	assert.Error(t, err)

	p = NewSlidesProvider(&scriptedChat{content: outlineJSON}, &recordingSerializer{err: errors.New("disk full")}, zap.NewNop())
	_, err = p.Generate(context.Background(), "gpt-4o", "a pitch", MediaParams{})
	assert.Error(t, err)
}
