package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedVision struct {
	content string
	err     error
	urls    []string
}

func (v *scriptedVision) CompleteWithImages(ctx context.Context, messages []ChatMessage, imageURLs []string) (*ChatResult, error) {
	v.urls = append(v.urls, imageURLs...)
	if v.err != nil {
		return nil, v.err
	}
	return &ChatResult{Content: v.content}, nil
}

type recordingImages struct {
	url     string
	err     error
	prompts []string
	params  []MediaParams
}

func (m *recordingImages) Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error) {
	m.prompts = append(m.prompts, prompt)
	m.params = append(m.params, params)
	if m.err != nil {
		return nil, m.err
	}
	return &Artifact{URL: m.url}, nil
}

func TestImageEditDescribesSourceImage(t *testing.T) {
	vision := &scriptedVision{content: "A ginger cat on a windowsill, soft morning light."}
	images := &recordingImages{url: "https://cdn.example.com/edit.png"}
	e := NewImageEditor(vision, images, zap.NewNop())

	artifact, err := e.Generate(context.Background(), "dall-e-3", "make the cat black",
		MediaParams{SourceImageURL: "https://cdn.example.com/cat.png"})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/edit.png", artifact.URL)
	assert.Equal(t, []string{"https://cdn.example.com/cat.png"}, vision.urls,
		"the source artifact reaches the vision pathway")
	require.Len(t, images.prompts, 1)
	assert.Contains(t, images.prompts[0], "A ginger cat on a windowsill")
	assert.Contains(t, images.prompts[0], "Apply this edit: make the cat black")
}

func TestImageEditWithoutSourceGeneratesFromPrompt(t *testing.T) {
	vision := &scriptedVision{content: "unused"}
	images := &recordingImages{url: "https://cdn.example.com/edit.png"}
	e := NewImageEditor(vision, images, zap.NewNop())

	_, err := e.Generate(context.Background(), "dall-e-3", "remove the background", MediaParams{})
	require.NoError(t, err)

	assert.Empty(t, vision.urls, "no source image means no vision call")
	require.Len(t, images.prompts, 1)
	assert.Equal(t, "remove the background", images.prompts[0])
}

func TestImageEditDegradesWhenVisionFails(t *testing.T) {
	vision := &scriptedVision{err: errors.New("all vision models failed")}
	images := &recordingImages{url: "https://cdn.example.com/edit.png"}
	e := NewImageEditor(vision, images, zap.NewNop())

	artifact, err := e.Generate(context.Background(), "dall-e-3", "remove the background",
		MediaParams{SourceImageURL: "https://cdn.example.com/cat.png"})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/edit.png", artifact.URL)
	require.Len(t, images.prompts, 1)
	assert.Equal(t, "remove the background", images.prompts[0],
		"a failed description falls back to the bare edit prompt")
}

func TestImageEditSurfacesGenerationFailure(t *testing.T) {
	vision := &scriptedVision{content: "a cat"}
	images := &recordingImages{err: errors.New("image generation failed")}
	e := NewImageEditor(vision, images, zap.NewNop())

	_, err := e.Generate(context.Background(), "dall-e-3", "make it blue",
		MediaParams{SourceImageURL: "https://cdn.example.com/cat.png"})
	assert.Error(t, err)
}
