package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velora-ai/velora/internal/models"
)

func TestExtractParamsAspectRatio(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"landscape word", "a landscape photo of the bay", "16:9"},
		{"explicit 16:9", "render it in 16:9 please", "16:9"},
		{"portrait word", "a vertical poster for stories", "9:16"},
		{"square word", "a square profile picture", "1:1"},
		{"no hint", "a picture of my dog", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := extractParams(models.CapabilityImage, tt.text)
			assert.Equal(t, tt.want, params.AspectRatio)
		})
	}
}

func TestSelectVoice(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"read it with a deeper voice", "onyx"},
		{"use a male voice", "onyx"},
		{"a female voice please", "nova"},
		{"something softer and calm", "shimmer"},
		{"a british narrator feel", "fable"},
		{"just read this aloud", "alloy"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, selectVoice(tt.text))
		})
	}
}

func TestExtractSlideCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain count", "a deck with 12 slides", 12},
		{"hyphenated", "a 10-slide pitch", 10},
		{"clamped low", "just 1 slide", 3},
		{"clamped high", "give me 50 slides", 20},
		{"no count", "a pitch deck for investors", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSlideCount(tt.text))
		})
	}
}

func TestExtractGenre(t *testing.T) {
	params := extractParams(models.CapabilityMusic, "some lo-fi background music for the cafe")
	assert.Equal(t, "lo-fi", params.Genre)

	params = extractParams(models.CapabilityMusic, "an upbeat anthem")
	assert.Empty(t, params.Genre)
}

// Voice extraction only applies to speech; aspect ratio only matters where
// the capability accepts one.
func TestParamsAreCapabilityScoped(t *testing.T) {
	params := extractParams(models.CapabilityImage, "a deeper voice for the square logo")
	assert.Empty(t, params.Voice)
	assert.Equal(t, "1:1", params.AspectRatio)
}

func TestIsModification(t *testing.T) {
	assert.True(t, isModification("make it brighter"))
	assert.True(t, isModification("same but with a red background"))
	assert.True(t, isModification("redo it in jazz style"))
	assert.False(t, isModification("a poster for the grand opening"))
	assert.False(t, isModification("what time is it"))
}
