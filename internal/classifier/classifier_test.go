package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velora-ai/velora/internal/models"
)

func TestClassify(t *testing.T) {
	local := NewLocal()

	tests := []struct {
		name    string
		text    string
		want    models.Capability
		matched bool
	}{
		{"logo request", "create a logo for my coffee shop", models.CapabilityImage, true},
		{"picture request", "a picture of a mountain lake", models.CapabilityImage, true},
		{"video request", "generate a video of a sunset", models.CapabilityVideo, true},
		{"animation", "animate my product mascot", models.CapabilityVideo, true},
		{"slide deck", "build a slide deck about our roadmap", models.CapabilityPPT, true},
		{"pitch deck", "I need a pitch deck for investors", models.CapabilityPPT, true},
		{"song request", "write a song about summer", models.CapabilityMusic, true},
		{"background music", "some background music for my cafe", models.CapabilityMusic, true},
		{"narration", "narrate this paragraph for me", models.CapabilityTTS, true},
		{"read aloud", "read this aloud in a calm tone", models.CapabilityTTS, true},
		{"plain chat", "what should I name my business?", "", false},
		{"greeting", "hello", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := local.Classify(tt.text)
			assert.Equal(t, tt.matched, matched)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// Speech patterns outrank slide patterns, which outrank the rest, so a
// message matching two groups resolves deterministically.
func TestClassifyPriorityOrder(t *testing.T) {
	local := NewLocal()

	got, matched := local.Classify("narrate the presentation for me")
	assert.True(t, matched)
	assert.Equal(t, models.CapabilityTTS, got)

	got, matched = local.Classify("a presentation with a picture of our office")
	assert.True(t, matched)
	assert.Equal(t, models.CapabilityPPT, got)
}

func TestClassifyIsDeterministic(t *testing.T) {
	local := NewLocal()
	text := "make a video of a dancing robot"

	first, _ := local.Classify(text)
	for i := 0; i < 10; i++ {
		got, _ := local.Classify(text)
		assert.Equal(t, first, got)
	}
}

func TestIsTrivial(t *testing.T) {
	local := NewLocal()

	tests := []struct {
		text string
		want bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"thanks", true},
		{"good morning", true},
		{"sounds good", true},
		{"ok cool", true},
		{"create a logo for my coffee shop", false},
		{"draw a cat", false},
		{"what is seo?", false},
		{"hi?", false},
		{"can you help me plan a product launch for next month", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, local.IsTrivial(tt.text))
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    models.Capability
		matched bool
	}{
		{"powerpoint forces ppt", "turn this into a PowerPoint", models.CapabilityPPT, true},
		{"pitch deck forces ppt", "a pitch deck please", models.CapabilityPPT, true},
		{"female voice forces tts", "use a female voice instead", models.CapabilityTTS, true},
		{"deeper voice forces tts", "make the voice deeper", models.CapabilityTTS, true},
		{"background edit forces image_edit", "remove the background from the photo", models.CapabilityImageEdit, true},
		{"no signal", "tell me a joke", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := ApplyOverrides(tt.text)
			assert.Equal(t, tt.matched, matched)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// Voice rules carry a higher priority than slide rules, so a message
// matching both resolves to tts.
func TestOverridePriority(t *testing.T) {
	got, matched := ApplyOverrides("use a deeper voice for the powerpoint narration")
	assert.True(t, matched)
	assert.Equal(t, models.CapabilityTTS, got)
}
