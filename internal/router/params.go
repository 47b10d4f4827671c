package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/velora-ai/velora/internal/generation"
	"github.com/velora-ai/velora/internal/models"
)

const (
	minSlides = 3
	maxSlides = 20
)

var slideCountPattern = regexp.MustCompile(`(\d+)[\s-]*slides?`)

// extractParams pulls capability-specific knobs out of the raw user text:
// aspect ratio words, a voice choice, an "N slides" count, a music genre.
func extractParams(capability models.Capability, text string) generation.MediaParams {
	t := strings.ToLower(text)
	params := generation.MediaParams{}

	switch {
	case strings.Contains(t, "landscape") || strings.Contains(t, "widescreen") || strings.Contains(t, "16:9"):
		params.AspectRatio = "16:9"
	case strings.Contains(t, "portrait") || strings.Contains(t, "vertical") || strings.Contains(t, "9:16"):
		params.AspectRatio = "9:16"
	case strings.Contains(t, "square"):
		params.AspectRatio = "1:1"
	}

	if capability == models.CapabilityTTS {
		params.Voice = selectVoice(t)
	}

	if capability == models.CapabilityPPT {
		params.SlideCount = extractSlideCount(t)
	}

	if capability == models.CapabilityMusic {
		params.Genre = extractGenre(t)
	}

	return params
}

// selectVoice maps voice-descriptive words to a gateway voice id.
func selectVoice(t string) string {
	// "female voice" contains "male voice" as a substring, so the female
	// case must be checked first.
	switch {
	case strings.Contains(t, "female") || strings.Contains(t, "woman"):
		return "nova"
	case strings.Contains(t, "deeper") || strings.Contains(t, "deep voice") || strings.Contains(t, "male voice"):
		return "onyx"
	case strings.Contains(t, "softer") || strings.Contains(t, "gentle") || strings.Contains(t, "calm"):
		return "shimmer"
	case strings.Contains(t, "british") || strings.Contains(t, "narrator"):
		return "fable"
	default:
		return "alloy"
	}
}

// extractSlideCount parses an "N slides" request, clamped to a sane range.
// Zero means the caller should use its default deck length.
func extractSlideCount(t string) int {
	m := slideCountPattern.FindStringSubmatch(t)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if n < minSlides {
		return minSlides
	}
	if n > maxSlides {
		return maxSlides
	}
	return n
}

var knownGenres = []string{
	"jazz", "rock", "pop", "classical", "lo-fi", "lofi", "hip hop",
	"electronic", "ambient", "acoustic", "folk", "funk", "blues",
}

func extractGenre(t string) string {
	for _, g := range knownGenres {
		if strings.Contains(t, g) {
			return g
		}
	}
	return ""
}

// modificationPhrases mark a follow-up that tweaks the previous artifact
// instead of asking for a new one.
var modificationPhrases = []string{
	"make it", "make the", "change it", "change the", "turn it",
	"instead", "a bit more", "slightly", "redo it", "try again with",
	"same but", "but with", "but in",
}

// isModification reports whether the message reads as a tweak to a prior
// generation rather than a fresh request.
func isModification(text string) bool {
	t := strings.ToLower(text)
	for _, p := range modificationPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
