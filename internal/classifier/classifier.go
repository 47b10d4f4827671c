package classifier

import (
	"strings"

	"github.com/velora-ai/velora/internal/models"
)

// Classifier guesses a generation capability from raw text without any
// remote call. It serves two roles in the pipeline: a fast-path pre-filter
// for trivially simple chat, and a safety-net override when remote
// interpretation returns chat but the text plainly asks for media.
type Classifier interface {
	Classify(text string) (models.Capability, bool)
}

// patternGroup holds the substring patterns for one capability. Groups are
// evaluated in a fixed priority order; the first match wins.
type patternGroup struct {
	capability models.Capability
	patterns   []string
}

// patternGroups in priority order: speech first (voice phrasing is the most
// specific signal), then slides, music, video, image. Image last because its
// verbs ("create", "make") are the most generic.
var patternGroups = []patternGroup{
	{models.CapabilityTTS, []string{
		"text to speech", "text-to-speech", "read this aloud", "read aloud",
		"voiceover", "voice over", "narrate", "narration",
		"say this", "speak this", "convert to audio", "make it speak",
	}},
	{models.CapabilityPPT, []string{
		"powerpoint", "power point", "slide deck", "slideshow",
		"presentation", "pitch deck", "slides about", "slides on",
		"deck about", "deck for",
	}},
	{models.CapabilityMusic, []string{
		"compose a song", "write a song", "make a song", "create a song",
		"background music", "soundtrack", "a jingle", "compose music",
		"generate music", "make music", "create music", "a beat for",
	}},
	{models.CapabilityVideo, []string{
		"make a video", "create a video", "generate a video", "video of",
		"video about", "animate", "animation of", "a short clip",
		"video clip", "film a", "b-roll",
	}},
	{models.CapabilityImage, []string{
		"draw", "sketch", "illustration", "illustrate", "a logo",
		"logo for", "picture of", "image of", "photo of", "a poster",
		"poster for", "a banner", "banner for", "generate an image",
		"create an image", "make an image", "an icon",
		"icon for", "wallpaper", "a thumbnail", "thumbnail for",
	}},
}

// Local is the deterministic pattern classifier. It is pure: no I/O, no
// randomness, the same text always yields the same verdict.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

// Classify returns the first capability whose pattern group matches, or
// false when no group matches.
func (l *Local) Classify(text string) (models.Capability, bool) {
	t := strings.ToLower(text)
	for _, group := range patternGroups {
		for _, p := range group.patterns {
			if strings.Contains(t, p) {
				return group.capability, true
			}
		}
	}
	return "", false
}

// trivialPhrases are complete utterances the fast path treats as plain chat
// regardless of tier: greetings, thanks, acknowledgements.
var trivialPhrases = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "sup": {},
	"hi there": {}, "hello there": {}, "hey there": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"thanks": {}, "thank you": {}, "thx": {}, "ty": {},
	"ok": {}, "okay": {}, "cool": {}, "nice": {}, "great": {},
	"got it": {}, "sounds good": {}, "yes": {}, "no": {}, "sure": {},
	"bye": {}, "goodbye": {}, "see you": {},
}

// TrivialWordLimit is the default word-count ceiling for the fast path.
const TrivialWordLimit = 4

// IsTrivial reports whether the message is simple enough to skip remote
// interpretation entirely: a known greeting/acknowledgement, or a very
// short utterance that matches no capability pattern.
func (l *Local) IsTrivial(text string) bool {
	// Questions deserve full interpretation however short; check before
	// any punctuation is trimmed away.
	if strings.Contains(text, "?") {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!")
	if _, ok := trivialPhrases[t]; ok {
		return true
	}
	if len(strings.Fields(t)) > TrivialWordLimit {
		return false
	}
	_, matched := l.Classify(t)
	return !matched
}
