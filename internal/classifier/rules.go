package classifier

import (
	"sort"
	"strings"

	"github.com/velora-ai/velora/internal/models"
)

// OverrideRule forces a capability when a high-signal product phrase is
// present, regardless of what the remote interpreter or the generic pattern
// classifier decided. Rules carry an explicit priority so precedence is
// declared, not implied by call order; lower numbers win.
type OverrideRule struct {
	Pattern    string
	Capability models.Capability
	Priority   int
}

// overrideRules encode product-specific signals stronger than the generic
// pattern groups. Voice-modification phrasing outranks everything because a
// follow-up like "use a female voice" otherwise reads as plain chat.
var overrideRules = []OverrideRule{
	{"female voice", models.CapabilityTTS, 10},
	{"male voice", models.CapabilityTTS, 10},
	{"deeper voice", models.CapabilityTTS, 10},
	{"voice deeper", models.CapabilityTTS, 10},
	{"softer voice", models.CapabilityTTS, 10},
	{"robotic voice", models.CapabilityTTS, 10},
	{"different voice", models.CapabilityTTS, 10},
	{"powerpoint", models.CapabilityPPT, 20},
	{"pitch deck", models.CapabilityPPT, 20},
	{"slide deck", models.CapabilityPPT, 20},
	{"edit the image", models.CapabilityImageEdit, 30},
	{"edit this image", models.CapabilityImageEdit, 30},
	{"remove the background", models.CapabilityImageEdit, 30},
	{"change the background", models.CapabilityImageEdit, 30},
}

func init() {
	sort.SliceStable(overrideRules, func(i, j int) bool {
		return overrideRules[i].Priority < overrideRules[j].Priority
	})
}

// ApplyOverrides returns the forced capability for the highest-priority
// matching rule, or false when no rule fires. Pure function over the rule
// table.
func ApplyOverrides(text string) (models.Capability, bool) {
	t := strings.ToLower(text)
	for _, rule := range overrideRules {
		if strings.Contains(t, rule.Pattern) {
			return rule.Capability, true
		}
	}
	return "", false
}
