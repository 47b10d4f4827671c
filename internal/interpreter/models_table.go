package interpreter

import "github.com/velora-ai/velora/internal/models"

// modelKey indexes the static tier routing table.
type modelKey struct {
	capability models.Capability
	complexity models.Complexity
	tier       models.Tier
}

// modelTable maps (capability, complexity, tier) to the downstream model id.
// For a fixed capability and complexity the model class never decreases as
// the tier rises; paying more never routes to a weaker model.
var modelTable = map[modelKey]string{
	{models.CapabilityChat, models.ComplexitySimple, models.TierFree}:     "gpt-4o-mini",
	{models.CapabilityChat, models.ComplexitySimple, models.TierStarter}:  "gpt-4o-mini",
	{models.CapabilityChat, models.ComplexitySimple, models.TierPro}:      "gpt-4o",
	{models.CapabilityChat, models.ComplexitySimple, models.TierPremium}:  "gpt-4o",
	{models.CapabilityChat, models.ComplexityMedium, models.TierFree}:     "gpt-4o-mini",
	{models.CapabilityChat, models.ComplexityMedium, models.TierStarter}:  "gpt-4o",
	{models.CapabilityChat, models.ComplexityMedium, models.TierPro}:      "gpt-4o",
	{models.CapabilityChat, models.ComplexityMedium, models.TierPremium}:  "gpt-4-turbo",
	{models.CapabilityChat, models.ComplexityComplex, models.TierFree}:    "gpt-4o-mini",
	{models.CapabilityChat, models.ComplexityComplex, models.TierStarter}: "gpt-4o",
	{models.CapabilityChat, models.ComplexityComplex, models.TierPro}:     "gpt-4-turbo",
	{models.CapabilityChat, models.ComplexityComplex, models.TierPremium}: "gpt-4-turbo",

	{models.CapabilityImage, models.ComplexitySimple, models.TierFree}:     "dall-e-2",
	{models.CapabilityImage, models.ComplexitySimple, models.TierStarter}:  "dall-e-3",
	{models.CapabilityImage, models.ComplexitySimple, models.TierPro}:      "dall-e-3",
	{models.CapabilityImage, models.ComplexitySimple, models.TierPremium}:  "dall-e-3",
	{models.CapabilityImage, models.ComplexityMedium, models.TierFree}:     "dall-e-2",
	{models.CapabilityImage, models.ComplexityMedium, models.TierStarter}:  "dall-e-3",
	{models.CapabilityImage, models.ComplexityMedium, models.TierPro}:      "dall-e-3",
	{models.CapabilityImage, models.ComplexityMedium, models.TierPremium}:  "dall-e-3-hd",
	{models.CapabilityImage, models.ComplexityComplex, models.TierFree}:    "dall-e-2",
	{models.CapabilityImage, models.ComplexityComplex, models.TierStarter}: "dall-e-3",
	{models.CapabilityImage, models.ComplexityComplex, models.TierPro}:     "dall-e-3-hd",
	{models.CapabilityImage, models.ComplexityComplex, models.TierPremium}: "dall-e-3-hd",

	{models.CapabilityTTS, models.ComplexitySimple, models.TierFree}:     "tts-1",
	{models.CapabilityTTS, models.ComplexitySimple, models.TierStarter}:  "tts-1",
	{models.CapabilityTTS, models.ComplexitySimple, models.TierPro}:      "tts-1-hd",
	{models.CapabilityTTS, models.ComplexitySimple, models.TierPremium}:  "tts-1-hd",
	{models.CapabilityTTS, models.ComplexityMedium, models.TierFree}:     "tts-1",
	{models.CapabilityTTS, models.ComplexityMedium, models.TierStarter}:  "tts-1",
	{models.CapabilityTTS, models.ComplexityMedium, models.TierPro}:      "tts-1-hd",
	{models.CapabilityTTS, models.ComplexityMedium, models.TierPremium}:  "tts-1-hd",
	{models.CapabilityTTS, models.ComplexityComplex, models.TierFree}:    "tts-1",
	{models.CapabilityTTS, models.ComplexityComplex, models.TierStarter}: "tts-1-hd",
	{models.CapabilityTTS, models.ComplexityComplex, models.TierPro}:     "tts-1-hd",
	{models.CapabilityTTS, models.ComplexityComplex, models.TierPremium}: "tts-1-hd",

	{models.CapabilityVideo, models.ComplexitySimple, models.TierStarter}:  "gen3-fast",
	{models.CapabilityVideo, models.ComplexitySimple, models.TierPro}:      "gen3",
	{models.CapabilityVideo, models.ComplexitySimple, models.TierPremium}:  "gen3",
	{models.CapabilityVideo, models.ComplexityMedium, models.TierStarter}:  "gen3-fast",
	{models.CapabilityVideo, models.ComplexityMedium, models.TierPro}:      "gen3",
	{models.CapabilityVideo, models.ComplexityMedium, models.TierPremium}:  "gen3-alpha",
	{models.CapabilityVideo, models.ComplexityComplex, models.TierStarter}: "gen3",
	{models.CapabilityVideo, models.ComplexityComplex, models.TierPro}:     "gen3-alpha",
	{models.CapabilityVideo, models.ComplexityComplex, models.TierPremium}: "gen3-alpha",

	{models.CapabilityMusic, models.ComplexitySimple, models.TierStarter}:  "lyra-v1",
	{models.CapabilityMusic, models.ComplexitySimple, models.TierPro}:      "lyra-v2",
	{models.CapabilityMusic, models.ComplexitySimple, models.TierPremium}:  "lyra-v2",
	{models.CapabilityMusic, models.ComplexityMedium, models.TierStarter}:  "lyra-v1",
	{models.CapabilityMusic, models.ComplexityMedium, models.TierPro}:      "lyra-v2",
	{models.CapabilityMusic, models.ComplexityMedium, models.TierPremium}:  "lyra-v2",
	{models.CapabilityMusic, models.ComplexityComplex, models.TierStarter}: "lyra-v2",
	{models.CapabilityMusic, models.ComplexityComplex, models.TierPro}:     "lyra-v2",
	{models.CapabilityMusic, models.ComplexityComplex, models.TierPremium}: "lyra-v2",
}

// capabilityDefaults is the tier-agnostic fallback when a combination is
// missing from the table.
var capabilityDefaults = map[models.Capability]string{
	models.CapabilityChat:      "gpt-4o-mini",
	models.CapabilityImage:     "dall-e-2",
	models.CapabilityImageEdit: "dall-e-2",
	models.CapabilityVideo:     "gen3-fast",
	models.CapabilityPPT:       "gpt-4o-mini",
	models.CapabilityTTS:       "tts-1",
	models.CapabilityMusic:     "lyra-v1",
}

// modelClassRank orders models within a family by capability class. Used to
// verify the never-downgrade invariant across tiers.
var modelClassRank = map[string]int{
	"gpt-4o-mini": 1,
	"gpt-4o":      2,
	"gpt-4-turbo": 3,
	"dall-e-2":    1,
	"dall-e-3":    2,
	"dall-e-3-hd": 3,
	"tts-1":       1,
	"tts-1-hd":    2,
	"gen3-fast":   1,
	"gen3":        2,
	"gen3-alpha":  3,
	"lyra-v1":     1,
	"lyra-v2":     2,
}

// FallbackChatModel is the fixed model used for the single chat retry and
// for default interpretations.
const FallbackChatModel = "gpt-4o-mini"

// SelectModel resolves the downstream model for a capability, complexity,
// and tier. Image edits share the image table; slide decks use the chat
// table since the outline is a text generation. Unknown combinations fall
// back to the capability default.
func SelectModel(capability models.Capability, complexity models.Complexity, tier models.Tier) string {
	lookup := capability
	switch capability {
	case models.CapabilityImageEdit:
		lookup = models.CapabilityImage
	case models.CapabilityPPT:
		lookup = models.CapabilityChat
	}
	if id, ok := modelTable[modelKey{lookup, complexity, tier}]; ok {
		return id
	}
	return capabilityDefaults[capability]
}
