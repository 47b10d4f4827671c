package models

// Capability is a generation modality the product can route a request to.
type Capability string

const (
	CapabilityChat      Capability = "chat"
	CapabilityImage     Capability = "image"
	CapabilityImageEdit Capability = "image_edit"
	CapabilityVideo     Capability = "video"
	CapabilityPPT       Capability = "ppt"
	CapabilityTTS       Capability = "tts"
	CapabilityMusic     Capability = "music"
)

// AllCapabilities lists every routable capability in a stable order.
var AllCapabilities = []Capability{
	CapabilityChat,
	CapabilityImage,
	CapabilityImageEdit,
	CapabilityVideo,
	CapabilityPPT,
	CapabilityTTS,
	CapabilityMusic,
}

// ParseCapability returns the capability matching s, or false if s is not a
// known capability name.
func ParseCapability(s string) (Capability, bool) {
	for _, c := range AllCapabilities {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Capability) String() string {
	return string(c)
}

// IsMedia reports whether the capability produces a media artifact rather
// than text. Media capabilities never get automatic retries.
func (c Capability) IsMedia() bool {
	return c != CapabilityChat
}
