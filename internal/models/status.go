package models

// Phase is the UI-visible state of an in-flight turn.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseThinking    Phase = "thinking"
	PhaseResearching Phase = "researching"
	PhasePlanning    Phase = "planning"
	PhaseGenerating  Phase = "generating"
	PhaseRefining    Phase = "refining"
	PhaseComplete    Phase = "complete"
	PhaseEnhancing   Phase = "enhancing"
)

// genericLabels are the default progress labels per phase.
var genericLabels = map[Phase]string{
	PhaseIdle:        "",
	PhaseThinking:    "Thinking...",
	PhaseResearching: "Researching...",
	PhasePlanning:    "Planning...",
	PhaseGenerating:  "Generating response...",
	PhaseRefining:    "Refining...",
	PhaseComplete:    "Done",
	PhaseEnhancing:   "Enhancing...",
}

// capabilityLabels override the generic label with a capability-specific
// phrase for the phases where it reads better.
var capabilityLabels = map[Capability]map[Phase]string{
	CapabilityImage: {
		PhaseGenerating: "Creating your image...",
		PhaseRefining:   "Touching up the image...",
	},
	CapabilityImageEdit: {
		PhaseGenerating: "Editing your image...",
	},
	CapabilityVideo: {
		PhaseGenerating: "Rendering your video...",
	},
	CapabilityPPT: {
		PhasePlanning:   "Outlining your slides...",
		PhaseGenerating: "Building your presentation...",
	},
	CapabilityTTS: {
		PhaseGenerating: "Generating audio...",
	},
	CapabilityMusic: {
		PhaseGenerating: "Composing music...",
	},
}

// StatusLabel returns the progress label for a capability and phase, falling
// back to the generic phase label.
func StatusLabel(capability Capability, phase Phase) string {
	if byPhase, ok := capabilityLabels[capability]; ok {
		if label, ok := byPhase[phase]; ok {
			return label
		}
	}
	return genericLabels[phase]
}
