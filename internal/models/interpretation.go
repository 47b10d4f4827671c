package models

// Complexity grades a request for model-tier selection.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// ParseComplexity maps a string to a Complexity, defaulting to medium for
// anything unrecognized.
func ParseComplexity(s string) Complexity {
	switch s {
	case "simple":
		return ComplexitySimple
	case "complex":
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}

// Interpretation is the structured decision produced for one user turn:
// which capability the request maps to, how hard it is, which model should
// serve it, and the rewritten prompt to send downstream. It is ephemeral;
// only its ContextUpdates and Assumptions outlive the turn.
type Interpretation struct {
	Intent              Capability           `json:"intent"`
	Confidence          float64              `json:"confidence"`
	EnhancedPrompt      string               `json:"enhanced_prompt"`
	Complexity          Complexity           `json:"complexity"`
	SuggestedModel      string               `json:"suggested_model"`
	ContextUpdates      ContextUpdates       `json:"context_updates,omitempty"`
	Assumptions         []Assumption         `json:"assumptions,omitempty"`
	NeedsClarification  bool                 `json:"needs_clarification"`
	ClarifyingQuestions []ClarifyingQuestion `json:"clarifying_questions,omitempty"`
	StatusMessage       string               `json:"status_message"`
}
