package models

// OutcomeKind classifies the result of routing one interpretation.
type OutcomeKind string

const (
	// OutcomeSuccess means the downstream generation produced an artifact.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeQuotaExceeded means the daily cap was already consumed;
	// no generation was attempted and no usage recorded.
	OutcomeQuotaExceeded OutcomeKind = "quota_exceeded"
	// OutcomeUpgradeRequired means the capability is gated above the
	// user's tier; no quota was checked and no generation attempted.
	OutcomeUpgradeRequired OutcomeKind = "upgrade_required"
	// OutcomeFailed means the downstream call errored or timed out after
	// any applicable retry; no usage is recorded for non-delivery.
	OutcomeFailed OutcomeKind = "failed"
	// OutcomeClarification means generation is paused pending answers to
	// the interpretation's clarifying questions. Not an error.
	OutcomeClarification OutcomeKind = "clarification_required"
)

// Outcome is the uniform result envelope the router returns for every
// dispatch, success or not.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	Capability  Capability  `json:"capability"`
	ArtifactURL string      `json:"artifact_url,omitempty"`
	Content     string      `json:"content,omitempty"`
	DisplayText string      `json:"display_text,omitempty"`
	Tokens      int         `json:"tokens,omitempty"`
	Used        int         `json:"used,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}
