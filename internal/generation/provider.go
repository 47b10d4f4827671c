// Package generation defines the downstream generation pathways the router
// dispatches to. Each capability is behind a small interface so the router
// can be exercised against fakes; the production implementations call the
// unified model gateway.
package generation

import (
	"context"

	"github.com/velora-ai/velora/internal/models"
)

// ChatMessage is one message in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResult is a completion plus token accounting. Tokens is estimated
// locally when the provider omits usage figures.
type ChatResult struct {
	Content string
	Tokens  int
}

// ChatProvider produces a text completion for a message list.
type ChatProvider interface {
	Complete(ctx context.Context, modelID string, messages []ChatMessage) (*ChatResult, error)
}

// VisionProvider answers over inline images, trying an ordered model list
// and falling through on failure.
type VisionProvider interface {
	CompleteWithImages(ctx context.Context, messages []ChatMessage, imageURLs []string) (*ChatResult, error)
}

// Artifact is the reference a media pathway returns on success.
type Artifact struct {
	URL     string
	Content string
}

// MediaParams carries capability-specific knobs parsed from the raw request.
type MediaParams struct {
	AspectRatio string
	Voice       string
	SlideCount  int
	Genre       string
	DurationSec int
	// SourceImageURL is the prior artifact an edit request works from.
	SourceImageURL string
}

// MediaProvider generates one media artifact from an enhanced prompt.
type MediaProvider interface {
	Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error)
}

// Providers bundles every pathway the router can dispatch to, keyed the way
// the router needs them. Media maps capability to its pathway; capabilities
// absent from the map are unavailable in this deployment.
type Providers struct {
	Chat  ChatProvider
	Media map[models.Capability]MediaProvider
}
