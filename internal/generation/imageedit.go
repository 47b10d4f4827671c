package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/models"
)

// describeImagePrompt asks the vision pathway for a description detailed
// enough to regenerate the image from text.
const describeImagePrompt = "Describe this image in precise visual detail so it can be faithfully recreated: subject, composition, colors, lighting, and style. Respond with the description only."

// ImageEditor serves edit requests against an existing image. The source
// image is described through the vision pathway and the description is folded
// into the regeneration prompt, so the edit keeps the original's look.
// Without a source image, or when every vision model fails, it degrades to
// plain generation from the edit prompt alone.
type ImageEditor struct {
	vision VisionProvider
	images MediaProvider
	logger *zap.Logger
}

func NewImageEditor(vision VisionProvider, images MediaProvider, logger *zap.Logger) *ImageEditor {
	return &ImageEditor{vision: vision, images: images, logger: logger}
}

func (e *ImageEditor) Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error) {
	if params.SourceImageURL == "" {
		return e.images.Generate(ctx, modelID, prompt, params)
	}

	described, err := e.vision.CompleteWithImages(ctx, []ChatMessage{
		{Role: string(models.RoleUser), Content: describeImagePrompt},
	}, []string{params.SourceImageURL})
	if err != nil {
		e.logger.Warn("Vision description failed, editing from prompt alone",
			zap.String("source", params.SourceImageURL),
			zap.Error(err))
		return e.images.Generate(ctx, modelID, prompt, params)
	}

	combined := fmt.Sprintf("%s\n\nApply this edit: %s", strings.TrimSpace(described.Content), prompt)
	return e.images.Generate(ctx, modelID, combined, params)
}
