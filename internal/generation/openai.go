package generation

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/models"
)

// OpenAIChat backs the chat pathway with the model gateway's
// chat-completion endpoint.
type OpenAIChat struct {
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIChat(client *openai.Client, logger *zap.Logger) *OpenAIChat {
	return &OpenAIChat{client: client, logger: logger}
}

func (p *OpenAIChat) Complete(ctx context.Context, modelID string, messages []ChatMessage) (*ChatResult, error) {
	req := openai.ChatCompletionRequest{
		Model:    modelID,
		Messages: toOpenAIMessages(messages),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		// Some gateway models omit usage; estimate so budget accounting
		// degrades instead of zeroing out.
		tokens = estimateTokens(messages, content)
	}
	return &ChatResult{Content: content, Tokens: tokens}, nil
}

// estimateTokens approximates token count at four characters per token.
func estimateTokens(messages []ChatMessage, completion string) int {
	chars := len(completion)
	for _, m := range messages {
		chars += len(m.Content)
	}
	return chars / 4
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// OpenAIVision answers over inline images, walking an ordered list of
// vision-capable models and falling through on failure until one succeeds
// or the list is exhausted.
type OpenAIVision struct {
	client *openai.Client
	models []string
	logger *zap.Logger
}

func NewOpenAIVision(client *openai.Client, modelIDs []string, logger *zap.Logger) *OpenAIVision {
	return &OpenAIVision{client: client, models: modelIDs, logger: logger}
}

func (p *OpenAIVision) CompleteWithImages(ctx context.Context, messages []ChatMessage, imageURLs []string) (*ChatResult, error) {
	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for i, m := range messages {
		msg := openai.ChatCompletionMessage{Role: m.Role}
		if i == len(messages)-1 && m.Role == string(models.RoleUser) {
			parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: m.Content}}
			for _, url := range imageURLs {
				parts = append(parts, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: url},
				})
			}
			msg.MultiContent = parts
		} else {
			msg.Content = m.Content
		}
		reqMessages = append(reqMessages, msg)
	}

	var lastErr error
	for _, modelID := range p.models {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    modelID,
			Messages: reqMessages,
		})
		if err != nil {
			p.logger.Warn("Vision model failed, trying next",
				zap.String("model", modelID),
				zap.Error(err))
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("vision model %s returned no choices", modelID)
			continue
		}
		tokens := resp.Usage.TotalTokens
		if tokens == 0 {
			tokens = estimateTokens(messages, resp.Choices[0].Message.Content)
		}
		return &ChatResult{Content: resp.Choices[0].Message.Content, Tokens: tokens}, nil
	}
	return nil, fmt.Errorf("all vision models failed: %w", lastErr)
}

// OpenAIImage backs the image and image-edit pathways.
type OpenAIImage struct {
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIImage(client *openai.Client, logger *zap.Logger) *OpenAIImage {
	return &OpenAIImage{client: client, logger: logger}
}

func (p *OpenAIImage) Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error) {
	req := openai.ImageRequest{
		Model:  modelID,
		Prompt: prompt,
		N:      1,
		Size:   imageSize(params.AspectRatio),
	}

	resp, err := p.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}
	return &Artifact{URL: resp.Data[0].URL}, nil
}

func imageSize(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return openai.CreateImageSize1792x1024
	case "9:16":
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}

// OpenAISpeech backs the tts pathway. The synthesized audio is handed to an
// uploader that returns a servable URL; audio bytes never transit further.
type OpenAISpeech struct {
	client   *openai.Client
	uploader Uploader
	logger   *zap.Logger
}

// Uploader stores a produced artifact and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

func NewOpenAISpeech(client *openai.Client, uploader Uploader, logger *zap.Logger) *OpenAISpeech {
	return &OpenAISpeech{client: client, uploader: uploader, logger: logger}
}

func (p *OpenAISpeech) Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error) {
	voice := openai.SpeechVoice(params.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(modelID),
		Input: prompt,
		Voice: voice,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading synthesized audio failed: %w", err)
	}

	url, err := p.uploader.Upload(ctx, "speech.mp3", audio, "audio/mpeg")
	if err != nil {
		return nil, fmt.Errorf("uploading audio failed: %w", err)
	}
	return &Artifact{URL: url}, nil
}
