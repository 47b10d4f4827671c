package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// GatewayMedia calls the model gateway's media endpoints (video, music).
// The gateway exposes one POST route per modality taking a prompt plus
// modality parameters and returning the artifact URL.
type GatewayMedia struct {
	baseURL string
	path    string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewGatewayMedia(baseURL, path, apiKey string, client *http.Client, logger *zap.Logger) *GatewayMedia {
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayMedia{
		baseURL: baseURL,
		path:    path,
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

type gatewayRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Genre       string `json:"genre,omitempty"`
	DurationSec int    `json:"duration_sec,omitempty"`
}

type gatewayResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// gatewayError turns a non-200 response into an error. The body is decoded
// best-effort; proxies answer 5xx with HTML and that must surface as the
// status code, not as a decode failure.
func gatewayError(op string, resp *http.Response) error {
	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil && decoded.Error != "" {
		return fmt.Errorf("%s returned %d: %s", op, resp.StatusCode, decoded.Error)
	}
	return fmt.Errorf("%s returned %d", op, resp.StatusCode)
}

func (p *GatewayMedia) Generate(ctx context.Context, modelID string, prompt string, params MediaParams) (*Artifact, error) {
	body, err := json.Marshal(gatewayRequest{
		Model:       modelID,
		Prompt:      prompt,
		AspectRatio: params.AspectRatio,
		Genre:       params.Genre,
		DurationSec: params.DurationSec,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+p.path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayError("gateway", resp)
	}
	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}
	if decoded.URL == "" {
		return nil, fmt.Errorf("gateway returned no artifact url")
	}
	return &Artifact{URL: decoded.URL}, nil
}

// GatewayUploader stores produced artifacts through the gateway's asset
// endpoint and returns the servable URL.
type GatewayUploader struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGatewayUploader(baseURL, apiKey string, client *http.Client) *GatewayUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayUploader{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (u *GatewayUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/v1/assets?name="+name, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+u.apiKey)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("asset upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", gatewayError("asset upload", resp)
	}
	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if decoded.URL == "" {
		return "", fmt.Errorf("asset upload returned no url")
	}
	return decoded.URL, nil
}

// GatewaySerializer hands structured slides to the gateway's deck
// serializer and returns the file URL. The deck file format lives entirely
// behind this endpoint.
type GatewaySerializer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGatewaySerializer(baseURL, apiKey string, client *http.Client) *GatewaySerializer {
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewaySerializer{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (s *GatewaySerializer) Serialize(ctx context.Context, title string, slides []Slide) (string, error) {
	body, err := json.Marshal(map[string]any{"title": title, "slides": slides})
	if err != nil {
		return "", fmt.Errorf("encoding deck: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/decks", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building deck request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deck serialization failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", gatewayError("deck serialization", resp)
	}
	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding deck response: %w", err)
	}
	if decoded.URL == "" {
		return "", fmt.Errorf("deck serialization returned no url")
	}
	return decoded.URL, nil
}
