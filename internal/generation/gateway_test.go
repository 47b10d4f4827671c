package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGatewayMediaGenerate(t *testing.T) {
	var got gatewayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(gatewayResponse{URL: "https://cdn.example.com/clip.mp4"})
	}))
	defer srv.Close()

	p := NewGatewayMedia(srv.URL, "/v1/video", "test-key", srv.Client(), zap.NewNop())
	artifact, err := p.Generate(context.Background(), "veo-2", "a drone shot of a coastline",
		MediaParams{AspectRatio: "16:9"})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/clip.mp4", artifact.URL)
	assert.Equal(t, "veo-2", got.Model)
	assert.Equal(t, "16:9", got.AspectRatio)
}

func TestGatewayMediaSurfacesStatusOnNonJSONError(t *testing.T) {
	// A proxy in front of the gateway answers 502 with an HTML page; the
	// error must carry the status code, not a decode failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	}))
	defer srv.Close()

	p := NewGatewayMedia(srv.URL, "/v1/video", "test-key", srv.Client(), zap.NewNop())
	_, err := p.Generate(context.Background(), "veo-2", "a drone shot", MediaParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway returned 502")
	assert.NotContains(t, err.Error(), "decoding")
}

func TestGatewayMediaIncludesErrorFieldWhenPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(gatewayResponse{Error: "prompt rejected"})
	}))
	defer srv.Close()

	p := NewGatewayMedia(srv.URL, "/v1/video", "test-key", srv.Client(), zap.NewNop())
	_, err := p.Generate(context.Background(), "veo-2", "a drone shot", MediaParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway returned 422: prompt rejected")
}

func TestGatewayMediaRejectsMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gatewayResponse{})
	}))
	defer srv.Close()

	p := NewGatewayMedia(srv.URL, "/v1/video", "test-key", srv.Client(), zap.NewNop())
	_, err := p.Generate(context.Background(), "veo-2", "a drone shot", MediaParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no artifact url")
}

func TestGatewayUploaderSurfacesStatusOnNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("service unavailable"))
	}))
	defer srv.Close()

	u := NewGatewayUploader(srv.URL, "test-key", srv.Client())
	_, err := u.Upload(context.Background(), "speech.mp3", []byte("audio"), "audio/mpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asset upload returned 503")
}

func TestGatewaySerializerSurfacesStatusOnNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	s := NewGatewaySerializer(srv.URL, "test-key", srv.Client())
	_, err := s.Serialize(context.Background(), "Pitch", []Slide{{Title: "One"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deck serialization returned 502")
}
