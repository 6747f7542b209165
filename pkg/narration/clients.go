package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/windowseat/windowseat/pkg/retry"
)

// HTTPTextGenerator posts a prompt to a completion-style endpoint and reads
// back plain text. The provider's wire format is deliberately minimal; the
// pipeline treats the call as opaque.
type HTTPTextGenerator struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewHTTPTextGenerator(baseURL, apiKey, model string) *HTTPTextGenerator {
	return &HTTPTextGenerator{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HTTPTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":  h.Model,
		"prompt": prompt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.BaseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, URL: h.BaseURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}

	return strings.TrimSpace(decoded.Text), nil
}

// HTTPSynthesizer posts narration text to a speech endpoint and reads back
// the audio bytes directly.
type HTTPSynthesizer struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPSynthesizer(baseURL, apiKey string) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HTTPSynthesizer) Synthesize(ctx context.Context, text string, opts VoiceOptions) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"text":  text,
		"voice": opts.Voice,
		"speed": opts.Speed,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.BaseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, URL: h.BaseURL}
	}

	return io.ReadAll(resp.Body)
}
