// Package translate is the narrow interface to the optional third-party
// translation capability. The remote service may be slow, down, or
// unconfigured; every failure path degrades to passing the original text
// through, so translation problems never surface as request errors.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Translator translates text between languages. Implementations may fail;
// callers that must not fail wrap one in a CachedTranslator.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// HTTPTranslator calls a LibreTranslate-compatible endpoint.
type HTTPTranslator struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPTranslator builds a client for the given endpoint. An empty
// endpoint yields a translator that always fails, which the cache layer
// turns into pass-through.
func NewHTTPTranslator(endpoint, apiKey string) *HTTPTranslator {
	return &HTTPTranslator{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if t.Endpoint == "" {
		return "", fmt.Errorf("translate: no endpoint configured")
	}
	if source == "" {
		source = "auto"
	}
	body, err := json.Marshal(translateRequest{Q: text, Source: source, Target: target, APIKey: t.APIKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("translate: empty response")
	}
	return out.TranslatedText, nil
}
