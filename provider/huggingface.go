// Package provider holds the text generation backends used for narratives
// and the circuit breaker that wraps them.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
)

const maxResponseBytes = 1 << 20

// Compile-time check to ensure HuggingFace implements TextGenerationProvider
var _ interfaces.TextGenerationProvider = (*HuggingFace)(nil)

// HuggingFace calls a hosted inference endpoint for a causal language model
type HuggingFace struct {
	modelURL   string
	token      string
	httpClient *http.Client
}

// NewHuggingFace creates the adapter. The HTTP client carries no timeout of
// its own: the caller's context bounds each call.
func NewHuggingFace(modelURL, token string) *HuggingFace {
	return &HuggingFace{
		modelURL:   modelURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float32 `json:"temperature"`
	TopP           float32 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfGeneration struct {
	GeneratedText *string `json:"generated_text"`
}

// hfError is returned while the model loads or when the request is rejected
type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (h *HuggingFace) Name() string { return "huggingface" }

// Generate performs one inference call
func (h *HuggingFace) Generate(ctx context.Context, prompt string, params entities.GenerationParams) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   params.MaxTokens,
			Temperature:    params.Temperature,
			TopP:           params.TopP,
			DoSample:       params.Sampling,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("huggingface: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.modelURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: huggingface: build request: %v", entities.ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", transportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.EstimatedTime > 0 {
				return "", fmt.Errorf("%w: huggingface: %s (ready in ~%.0fs)",
					entities.ErrProviderUnavailable, apiErr.Error, apiErr.EstimatedTime)
			}
			return "", fmt.Errorf("%w: huggingface: status %d: %s",
				entities.ErrProviderUnavailable, resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("%w: huggingface: unexpected status %d: %.200s",
			entities.ErrProviderUnavailable, resp.StatusCode, string(raw))
	}

	text, err := parseGeneratedText(raw)
	if err != nil {
		return "", err
	}
	return text, nil
}

// parseGeneratedText accepts [{"generated_text": ...}] and
// {"generated_text": ...}. Anything else is malformed.
func parseGeneratedText(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)

	var list []hfGeneration
	if err := json.Unmarshal(trimmed, &list); err == nil {
		if len(list) == 0 || list[0].GeneratedText == nil {
			return "", fmt.Errorf("%w: huggingface: no generated_text in list", entities.ErrProviderMalformedResponse)
		}
		return nonEmpty(*list[0].GeneratedText)
	}

	var single hfGeneration
	if err := json.Unmarshal(trimmed, &single); err == nil && single.GeneratedText != nil {
		return nonEmpty(*single.GeneratedText)
	}

	return "", fmt.Errorf("%w: huggingface: unrecognized body: %.200s", entities.ErrProviderMalformedResponse, string(trimmed))
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: huggingface: empty generated_text", entities.ErrProviderMalformedResponse)
	}
	return text, nil
}

// transportError maps deadline and network timeouts to ErrProviderTimeout
// and everything else to ErrProviderUnavailable.
func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", entities.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %v", entities.ErrProviderUnavailable, err)
}

// WithHTTPClient replaces the HTTP client, mainly for tests
func (h *HuggingFace) WithHTTPClient(client *http.Client) *HuggingFace {
	h.httpClient = client
	return h
}
