package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"google.golang.org/genai"
)

// Compile-time check to ensure Gemini implements TextGenerationProvider
var _ interfaces.TextGenerationProvider = (*Gemini)(nil)

// Gemini generates text with the Gemini API
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a Gemini API client authenticated with an API key
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Gemini{client: client, modelName: modelName}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Generate performs one GenerateContent call
func (g *Gemini) Generate(ctx context.Context, prompt string, params entities.GenerationParams) (string, error) {
	temp := params.Temperature
	topP := params.TopP
	if !params.Sampling {
		temp = 0
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: int32(params.MaxTokens),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: gemini: %v", entities.ErrProviderTimeout, err)
		}
		return "", fmt.Errorf("%w: gemini: %v", entities.ErrProviderUnavailable, err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned empty text", entities.ErrProviderMalformedResponse)
	}
	return text, nil
}
