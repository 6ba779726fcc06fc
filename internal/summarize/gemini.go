// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// contentGenerator is the part of genai.Models the backend uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBackend calls Google Gemini through the genai SDK.
type GeminiBackend struct {
	models    contentGenerator
	modelName string
	maxTokens int
}

// NewGeminiBackend creates a Gemini API client authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey, model string, maxTokens int, httpClient *http.Client) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiBackend{models: client.Models, modelName: model, maxTokens: maxTokens}, nil
}

func (g *GeminiBackend) Name() string  { return "gemini" }
func (g *GeminiBackend) Model() string { return g.modelName }

// Complete sends prompt as a single user turn.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	var cfg *genai.GenerateContentConfig
	if g.maxTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxTokens)}
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		var gErr genai.APIError
		if errors.As(err, &gErr) {
			return "", &APIError{Provider: "Gemini", StatusCode: gErr.Code, Body: gErr.Message}
		}
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}
