package research

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNoGenerator is returned when no model API key was configured.
var ErrNoGenerator = errors.New("text generation not configured")

// GenerateRequest is one prompt round trip.
type GenerateRequest struct {
	Model     string
	Prompt    string
	MaxTokens int32
	// WebSearch lets the model ground its answer with live search results.
	WebSearch bool
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	logger *zap.Logger
}

// NewGeminiGenerator creates a Generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey string, logger *zap.Logger) (Generator, error) {
	if apiKey == "" {
		return nil, ErrNoGenerator
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &geminiGenerator{client: client, logger: logger}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = req.MaxTokens
	}
	if req.WebSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", req.Model, err)
	}
	text := resp.Text()

	fields := []zap.Field{zap.String("model", req.Model), zap.Int("chars", len(text))}
	if resp.UsageMetadata != nil {
		fields = append(fields,
			zap.Int32("promptTokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("outputTokens", resp.UsageMetadata.CandidatesTokenCount))
	}
	g.logger.Debug("generation finished", fields...)
	return text, nil
}
