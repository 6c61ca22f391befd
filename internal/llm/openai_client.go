// internal/llm/openai_client.go
// Client OpenAI untuk teks rekomendasi pupuk (dipakai mock-predictor).
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"smart-farming/internal/farm"
)

const fertilizerSystem = `You are an agronomy assistant. Given soil test values and the fertilizer
quantities already computed, write 2-3 short sentences of practical application
guidance for a farmer. Do not change the quantities. Plain text only.`

type Guide struct {
	api   *openai.Client
	model string
}

// NewGuide: apiKey wajib; base kosong = endpoint OpenAI default; model kosong = gpt-4o-mini.
func NewGuide(apiKey, base, model string) (*Guide, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	cfg := openai.DefaultConfig(key)
	if base = strings.TrimSpace(base); base != "" {
		cfg.BaseURL = base
	}
	if model = strings.TrimSpace(model); model == "" {
		model = "gpt-4o-mini"
	}
	return &Guide{api: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (g *Guide) Model() string { return g.model }

// FertilizerAdvice menghasilkan teks panduan untuk hasil optimasi pupuk.
func (g *Guide) FertilizerAdvice(ctx context.Context, in farm.InputRecord, f farm.Fertilizer) (string, error) {
	prompt := fmt.Sprintf(
		"Soil: N=%.0f P=%.0f K=%.0f pH=%.1f, season=%s, temperature=%.0fC, humidity=%.0f%%, rainfall=%.0fmm.\n"+
			"Recommended: Nitrogen %.0f kg/ha, Phosphorus %.0f kg/ha, Potassium %.0f kg/ha.",
		in.N, in.P, in.K, in.PH, in.Season, in.Temperature, in.Humidity, in.Rainfall,
		f.Nitrogen, f.Phosphorus, f.Potassium,
	)
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fertilizerSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	}

	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, 18*time.Second)
		defer cancel()
	}

	resp, err := g.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
