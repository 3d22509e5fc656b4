package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/service/metrics"

	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAI generates completions through any OpenAI-compatible chat endpoint.
type OpenAI struct {
	chat model.BaseChatModel
}

func NewOpenAI(ctx context.Context, cfg Config) (*OpenAI, error) {
	temperature := cfg.Temperature
	cm, err := openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return &OpenAI{chat: cm}, nil
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { metrics.Observe("openai", "generate", start, err) }()

	msg, err := o.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	text = strings.TrimSpace(msg.Content)
	if text == "" {
		return "", fmt.Errorf("openai returned empty content")
	}
	return text, nil
}

var _ domsvc.TextGenerator = (*OpenAI)(nil)
