package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

const (
	defaultModel = "claude-sonnet-4-6"

	genMaxTokens     = 1024
	repairMaxTokens  = 1024
	explainMaxTokens = 512
)

// AnthropicGenerator implements Generator on top of the Anthropic Messages API.
// A custom baseURL allows Claude-compatible providers.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
}

var _ Generator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator creates a generator backed by Anthropic Claude.
func NewAnthropicGenerator(apiKey, model, baseURL string) *AnthropicGenerator {
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (g *AnthropicGenerator) GenerateSQL(ctx context.Context, question, schema, kpis string, history []Turn) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, t := range history {
		switch t.Role {
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(question)))

	start := time.Now()
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(g.model)),
		MaxTokens: anthropic.F(int64(genMaxTokens)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(buildGenSystemPrompt(schema, kpis)),
		}),
		Messages: anthropic.F(messages),
	})
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}

	sql := firstText(resp)
	log.Debug().
		Str("model", g.model).
		Int("history_turns", len(history)).
		Dur("latency", time.Since(start)).
		Msg("sql generated")
	return sql, nil
}

func (g *AnthropicGenerator) RepairSQL(ctx context.Context, question, schema, failedSQL, errMsg string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(g.model)),
		MaxTokens: anthropic.F(int64(repairMaxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				buildFixPrompt(schema, question, failedSQL, errMsg),
			)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("LLM repair call failed: %w", err)
	}
	return firstText(resp), nil
}

func (g *AnthropicGenerator) Explain(ctx context.Context, question, sql string, columns []string, sample string, rowCount int) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(g.model)),
		MaxTokens: anthropic.F(int64(explainMaxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				buildExplainPrompt(question, sql, columns, sample, rowCount),
			)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("LLM explain call failed: %w", err)
	}
	return firstText(resp), nil
}

// firstText concatenates the text blocks of a response and trims whitespace.
func firstText(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
