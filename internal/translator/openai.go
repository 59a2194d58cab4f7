package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/region"
)

const systemPrompt = "You are a professional software UI localization translator."

// OpenAI translates via an OpenAI-compatible chat-completion endpoint. All
// strings of one asset go out in a single numbered-list request so the model
// sees them together and keeps terminology consistent.
type OpenAI struct {
	client     *openai.Client
	model      string
	glossary   map[string]string
	maxRetries uint64
}

func newOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai translator requires an API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai translator requires a model name")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	return &OpenAI{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		glossary:   cfg.Glossary,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Translate sends all region texts in one request and maps the numbered
// response back onto the regions. A response with the wrong line count is an
// error: the caller depends on positional alignment.
func (o *OpenAI) Translate(ctx context.Context, regions []region.TextRegion, source, target language.Tag) ([]region.TextRegion, error) {
	if len(regions) == 0 {
		return nil, nil
	}

	texts := make([]string, len(regions))
	for i, r := range regions {
		texts[i] = r.Text
	}
	prompt := buildPrompt(texts, source, target, o.glossary)

	var content string
	op := func() error {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens: 4096,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(errors.New("empty completion response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), o.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}

	translated, err := parseNumbered(content, len(texts))
	if err != nil {
		return nil, err
	}

	out := make([]region.TextRegion, 0, len(regions))
	for i, r := range regions {
		out = append(out, r.WithText(translated[i]))
	}
	return out, nil
}

func buildPrompt(texts []string, source, target language.Tag, glossary map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following UI strings from %s to %s.\n\n", source, target)
	b.WriteString("Rules:\n")
	b.WriteString("- Translate ONLY the text content, do not change numbering or formatting\n")
	b.WriteString("- Preserve UI placeholders like {0}, %s, %1, <variable> exactly as-is\n")
	b.WriteString("- Keep proper nouns, product names, and brand names unchanged unless in the glossary\n")
	b.WriteString("- Match the tone and brevity of UI strings (short, clear, imperative)\n")
	if len(glossary) > 0 {
		b.WriteString("\nTerm glossary (use these exact translations):\n")
		for src, tgt := range glossary {
			fmt.Fprintf(&b, "  %s -> %s\n", src, tgt)
		}
	}
	b.WriteString("\nReturn ONLY the translated strings, one per line, with the same numbering. No explanations.\n")
	b.WriteString("\nStrings to translate:\n")
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return b.String()
}

// parseNumbered strips list numbering from the model response. The line
// count must match what was requested; mismatches are hard errors, never
// padded or truncated.
func parseNumbered(response string, want int) ([]string, error) {
	out := make([]string, 0, want)
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] >= '0' && line[0] <= '9' {
			if dot := strings.Index(line, "."); dot >= 0 {
				line = strings.TrimSpace(line[dot+1:])
			}
		}
		out = append(out, line)
	}
	if len(out) != want {
		return nil, fmt.Errorf("translator returned %d strings, expected %d", len(out), want)
	}
	return out, nil
}
