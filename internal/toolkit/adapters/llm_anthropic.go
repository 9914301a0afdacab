package adapters

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// LLMAnthropic calls the Anthropic Messages API.
type LLMAnthropic struct{}

type llmAnthropicArgs struct {
	Messages  []openAIMessage `json:"messages"`
	Prompt    string          `json:"prompt"`
	System    string          `json:"system"`
	Model     string          `json:"model"`
	MaxTokens int64           `json:"max_tokens"`
	APIKey    string          `json:"api_key"`
}

func (LLMAnthropic) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "llm.anthropic",
		Description: "Calls the Anthropic Messages API. Requires an ANTHROPIC_KEY secret or an api_key argument.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"messages": map[string]any{
					"type":        "array",
					"description": "Array of {role, content} messages (user/assistant)",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"role":    map[string]any{"type": "string", "enum": []string{"user", "assistant"}},
							"content": map[string]any{"type": "string"},
						},
					},
				},
				"prompt":     map[string]any{"type": "string", "description": "Simple prompt, alternative to messages"},
				"system":     map[string]any{"type": "string", "description": "System prompt"},
				"model":      map[string]any{"type": "string", "description": "Model name (default claude-3-5-haiku-latest)"},
				"max_tokens": map[string]any{"type": "integer", "description": "Max tokens to generate (default 1024)"},
				"api_key":    map[string]any{"type": "string", "description": "Overrides the ANTHROPIC_KEY secret"},
			},
		},
	}
}

func (LLMAnthropic) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args llmAnthropicArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}

	apiKey, ok := resolveSecret(args.APIKey, vaultGetter(state), "ANTHROPIC_KEY")
	if !ok {
		return nil, toolkit.NewInvalidInput("no API key provided: set ANTHROPIC_KEY secret or pass api_key")
	}

	messages, toolErr := buildAnthropicMessages(args)
	if toolErr != nil {
		return nil, toolErr
	}

	model := args.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	maxTokens := args.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if args.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: args.System}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, toolkit.NewExecutionFailed("Anthropic API error: " + err.Error())
	}
	if len(resp.Content) == 0 {
		return nil, toolkit.NewExecutionFailed("Anthropic API returned no content blocks")
	}

	result, err := json.Marshal(map[string]any{
		"content": resp.Content[0].Text,
		"model":   string(resp.Model),
		"usage": map[string]any{
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		},
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

func buildAnthropicMessages(args llmAnthropicArgs) ([]anthropic.MessageParam, *toolkit.Error) {
	if len(args.Messages) > 0 {
		out := make([]anthropic.MessageParam, 0, len(args.Messages))
		for _, m := range args.Messages {
			block := anthropic.NewTextBlock(m.Content)
			if m.Role == "assistant" {
				out = append(out, anthropic.NewAssistantMessage(block))
			} else {
				out = append(out, anthropic.NewUserMessage(block))
			}
		}
		return out, nil
	}
	if args.Prompt != "" {
		return []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(args.Prompt))}, nil
	}
	return nil, toolkit.NewInvalidInput("either 'messages' or 'prompt' is required")
}
