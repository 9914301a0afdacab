package adapters

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// LLMOpenAI calls the OpenAI chat completions API.
type LLMOpenAI struct{}

type llmOpenAIArgs struct {
	Messages    []openAIMessage `json:"messages"`
	Prompt      string          `json:"prompt"`
	Model       string          `json:"model"`
	Temperature *float32        `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	APIKey      string          `json:"api_key"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (LLMOpenAI) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "llm.openai",
		Description: "Calls the OpenAI Chat Completions API. Requires an OPENAI_KEY secret or an api_key argument.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"messages": map[string]any{
					"type":        "array",
					"description": "Array of {role, content} messages",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"role":    map[string]any{"type": "string", "enum": []string{"system", "user", "assistant"}},
							"content": map[string]any{"type": "string"},
						},
					},
				},
				"prompt":      map[string]any{"type": "string", "description": "Simple prompt, alternative to messages"},
				"model":       map[string]any{"type": "string", "description": "Model name (default gpt-4o-mini)"},
				"temperature": map[string]any{"type": "number", "description": "Sampling temperature"},
				"max_tokens":  map[string]any{"type": "integer", "description": "Max tokens to generate"},
				"api_key":     map[string]any{"type": "string", "description": "Overrides the OPENAI_KEY secret"},
			},
		},
	}
}

func (LLMOpenAI) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args llmOpenAIArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}

	apiKey, ok := resolveSecret(args.APIKey, vaultGetter(state), "OPENAI_KEY")
	if !ok {
		return nil, toolkit.NewInvalidInput("no API key provided: set OPENAI_KEY secret or pass api_key")
	}

	messages, toolErr := buildOpenAIMessages(args)
	if toolErr != nil {
		return nil, toolErr
	}

	model := args.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	temperature := float32(0.7)
	if args.Temperature != nil {
		temperature = *args.Temperature
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}
	if args.MaxTokens > 0 {
		req.MaxTokens = args.MaxTokens
	}

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, toolkit.NewExecutionFailed("OpenAI API error: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, toolkit.NewExecutionFailed("OpenAI API returned no choices")
	}

	result, err := json.Marshal(map[string]any{
		"content": resp.Choices[0].Message.Content,
		"model":   resp.Model,
		"usage": map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

func buildOpenAIMessages(args llmOpenAIArgs) ([]openai.ChatCompletionMessage, *toolkit.Error) {
	if len(args.Messages) > 0 {
		out := make([]openai.ChatCompletionMessage, 0, len(args.Messages))
		for _, m := range args.Messages {
			out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
		}
		return out, nil
	}
	if args.Prompt != "" {
		return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: args.Prompt}}, nil
	}
	return nil, toolkit.NewInvalidInput("either 'messages' or 'prompt' is required")
}

func vaultGetter(state *runtime.State) func(string) (string, bool) {
	if state == nil || state.Vault == nil {
		return nil
	}
	return state.Vault.Get
}
