package adapters

import (
	"context"
	"encoding/json"

	"github.com/slack-go/slack"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// NotifySlack posts a message to a Slack incoming webhook.
type NotifySlack struct{}

type notifySlackArgs struct {
	Text       string `json:"text"`
	Channel    string `json:"channel"`
	Username   string `json:"username"`
	IconEmoji  string `json:"icon_emoji"`
	WebhookURL string `json:"webhook_url"`
}

func (NotifySlack) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "notify.slack",
		Description: "Sends a Slack notification. Requires a SLACK_WEBHOOK_URL secret or a webhook_url argument.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":        map[string]any{"type": "string", "description": "Message text"},
				"channel":     map[string]any{"type": "string", "description": "Channel override"},
				"username":    map[string]any{"type": "string", "description": "Username override"},
				"icon_emoji":  map[string]any{"type": "string", "description": "Icon emoji, e.g. :robot_face:"},
				"webhook_url": map[string]any{"type": "string", "description": "Overrides the SLACK_WEBHOOK_URL secret"},
			},
			"required": []string{"text"},
		},
	}
}

func (NotifySlack) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args notifySlackArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Text == "" {
		return nil, toolkit.NewInvalidInput("missing 'text'")
	}

	webhookURL, ok := resolveSecret(args.WebhookURL, vaultGetter(state), "SLACK_WEBHOOK_URL")
	if !ok {
		return nil, toolkit.NewInvalidInput("no webhook URL: set SLACK_WEBHOOK_URL secret or pass webhook_url")
	}

	msg := &slack.WebhookMessage{
		Text:      args.Text,
		Channel:   args.Channel,
		Username:  args.Username,
		IconEmoji: args.IconEmoji,
	}

	if err := slack.PostWebhookContext(ctx, webhookURL, msg); err != nil {
		return nil, toolkit.NewExecutionFailed("Slack webhook error: " + err.Error())
	}

	result, err := json.Marshal(map[string]any{"success": true})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}
