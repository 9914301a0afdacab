package adapters

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

var discordWebhookPattern = regexp.MustCompile(`/webhooks/(\d+)/([^/?]+)`)

// NotifyDiscord posts a message to a Discord webhook.
type NotifyDiscord struct{}

type notifyDiscordArgs struct {
	Content    string `json:"content"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`
	WebhookURL string `json:"webhook_url"`
}

func (NotifyDiscord) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "notify.discord",
		Description: "Sends a Discord notification. Requires a DISCORD_WEBHOOK_URL secret or a webhook_url argument.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content":     map[string]any{"type": "string", "description": "Message content"},
				"username":    map[string]any{"type": "string", "description": "Username override"},
				"avatar_url":  map[string]any{"type": "string", "description": "Avatar URL override"},
				"webhook_url": map[string]any{"type": "string", "description": "Overrides the DISCORD_WEBHOOK_URL secret"},
			},
			"required": []string{"content"},
		},
	}
}

func (NotifyDiscord) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args notifyDiscordArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Content == "" {
		return nil, toolkit.NewInvalidInput("missing 'content'")
	}

	webhookURL, ok := resolveSecret(args.WebhookURL, vaultGetter(state), "DISCORD_WEBHOOK_URL")
	if !ok {
		return nil, toolkit.NewInvalidInput("no webhook URL: set DISCORD_WEBHOOK_URL secret or pass webhook_url")
	}

	match := discordWebhookPattern.FindStringSubmatch(webhookURL)
	if match == nil {
		return nil, toolkit.NewInvalidInput("webhook_url is not a valid Discord webhook URL")
	}
	id, token := match[1], match[2]

	session, err := discordgo.New("")
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}

	_, err = session.WebhookExecute(id, token, false, &discordgo.WebhookParams{
		Content:   args.Content,
		Username:  args.Username,
		AvatarURL: args.AvatarURL,
	})
	if err != nil {
		return nil, toolkit.NewExecutionFailed("Discord webhook error: " + err.Error())
	}

	result, err := json.Marshal(map[string]any{"success": true})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}
