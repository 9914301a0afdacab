// Package adapters holds thin pass-through tools to external collaborator
// services: LLM providers, chat-notification webhooks, and version control.
// The LLM and notification tools take their credential from the caller's
// arguments first, then fall back to the named secret in the vault (a lookup
// by name, not ${secrets.KEY} substitution); the git and web tools need no
// credential. These tools are only registered
// when Config.ExtrasEnabled is true.
package adapters

import (
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// Register adds every adapter tool to reg. Callers gate this on
// Config.ExtrasEnabled; Register itself does not check the flag so tests
// can exercise these tools directly regardless of config.
func Register(reg *toolkit.Registry) {
	reg.Register(LLMAnthropic{})
	reg.Register(LLMOpenAI{})
	reg.Register(NotifySlack{})
	reg.Register(NotifyDiscord{})
	reg.Register(GitStatus{})
	reg.Register(GitLog{})
	reg.Register(WebExtract{})
}

// resolveSecret returns the argument value if non-empty, else the named
// secret from the vault, else ok=false.
func resolveSecret(argValue string, vaultGet func(string) (string, bool), secretName string) (string, bool) {
	if argValue != "" {
		return argValue, true
	}
	if vaultGet == nil {
		return "", false
	}
	return vaultGet(secretName)
}
