package router

import "github.com/nexuslabs/nexus/internal/protocol"

// handlePromptsList always returns an empty list. Prompts are not part of
// this server's surface; tools are the primary extension point.
func handlePromptsList() protocol.PromptsListResult {
	return protocol.PromptsListResult{Prompts: []protocol.Prompt{}}
}
