package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
)

const (
	resourceScheme           = "nexus://"
	maxResourcesListSample   = 100
	maxRecentMessagesSample  = 50
)

func handleResourcesList(ctx context.Context, state *runtime.State) (*protocol.ResourcesListResult, *protocol.ErrorObject) {
	resources := []protocol.Resource{
		{URI: resourceScheme + "conversations", Name: "Conversations", Description: "All conversations", MimeType: "application/json"},
		{URI: resourceScheme + "messages/recent", Name: "Recent messages", Description: "Most recently added messages across all conversations", MimeType: "application/json"},
		{URI: resourceScheme + "kv", Name: "Key/value store", Description: "All stored keys", MimeType: "application/json"},
	}

	if state.Store != nil {
		conversations, err := state.Store.ListConversations(ctx, maxResourcesListSample)
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		for _, c := range conversations {
			name := fmt.Sprintf("Conversation %s", shortID(c.ID))
			if c.Title != nil && *c.Title != "" {
				name = *c.Title
			}
			resources = append(resources, protocol.Resource{
				URI:         resourceScheme + "conversations/" + c.ID,
				Name:        name,
				Description: "Created " + c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				MimeType:    "application/json",
			})
		}

		keys, err := state.Store.KVList(ctx, "")
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		for _, k := range keys {
			resources = append(resources, protocol.Resource{
				URI:      resourceScheme + "kv/" + k,
				Name:     k,
				MimeType: "application/json",
			})
		}
	}

	return &protocol.ResourcesListResult{Resources: resources}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func handleResourcesRead(ctx context.Context, params []byte, state *runtime.State) (*protocol.ResourcesReadResult, *protocol.ErrorObject) {
	if len(params) == 0 {
		return nil, protocol.InvalidParams("missing params")
	}

	var readParams protocol.ResourcesReadParams
	if err := unmarshal(params, &readParams); err != nil {
		return nil, protocol.InvalidParams("invalid resources/read params: " + err.Error())
	}

	contents, errObj := readResource(ctx, readParams.URI, state)
	if errObj != nil {
		return nil, errObj
	}
	return &protocol.ResourcesReadResult{Contents: []protocol.ResourceContents{*contents}}, nil
}

func readResource(ctx context.Context, uri string, state *runtime.State) (*protocol.ResourceContents, *protocol.ErrorObject) {
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, protocol.InvalidParams(fmt.Sprintf("unrecognized resource URI scheme: %s", uri))
	}
	path := strings.TrimPrefix(uri, resourceScheme)

	switch {
	case path == "conversations":
		conversations, err := state.Store.ListConversations(ctx, maxResourcesListSample)
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		return jsonContent(uri, conversations)

	case strings.HasPrefix(path, "conversations/"):
		id := strings.TrimPrefix(path, "conversations/")
		conv, err := state.Store.GetConversation(ctx, id)
		if err != nil {
			return nil, protocol.InvalidParams(fmt.Sprintf("conversation not found: %s", id))
		}
		messages, err := state.Store.GetMessages(ctx, id, maxRecentMessagesSample)
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		return jsonContent(uri, map[string]any{"conversation": conv, "messages": messages})

	case path == "messages/recent":
		messages, err := state.Store.GetRecentMessages(ctx, maxRecentMessagesSample)
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		return jsonContent(uri, messages)

	case path == "kv":
		keys, err := state.Store.KVList(ctx, "")
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		return jsonContent(uri, keys)

	case strings.HasPrefix(path, "kv/"):
		key := strings.TrimPrefix(path, "kv/")
		entry, err := state.Store.KVGet(ctx, key)
		if err != nil {
			return nil, protocol.InternalError(err.Error())
		}
		if entry == nil {
			return nil, protocol.InvalidParams(fmt.Sprintf("key not found: %s", key))
		}
		return jsonContent(uri, entry)

	default:
		return nil, protocol.InvalidParams(fmt.Sprintf("unknown resource path: %s", path))
	}
}

func jsonContent(uri string, v any) (*protocol.ResourceContents, *protocol.ErrorObject) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, protocol.InternalError(err.Error())
	}
	return &protocol.ResourceContents{URI: uri, MimeType: "application/json", Text: string(b)}, nil
}
