package builtin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

func marshalOrInternal(v any) (*toolkit.Output, *toolkit.Error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(b)), nil
}

// ConversationCreate opens a new conversation thread.
type ConversationCreate struct{}

type conversationCreateArgs struct {
	Title    *string        `json:"title"`
	Metadata map[string]any `json:"metadata"`
}

func (ConversationCreate) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "conversation.create",
		Description: "Creates a new conversation thread.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":    map[string]any{"type": "string", "description": "Conversation title"},
				"metadata": map[string]any{"type": "object", "description": "Optional metadata"},
			},
		},
	}
}

func (ConversationCreate) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args conversationCreateArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}

	var metadata *string
	if args.Metadata != nil {
		b, err := json.Marshal(args.Metadata)
		if err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
		s := string(b)
		metadata = &s
	}

	id, err := state.Store.CreateConversation(ctx, args.Title, metadata)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	return marshalOrInternal(map[string]any{
		"success":         true,
		"conversation_id": id,
		"title":           args.Title,
	})
}

// ConversationAdd appends a message to an existing conversation.
type ConversationAdd struct{}

type conversationAddArgs struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

func (ConversationAdd) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "conversation.add",
		Description: "Adds a message to a conversation.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"conversation_id": map[string]any{"type": "string", "description": "Conversation ID"},
				"role":            map[string]any{"type": "string", "enum": []string{"user", "assistant", "system"}, "description": "Message role"},
				"content":         map[string]any{"type": "string", "description": "Message content"},
			},
			"required": []string{"conversation_id", "role", "content"},
		},
	}
}

func (ConversationAdd) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args conversationAddArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.ConversationID == "" || args.Role == "" || args.Content == "" {
		return nil, toolkit.NewInvalidInput("missing 'conversation_id', 'role', or 'content'")
	}

	messageID, err := state.Store.AddMessage(ctx, args.ConversationID, args.Role, args.Content, nil)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	return marshalOrInternal(map[string]any{
		"success":         true,
		"message_id":      messageID,
		"conversation_id": args.ConversationID,
	})
}

// ConversationGet returns a conversation's messages, oldest first.
type ConversationGet struct{}

type conversationGetArgs struct {
	ConversationID string `json:"conversation_id"`
	Limit          int    `json:"limit"`
}

func (ConversationGet) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "conversation.get",
		Description: "Gets messages from a conversation.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"conversation_id": map[string]any{"type": "string", "description": "Conversation ID"},
				"limit":           map[string]any{"type": "integer", "description": "Max messages to return (default: 50)"},
			},
			"required": []string{"conversation_id"},
		},
	}
}

func (ConversationGet) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	args := conversationGetArgs{Limit: 50}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.ConversationID == "" {
		return nil, toolkit.NewInvalidInput("missing 'conversation_id'")
	}
	if args.Limit <= 0 {
		args.Limit = 50
	}

	messages, err := state.Store.GetMessages(ctx, args.ConversationID, args.Limit)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]any{
			"id":         m.ID,
			"role":       m.Role,
			"content":    m.Content,
			"created_at": m.CreatedAt,
		})
	}

	return marshalOrInternal(map[string]any{
		"conversation_id": args.ConversationID,
		"count":           len(out),
		"messages":        out,
	})
}

// ConversationList enumerates conversations, most recently updated first.
type ConversationList struct{}

type conversationListArgs struct {
	Limit int `json:"limit"`
}

func (ConversationList) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "conversation.list",
		Description: "Lists all conversations.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer", "description": "Max conversations to return (default: 20)"},
			},
		},
	}
}

func (ConversationList) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	args := conversationListArgs{Limit: 20}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}

	conversations, err := state.Store.ListConversations(ctx, args.Limit)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	out := make([]map[string]any, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, map[string]any{
			"id":         c.ID,
			"title":      c.Title,
			"created_at": c.CreatedAt,
			"updated_at": c.UpdatedAt,
		})
	}

	return marshalOrInternal(map[string]any{
		"count":         len(out),
		"conversations": out,
	})
}

// ConversationSearch does a substring search over every conversation's messages.
type ConversationSearch struct{}

type conversationSearchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (ConversationSearch) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "conversation.search",
		Description: "Searches messages across all conversations.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search query"},
				"limit": map[string]any{"type": "integer", "description": "Max results (default: 20)"},
			},
			"required": []string{"query"},
		},
	}
}

func (ConversationSearch) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	args := conversationSearchArgs{Limit: 20}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Query == "" {
		return nil, toolkit.NewInvalidInput("missing 'query'")
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}

	results, err := state.Store.SearchMessages(ctx, args.Query, args.Limit)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}

	out := make([]map[string]any, 0, len(results))
	for _, m := range results {
		out = append(out, map[string]any{
			"message_id":      m.ID,
			"conversation_id": m.ConversationID,
			"role":            m.Role,
			"content":         m.Content,
			"created_at":      m.CreatedAt,
		})
	}

	return marshalOrInternal(map[string]any{
		"query":   args.Query,
		"count":   len(out),
		"results": out,
	})
}

// KVSet stores a value under a key, with an optional TTL in seconds.
type KVSet struct{}

type kvSetArgs struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	TTLSecs   *int64          `json:"ttl_secs"`
}

func (KVSet) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "kv.set",
		Description: "Stores a JSON value under a key, with an optional expiry.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":      map[string]any{"type": "string", "description": "Key"},
				"value":    map[string]any{"description": "JSON value to store"},
				"ttl_secs": map[string]any{"type": "integer", "description": "Optional time-to-live in seconds"},
			},
			"required": []string{"key", "value"},
		},
	}
}

func (KVSet) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args kvSetArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Key == "" {
		return nil, toolkit.NewInvalidInput("missing 'key'")
	}

	var ttl *time.Duration
	if args.TTLSecs != nil {
		d := time.Duration(*args.TTLSecs) * time.Second
		ttl = &d
	}

	if err := state.Store.KVSet(ctx, args.Key, args.Value, ttl); err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}
	return marshalOrInternal(map[string]any{"success": true, "key": args.Key})
}

// KVGet retrieves a stored value by key.
type KVGet struct{}

type kvGetArgs struct {
	Key string `json:"key"`
}

func (KVGet) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "kv.get",
		Description: "Retrieves a value stored by kv.set.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key": map[string]any{"type": "string", "description": "Key"},
			},
			"required": []string{"key"},
		},
	}
}

func (KVGet) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args kvGetArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.Key == "" {
		return nil, toolkit.NewInvalidInput("missing 'key'")
	}

	kv, err := state.Store.KVGet(ctx, args.Key)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}
	if kv == nil {
		return marshalOrInternal(map[string]any{"found": false, "key": args.Key})
	}
	return marshalOrInternal(map[string]any{
		"found":      true,
		"key":        kv.Key,
		"value":      kv.Value,
		"updated_at": kv.UpdatedAt,
	})
}

// KVDelete removes a stored key.
type KVDelete struct{}

func (KVDelete) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "kv.delete",
		Description: "Deletes a stored key.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"key": map[string]any{"type": "string"}},
			"required":   []string{"key"},
		},
	}
}

func (KVDelete) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args kvGetArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if err := state.Store.KVDelete(ctx, args.Key); err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}
	return marshalOrInternal(map[string]any{"success": true})
}

// KVList enumerates stored keys, optionally filtered by prefix.
type KVList struct{}

type kvListArgs struct {
	Prefix string `json:"prefix"`
}

func (KVList) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "kv.list",
		Description: "Lists stored keys, optionally filtered by prefix.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"prefix": map[string]any{"type": "string"}},
		},
	}
}

func (KVList) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args kvListArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}

	keys, err := state.Store.KVList(ctx, args.Prefix)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(err.Error())
	}
	return marshalOrInternal(map[string]any{"count": len(keys), "keys": keys})
}
