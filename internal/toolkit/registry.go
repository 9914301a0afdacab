package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
)

// Registry holds every registered Tool, keyed by name, and dispatches
// tools/call requests to them. It satisfies runtime.Registry structurally.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry builds an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool, keyed by its definition name. Registering a name
// twice replaces the earlier tool.
func (r *Registry) Register(tool Tool) {
	name := tool.Definition().Name
	r.logger.Debug("registering tool", zap.String("name", name))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (runtime.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// getConcrete is like Get but returns the full toolkit.Tool (with Execute),
// not just the narrow runtime.Tool view.
func (r *Registry) getConcrete(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns every registered tool's definition, for tools/list.
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]protocol.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Definition())
	}
	return out
}

// Execute validates arguments against the tool's input schema (when it
// compiles as a JSON Schema) and then runs it.
func (r *Registry) Execute(ctx context.Context, name string, arguments json.RawMessage, state *runtime.State) (*Output, *Error) {
	tool, ok := r.getConcrete(name)
	if !ok {
		return nil, NewNotFound(name)
	}

	if err := validateArguments(tool.Definition(), arguments); err != nil {
		return nil, NewInvalidInput(err.Error())
	}

	return tool.Execute(ctx, arguments, state)
}

func validateArguments(def protocol.Tool, arguments json.RawMessage) error {
	if def.InputSchema == nil {
		return nil
	}

	schemaBytes, err := json.Marshal(def.InputSchema)
	if err != nil {
		return nil // malformed schema definition; skip validation rather than block the call
	}

	compiler := jsonschema.NewCompiler()
	unmarshalled, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil
	}
	const resourceName = "tool-input-schema.json"
	if err := compiler.AddResource(resourceName, unmarshalled); err != nil {
		return nil
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return nil
	}

	var instance any
	if len(arguments) == 0 {
		instance = map[string]any{}
	} else if err := json.Unmarshal(arguments, &instance); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("arguments do not match input schema: %w", err)
	}
	return nil
}
