package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

func isPathAllowed(path string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	canonical, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	canonical, err = filepath.EvalSymlinks(canonical)
	if err != nil {
		// Path (or its parent, for not-yet-created files) may not exist
		// yet; fall back to the lexical absolute path.
		canonical, err = filepath.Abs(path)
		if err != nil {
			return false
		}
	}

	for _, a := range allowed {
		allowedAbs, err := filepath.Abs(a)
		if err != nil {
			continue
		}
		allowedCanonical, err := filepath.EvalSymlinks(allowedAbs)
		if err != nil {
			allowedCanonical = allowedAbs
		}
		rel, err := filepath.Rel(allowedCanonical, canonical)
		if err == nil && rel != ".." && !hasDotDotPrefix(rel) {
			return true
		}
	}
	return false
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

// FsReadFile reads a file's contents, restricted to the configured
// allowed-read-paths list.
type FsReadFile struct{}

type fsReadArgs struct {
	Path string `json:"path"`
}

func (FsReadFile) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "fs.read_file",
		Description: "Reads the contents of a file. Only allowed paths can be accessed.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "The path to the file to read"},
			},
			"required": []string{"path"},
		},
	}
}

func (FsReadFile) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args fsReadArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}

	if _, err := os.Stat(args.Path); err != nil {
		return nil, toolkit.NewExecutionFailed(fmt.Sprintf("file not found: %s", args.Path))
	}

	allowed := state.Config.Security.AllowedReadPaths
	if !isPathAllowed(args.Path, allowed) {
		return nil, toolkit.NewPermissionDenied(fmt.Sprintf("path not in allowed directories: %s", args.Path))
	}

	content, err := os.ReadFile(args.Path)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(fmt.Sprintf("failed to read file: %v", err))
	}
	return toolkit.Text(string(content)), nil
}

// FsWriteFile writes (or appends to) a file, restricted to the configured
// allowed-write-paths list.
type FsWriteFile struct{}

type fsWriteArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Append  bool   `json:"append"`
}

func (FsWriteFile) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "fs.write_file",
		Description: "Writes content to a file. Only allowed paths can be accessed.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string", "description": "The path to the file to write"},
				"content": map[string]any{"type": "string", "description": "The content to write to the file"},
				"append":  map[string]any{"type": "boolean", "description": "If true, append to the file instead of overwriting", "default": false},
			},
			"required": []string{"path", "content"},
		},
	}
}

func (FsWriteFile) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args fsWriteArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}

	allowed := state.Config.Security.AllowedWritePaths
	if !isPathAllowed(args.Path, allowed) {
		return nil, toolkit.NewPermissionDenied(fmt.Sprintf("path not in allowed directories: %s", args.Path))
	}

	if parent := filepath.Dir(args.Path); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, toolkit.NewExecutionFailed(fmt.Sprintf("failed to create directories: %v", err))
		}
	}

	if args.Append {
		f, err := os.OpenFile(args.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, toolkit.NewExecutionFailed(fmt.Sprintf("failed to open file: %v", err))
		}
		defer f.Close()
		if _, err := f.WriteString(args.Content); err != nil {
			return nil, toolkit.NewExecutionFailed(fmt.Sprintf("failed to write file: %v", err))
		}
	} else if err := os.WriteFile(args.Path, []byte(args.Content), 0o644); err != nil {
		return nil, toolkit.NewExecutionFailed(fmt.Sprintf("failed to write file: %v", err))
	}

	result, err := json.Marshal(map[string]any{
		"success":       true,
		"path":          args.Path,
		"bytes_written": len(args.Content),
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}
