package adapters

import (
	"context"
	"encoding/json"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// GitStatus reports the working tree status of a repository.
type GitStatus struct{}

type gitPathArgs struct {
	Path string `json:"path"`
}

func (GitStatus) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "git.status",
		Description: "Gets the working tree status of a git repository.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Repository path (default: current directory)"},
			},
		},
	}
}

func (GitStatus) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args gitPathArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}
	path := args.Path
	if path == "" {
		path = "."
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to open repository: " + err.Error())
	}

	head, err := repo.Head()
	branch := "unknown"
	if err == nil {
		branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to open worktree: " + err.Error())
	}
	status, err := wt.Status()
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to read status: " + err.Error())
	}

	changes := make([]map[string]any, 0, len(status))
	for file, fileStatus := range status {
		changes = append(changes, map[string]any{
			"file":     file,
			"staging":  string(fileStatus.Staging),
			"worktree": string(fileStatus.Worktree),
		})
	}

	result, err := json.Marshal(map[string]any{
		"branch":        branch,
		"clean":         status.IsClean(),
		"changes_count": len(changes),
		"changes":       changes,
	})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

// GitLog reports recent commits for a repository.
type GitLog struct{}

type gitLogArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (GitLog) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "git.log",
		Description: "Gets recent git commits.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":  map[string]any{"type": "string", "description": "Repository path"},
				"count": map[string]any{"type": "integer", "description": "Number of commits (default 10)"},
			},
		},
	}
}

func (GitLog) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args gitLogArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, toolkit.NewInvalidInput(err.Error())
		}
	}
	path := args.Path
	if path == "" {
		path = "."
	}
	count := args.Count
	if count <= 0 {
		count = 10
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to open repository: " + err.Error())
	}

	head, err := repo.Head()
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to resolve HEAD: " + err.Error())
	}

	commitIter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to read log: " + err.Error())
	}

	commits := make([]map[string]any, 0, count)
	err = commitIter.ForEach(func(c *object.Commit) error {
		if len(commits) >= count {
			return storer.ErrStop
		}
		commits = append(commits, map[string]any{
			"hash":       c.Hash.String(),
			"short_hash": c.Hash.String()[:7],
			"author":     c.Author.Name,
			"email":      c.Author.Email,
			"timestamp":  c.Author.When.Unix(),
			"message":    c.Message,
		})
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, toolkit.NewExecutionFailed("failed to iterate log: " + err.Error())
	}

	result, err := json.Marshal(map[string]any{"count": len(commits), "commits": commits})
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}
