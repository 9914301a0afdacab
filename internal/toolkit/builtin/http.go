package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// HTTPRequest makes outbound HTTP requests, gated by the configured
// blocked/allowed URL pattern lists (blocked wins).
type HTTPRequest struct{}

type httpRequestArgs struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
	JSON    json.RawMessage   `json:"json"`
}

func (HTTPRequest) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "http.request",
		Description: "Makes an HTTP request to a URL. Supports GET, POST, PUT, DELETE, PATCH methods.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "The URL to request"},
				"method": map[string]any{
					"type": "string", "enum": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD"},
					"default": "GET", "description": "HTTP method",
				},
				"headers": map[string]any{
					"type": "object", "additionalProperties": map[string]any{"type": "string"},
					"description": "Request headers",
				},
				"body": map[string]any{"type": "string", "description": "Request body (for POST/PUT/PATCH)"},
				"json": map[string]any{"type": "object", "description": "JSON body (alternative to body, sets Content-Type)"},
			},
			"required": []string{"url"},
		},
	}
}

func isURLAllowed(url string, blocked, allowed []string) *toolkit.Error {
	for _, pattern := range blocked {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(url) {
			return toolkit.NewPermissionDenied(fmt.Sprintf("URL blocked by pattern: %s", pattern))
		}
	}

	if len(allowed) == 0 {
		return nil
	}

	for _, pattern := range allowed {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(url) {
			return nil
		}
	}
	return toolkit.NewPermissionDenied(fmt.Sprintf("URL not in allowed list: %s", url))
}

func (HTTPRequest) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args httpRequestArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.URL == "" {
		return nil, toolkit.NewInvalidInput("missing 'url' parameter")
	}

	httpCfg := state.Config.HTTPClient
	if toolErr := isURLAllowed(args.URL, httpCfg.BlockedURLs, httpCfg.AllowedURLs); toolErr != nil {
		return nil, toolErr
	}

	method := strings.ToUpper(args.Method)
	if method == "" {
		method = "GET"
	}
	switch method {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD":
	default:
		return nil, toolkit.NewInvalidInput(fmt.Sprintf("invalid HTTP method: %s", method))
	}

	var body io.Reader
	contentType := ""
	if len(args.JSON) > 0 {
		body = bytes.NewReader(args.JSON)
		contentType = "application/json"
	} else if args.Body != "" {
		body = strings.NewReader(args.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, args.URL, body)
	if err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	for k, v := range args.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", httpCfg.UserAgent)

	client := &http.Client{Timeout: time.Duration(httpCfg.TimeoutSecs) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(fmt.Sprintf("HTTP request failed: %v", err))
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, httpCfg.MaxResponseBytes+1)
	bodyBytes, err := io.ReadAll(limited)
	if err != nil {
		return nil, toolkit.NewExecutionFailed(fmt.Sprintf("failed to read response: %v", err))
	}
	if int64(len(bodyBytes)) > httpCfg.MaxResponseBytes {
		return nil, toolkit.NewExecutionFailed(fmt.Sprintf("response too large: exceeds %d bytes", httpCfg.MaxResponseBytes))
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	var bodyValue any
	if json.Valid(bodyBytes) {
		_ = json.Unmarshal(bodyBytes, &bodyValue)
	} else {
		bodyValue = string(bodyBytes)
	}

	result, marshalErr := json.Marshal(map[string]any{
		"status":     resp.StatusCode,
		"statusText": http.StatusText(resp.StatusCode),
		"headers":    headers,
		"body":       bodyValue,
		"size":       len(bodyBytes),
	})
	if marshalErr != nil {
		return nil, toolkit.NewInternal(marshalErr.Error())
	}
	return toolkit.Text(string(result)), nil
}
