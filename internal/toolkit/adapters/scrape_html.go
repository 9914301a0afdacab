package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

const defaultMaxExtractLength = 50000

// WebExtract fetches a page and extracts its text content or links.
type WebExtract struct{}

type webExtractArgs struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	MaxLength int    `json:"max_length"`
}

func (WebExtract) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "web.extract",
		Description: "Fetches a web page and extracts clean text content or links, stripping scripts and styles.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "URL to fetch"},
				"format": map[string]any{
					"type": "string", "enum": []string{"text", "links"},
					"description": "Output format (default text)",
				},
				"max_length": map[string]any{"type": "integer", "description": "Max characters to return (default 50000)"},
			},
			"required": []string{"url"},
		},
	}
}

func (WebExtract) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args webExtractArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	if args.URL == "" {
		return nil, toolkit.NewInvalidInput("missing 'url'")
	}
	maxLength := args.MaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxExtractLength
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
	if err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	req.Header.Set("User-Agent", "nexus-web-extract/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to fetch URL: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, toolkit.NewExecutionFailed("server returned status " + resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, toolkit.NewExecutionFailed("failed to parse HTML: " + err.Error())
	}

	var resultPayload map[string]any
	if args.Format == "links" {
		links := extractLinks(doc)
		resultPayload = map[string]any{"url": args.URL, "links": links, "count": len(links)}
	} else {
		text := extractText(doc)
		text = strings.TrimSpace(text)
		if len(text) > maxLength {
			text = text[:maxLength]
		}
		resultPayload = map[string]any{"url": args.URL, "text": text, "length": len(text)}
	}

	result, err := json.Marshal(resultPayload)
	if err != nil {
		return nil, toolkit.NewInternal(err.Error())
	}
	return toolkit.Text(string(result)), nil
}

var skippedTags = map[string]bool{"script": true, "style": true, "noscript": true, "head": true}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && skippedTags[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			trimmed := strings.TrimSpace(node.Data)
			if trimmed != "" {
				sb.WriteString(trimmed)
				sb.WriteString(" ")
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func extractLinks(n *html.Node) []map[string]string {
	var links []map[string]string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "a" {
			href := ""
			for _, attr := range node.Attr {
				if attr.Key == "href" {
					href = attr.Val
					break
				}
			}
			if href != "" {
				links = append(links, map[string]string{"href": href, "text": strings.TrimSpace(extractText(node))})
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return links
}
