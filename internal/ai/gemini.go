package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	genai "google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// ErrInvalidResponse is returned when the model answered but its reply could
// not be decoded.
var ErrInvalidResponse = errors.New("invalid model response")

type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

type GeminiOption func(*geminiOptions)

type geminiOptions struct {
	baseURL string
	logger  *slog.Logger
}

// WithBaseURL points the client at another endpoint, such as a proxy.
func WithBaseURL(url string) GeminiOption {
	return func(o *geminiOptions) {
		o.baseURL = url
	}
}

func WithLogger(logger *slog.Logger) GeminiOption {
	return func(o *geminiOptions) {
		o.logger = logger
	}
}

func NewGemini(ctx context.Context, apiKey, model string, options ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing gemini api key")
	}
	if model == "" {
		model = DefaultModel
	}

	o := geminiOptions{logger: slog.Default()}
	for _, option := range options {
		option(&o)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions.BaseURL = o.baseURL
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model, logger: o.logger}, nil
}

const layoutPrompt = `You are a document layout parser. Return ONLY valid JSON - no markdown code blocks, no explanations.

Convert this PDF into markdown and list every content region with its position.
Output ONLY this JSON structure:
{
  "markdown": "# Title\n\nFirst paragraph...",
  "elements": [
    {"type": "text", "text": "Title", "text_level": 1, "page_idx": 0, "bbox": [72, 60, 540, 90]},
    {"type": "text", "text": "First paragraph...", "page_idx": 0, "bbox": [72, 100, 540, 180]},
    {"type": "table", "table_body": "| a | b |\n|---|---|\n| 1 | 2 |", "page_idx": 1, "bbox": [72, 200, 540, 400]}
  ]
}

CRITICAL RULES:
- markdown: the full document text in reading order; blocks separated by a blank line
- headings use # to ###### and set text_level on their element
- tables appear in markdown as pipe tables and as one "table" element whose table_body is that same pipe table
- type: one of text, table, image, equation, discarded (page headers, footers and page numbers are discarded)
- page_idx: 0-based page number
- bbox: [x0, y0, x1, y1] scaled to 0-1000 of the page width and height, origin at the top-left corner
- text: the exact text of the region as it appears in the markdown, without markdown markup
- Return ONLY the JSON object
`

// ExtractLayout asks Gemini to read a PDF and describe its layout as JSON.
func (g *Gemini) ExtractLayout(ctx context.Context, name string, pdf []byte) (StructuredLayout, error) {
	var out StructuredLayout
	if g.client == nil {
		return out, errors.New("gemini not configured")
	}

	content := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: layoutPrompt},
				{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: pdf}},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, content, config)
	if err != nil {
		return out, fmt.Errorf("gemini API call failed: %w", err)
	}
	js := res.Text()

	g.logger.Debug("gemini layout response", "file", name, "model", g.model, "bytes", len(js))

	js = stripCodeFences(js)

	if err := json.Unmarshal([]byte(js), &out); err != nil {
		// Try to find first JSON object in the text
		if s := findFirstJSON(js); s != "" {
			if err2 := json.Unmarshal([]byte(s), &out); err2 != nil {
				return out, fmt.Errorf("%w: failed to parse Gemini response as JSON: %w (original error: %v)", ErrInvalidResponse, err2, err)
			}
		} else {
			return out, fmt.Errorf("%w: failed to parse Gemini response - no JSON found: %w", ErrInvalidResponse, err)
		}
	}

	g.logger.Debug("parsed gemini layout", "file", name, "elements", len(out.Elements))
	return out, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if firstNewline := strings.Index(s, "\n"); firstNewline != -1 {
			s = s[firstNewline+1:]
		}
	}

	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	return s
}

// findFirstJSON returns the first balanced {...} object in s. Braces inside
// JSON strings are skipped.
func findFirstJSON(s string) string {
	start := -1
	depth := 0
	inString, escaped := false, false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
