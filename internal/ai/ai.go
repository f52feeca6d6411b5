package ai

import "context"

// StructuredElement is one positioned region as reported by a model. Boxes
// use the 0-1000 page space with a top-left origin.
type StructuredElement struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	TextLevel int       `json:"text_level,omitempty"`
	Page      int       `json:"page_idx"`
	BBox      []float64 `json:"bbox,omitempty"`
	TableBody string    `json:"table_body,omitempty"`
}

type StructuredLayout struct {
	Markdown string              `json:"markdown"`
	Elements []StructuredElement `json:"elements"`
}

type Analyzer interface {
	ExtractLayout(ctx context.Context, name string, pdf []byte) (StructuredLayout, error)
}

type Noop struct{}

func (Noop) ExtractLayout(ctx context.Context, name string, pdf []byte) (StructuredLayout, error) {
	return StructuredLayout{}, nil
}
