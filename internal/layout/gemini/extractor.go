// Package gemini extracts layouts by asking a multimodal model to read the
// PDF. Positions are the model's estimates and less exact than a layout
// service's.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/0mao0/minerpick/internal/ai"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/model"
)

var _ layout.Extractor = &Extractor{}

type Extractor struct {
	analyzer ai.Analyzer
}

func New(analyzer ai.Analyzer) *Extractor {
	return &Extractor{
		analyzer: analyzer,
	}
}

func (e *Extractor) Extract(ctx context.Context, input layout.File, options *layout.ExtractOptions) (*layout.Layout, error) {
	if !layout.IsPDF(input) {
		return nil, layout.ErrUnsupported
	}

	doc, err := e.analyzer.ExtractLayout(ctx, input.Name, input.Content)

	if errors.Is(err, ai.ErrInvalidResponse) {
		return nil, fmt.Errorf("%w: %w", layout.ErrInvalidResponse, err)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", layout.ErrUnavailable, err)
	}

	elements := make([]model.Element, 0, len(doc.Elements))

	for _, s := range doc.Elements {
		elements = append(elements, convertElement(s))
	}

	raw, err := json.Marshal(elements)

	if err != nil {
		return nil, err
	}

	return &layout.Layout{
		Markdown: doc.Markdown,
		Elements: layout.DropDiscarded(elements),
		Tables:   map[string]model.TableDefinition{},
		Raw:      raw,
	}, nil
}

func convertElement(s ai.StructuredElement) model.Element {
	e := model.Element{
		Type:      s.Type,
		Text:      s.Text,
		TextLevel: s.TextLevel,
		Page:      s.Page,
		TableBody: s.TableBody,
	}

	if e.Type == "" {
		e.Type = model.ElementText
	}

	if e.Page < 0 {
		e.Page = model.NoPage
	}

	if len(s.BBox) == 4 {
		b := model.BBox{}
		for i, v := range s.BBox {
			b[i] = math.Max(0, math.Min(1000, v))
		}

		if b.Valid() {
			e.BBox = &b
		}
	}

	return e
}
