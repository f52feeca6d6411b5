package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0mao0/minerpick/internal/ai"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/model"
)

type fakeAnalyzer struct {
	layout ai.StructuredLayout
	err    error
}

func (f fakeAnalyzer) ExtractLayout(ctx context.Context, name string, pdf []byte) (ai.StructuredLayout, error) {
	return f.layout, f.err
}

var doc = layout.File{Name: "doc.pdf", Content: []byte("%PDF-1.4")}

func TestExtract(t *testing.T) {
	e := New(fakeAnalyzer{layout: ai.StructuredLayout{
		Markdown: "# T\n\nBody",
		Elements: []ai.StructuredElement{
			{Type: "text", Text: "T", TextLevel: 1, Page: 0, BBox: []float64{-5, 10, 1200, 40}},
			{Type: "discarded", Text: "3", Page: 0, BBox: []float64{0, 980, 10, 990}},
			{Text: "Body", Page: -3, BBox: []float64{500, 10, 100, 40}},
			{Type: "table", TableBody: "| a |\n|---|", Page: 1},
		},
	}})

	res, err := e.Extract(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, "# T\n\nBody", res.Markdown)
	require.Len(t, res.Elements, 3)

	assert.Equal(t, &model.BBox{0, 10, 1000, 40}, res.Elements[0].BBox)

	assert.Equal(t, model.ElementText, res.Elements[1].Type)
	assert.Equal(t, model.NoPage, res.Elements[1].Page)
	assert.Nil(t, res.Elements[1].BBox, "inverted boxes are dropped")

	assert.Equal(t, "| a |\n|---|", res.Elements[2].TableBody)

	assert.Contains(t, string(res.Raw), `"discarded"`)
}

func TestExtractErrors(t *testing.T) {
	_, err := New(fakeAnalyzer{err: errors.New("quota")}).Extract(context.Background(), doc, nil)
	require.ErrorIs(t, err, layout.ErrUnavailable)

	_, err = New(fakeAnalyzer{err: fmt.Errorf("%w: no JSON found", ai.ErrInvalidResponse)}).Extract(context.Background(), doc, nil)
	require.ErrorIs(t, err, layout.ErrInvalidResponse)
	assert.NotErrorIs(t, err, layout.ErrUnavailable)

	_, err = New(ai.Noop{}).Extract(context.Background(), layout.File{Name: "x.docx"}, nil)
	require.ErrorIs(t, err, layout.ErrUnsupported)
}
