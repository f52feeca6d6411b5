// Package pdftext builds a layout from the text a PDF already encodes. It
// needs no remote service, which makes it useful offline and for born-digital
// documents. Scanned pages yield nothing.
package pdftext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"rsc.io/pdf"

	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/model"
)

var _ layout.Extractor = &Extractor{}

type Extractor struct {
	logger *slog.Logger
}

type Option func(*Extractor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func New(options ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

type mediaBox struct {
	x0, y0, x1, y1 float64
}

func (b mediaBox) width() float64  { return b.x1 - b.x0 }
func (b mediaBox) height() float64 { return b.y1 - b.y0 }

// letter is used when a page carries no usable MediaBox.
var letter = mediaBox{0, 0, 612, 792}

func (e *Extractor) Extract(ctx context.Context, input layout.File, options *layout.ExtractOptions) (*layout.Layout, error) {
	if !layout.IsPDF(input) {
		return nil, layout.ErrUnsupported
	}

	r, err := openReader(input.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", layout.ErrInvalidResponse, err)
	}

	type pageBlocks struct {
		index  int
		box    mediaBox
		blocks []block
	}

	var pages []pageBlocks
	var all []block

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)

		glyphs, err := content(p)
		if err != nil {
			e.logger.Warn("skipping unreadable page", "page", i-1, "error", err)
			continue
		}

		blocks := groupBlocks(groupLines(i-1, glyphs))

		pages = append(pages, pageBlocks{index: i - 1, box: pageBox(p), blocks: blocks})
		all = append(all, blocks...)
	}

	levels := headingLevels(all)

	var md []string
	var elements []model.Element

	for _, p := range pages {
		for _, b := range p.blocks {
			bbox := b.bbox(p.box)

			if b.kind == blockTable {
				body := renderTable(b.rows)

				md = append(md, body)
				elements = append(elements, model.Element{
					Type:      model.ElementTable,
					Page:      p.index,
					BBox:      &bbox,
					TableBody: body,
				})
				continue
			}

			text := b.text()
			if text == "" {
				continue
			}

			level := 0
			if len(b.lines) <= 2 && utf8.RuneCountInString(text) <= maxHeadingRunes {
				level = levels[roundSize(b.size())]
			}

			if level > 0 {
				md = append(md, strings.Repeat("#", level)+" "+text)
			} else {
				md = append(md, text)
			}

			elements = append(elements, model.Element{
				Type:      model.ElementText,
				Text:      text,
				TextLevel: level,
				Page:      p.index,
				BBox:      &bbox,
			})
		}
	}

	e.logger.Debug("extracted text layout", "file", input.Name, "pages", r.NumPage(), "elements", len(elements))

	raw, err := json.Marshal(elements)
	if err != nil {
		return nil, err
	}

	return &layout.Layout{
		Markdown: strings.Join(md, "\n\n"),
		Elements: elements,
		Tables:   map[string]model.TableDefinition{},
		Raw:      raw,
	}, nil
}

// openReader parses a PDF. The parser panics on some malformed input.
func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if v := recover(); v != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", v)
		}
	}()

	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func content(p pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if v := recover(); v != nil {
			glyphs, err = nil, fmt.Errorf("malformed page content: %v", v)
		}
	}()

	if p.V.IsNull() {
		return nil, fmt.Errorf("missing page object")
	}

	return p.Content().Text, nil
}

// pageBox resolves the MediaBox, which pages may inherit from their parents.
func pageBox(p pdf.Page) mediaBox {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}

		b := mediaBox{
			box.Index(0).Float64(),
			box.Index(1).Float64(),
			box.Index(2).Float64(),
			box.Index(3).Float64(),
		}

		if b.x0 > b.x1 {
			b.x0, b.x1 = b.x1, b.x0
		}

		if b.y0 > b.y1 {
			b.y0, b.y1 = b.y1, b.y0
		}

		if b.width() > 0 && b.height() > 0 {
			return b
		}
	}

	return letter
}
