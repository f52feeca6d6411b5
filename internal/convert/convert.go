// Package convert runs a conversion: layout extraction, table enrichment and
// alignment, and writes the resulting artifacts to a task directory.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"

	"github.com/0mao0/minerpick/internal/align"
	"github.com/0mao0/minerpick/internal/detector"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/model"
	"github.com/0mao0/minerpick/internal/parser"
)

var _ parser.DocumentParser = &Parser{}

type Parser struct {
	provider string

	extractor layout.Extractor
	detector  detector.Provider

	logger *slog.Logger
}

func New(cfg Config) *Parser {
	p := &Parser{
		provider: cfg.Provider,

		extractor: cfg.Extractor,
		detector:  cfg.Detector,

		logger: cfg.Logger,
	}

	if p.detector == nil {
		p.detector = detector.Noop{}
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

func (p *Parser) Parse(ctx context.Context, pdfPath, outputDir string, options *parser.Options) (*parser.Result, error) {
	if options == nil {
		options = new(parser.Options)
	}

	logger := p.logger.With("provider", p.provider, "file", filepath.Base(pdfPath))

	input, err := layout.ReadFile(pdfPath)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(pdfPath))
		}

		return nil, err
	}

	logger.Info("extracting layout", "bytes", len(input.Content))

	lay, err := p.extractor.Extract(ctx, input, &layout.ExtractOptions{
		URL:   options.APIURL,
		Token: options.APIKey,
	})

	if err != nil {
		logger.Error("layout extraction failed", "error", err)
		return nil, fmt.Errorf("extract layout: %w", err)
	}

	elements := align.AssignTableIDs(lay.Elements)
	enriched := p.enrich(ctx, logger, pdfPath, elements, lay.Tables)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := align.Reconcile(lay.Markdown, elements, enriched)

	logger.Info("aligned document",
		"blocks", res.Stats.Blocks,
		"candidates", res.Stats.Candidates,
		"tables", res.Stats.Tables,
		"matched", res.Stats.Matched,
		"low_confidence", res.Stats.LowConfidence,
		"unresolved", res.Stats.Unresolved,
		"continuations", res.Stats.Continuations,
	)

	result, err := writeArtifacts(outputDir, lay, res)

	if err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}

	if n, err := PageCount(pdfPath); err == nil {
		result.Pages = n
	} else {
		logger.Debug("page count unavailable", "error", err)
	}

	return result, nil
}

// enrich runs the cell detector over the table regions. Tables the extractor
// described itself are kept where the detector has nothing better.
func (p *Parser) enrich(ctx context.Context, logger *slog.Logger, pdfPath string, elements []model.Element, tables map[string]model.TableDefinition) map[string]model.TableDefinition {
	out := maps.Clone(tables)
	if out == nil {
		out = map[string]model.TableDefinition{}
	}

	regions := detector.Regions(elements)

	if len(regions) == 0 {
		return out
	}

	detected, err := p.detector.Detect(ctx, pdfPath, regions)

	if err != nil {
		logger.Warn("table detection failed, using raw table regions", "regions", len(regions), "error", err)
		return out
	}

	logger.Debug("detected tables", "regions", len(regions), "enriched", len(detected))

	maps.Copy(out, detected)
	return out
}
