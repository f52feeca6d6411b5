package convert

import (
	"errors"
	"log/slog"

	"github.com/0mao0/minerpick/internal/detector"
	"github.com/0mao0/minerpick/internal/layout"
)

// ErrNotFound is returned when the input PDF does not exist.
var ErrNotFound = errors.New("input not found")

// Artifact file names inside a task directory.
const (
	MarkdownFile       = "content.md"
	ContentListFile    = "content_list.json"
	ContentTablesFile  = "content_tables.json"
	RawContentListFile = "raw_content_list.json"
	OutlineFile        = "outline.json"
)

type Config struct {
	// Provider names the parser in logs.
	Provider string

	Extractor layout.Extractor

	// Detector enriches table regions with cells. Nil disables enrichment.
	Detector detector.Provider

	Logger *slog.Logger
}
