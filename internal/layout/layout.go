// Package layout defines the contract of layout extractors: services that turn
// a PDF into markdown plus a positioned content list.
package layout

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/0mao0/minerpick/internal/model"
)

type Extractor interface {
	Extract(ctx context.Context, input File, options *ExtractOptions) (*Layout, error)
}

var (
	// ErrUnavailable wraps transport failures and non-2xx answers of a remote
	// extractor. Callers surface it as a bad gateway.
	ErrUnavailable = errors.New("layout service unavailable")

	ErrInvalidResponse = errors.New("invalid layout response")
	ErrUnsupported     = errors.New("unsupported type")
)

type File struct {
	Name string

	Content     []byte
	ContentType string
}

// ReadFile loads a PDF from disk.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	return File{
		Name:        filepath.Base(path),
		Content:     data,
		ContentType: "application/pdf",
	}, nil
}

// ExtractOptions carries per-request overrides. Empty fields keep the
// extractor's configured values.
type ExtractOptions struct {
	URL   string
	Token string
}

type Layout struct {
	Markdown string

	// Elements excludes discarded regions.
	Elements []model.Element

	// Tables holds table bodies the extractor produced itself, keyed by id.
	Tables map[string]model.TableDefinition

	// Raw is the content list exactly as the extractor returned it.
	Raw json.RawMessage
}

// IsPDF reports whether input looks like a PDF by name, content type or magic.
func IsPDF(input File) bool {
	if strings.EqualFold(filepath.Ext(input.Name), ".pdf") {
		return true
	}

	if input.ContentType == "application/pdf" {
		return true
	}

	return len(input.Content) >= 5 && string(input.Content[:5]) == "%PDF-"
}

// DropDiscarded removes discarded regions from elements.
func DropDiscarded(elements []model.Element) []model.Element {
	return slices.DeleteFunc(slices.Clone(elements), func(e model.Element) bool {
		return e.Type == model.ElementDiscarded
	})
}
