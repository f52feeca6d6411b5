// Package parser defines document parsers and the registry that selects one
// by provider id.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownProvider = errors.New("unknown provider")

// DocumentParser converts a PDF into the artifacts of one task directory.
type DocumentParser interface {
	Parse(ctx context.Context, pdfPath, outputDir string, options *Options) (*Result, error)
}

// Options carries per-request overrides of the upstream service.
type Options struct {
	APIURL string
	APIKey string
}

// Result lists the artifacts written to the output directory. Paths are
// absolute or relative to the working directory, as outputDir was.
type Result struct {
	MarkdownFile       string `json:"markdown_file" yaml:"markdown_file"`
	ContentListFile    string `json:"content_list_file" yaml:"content_list_file"`
	ContentTablesFile  string `json:"content_tables_file" yaml:"content_tables_file"`
	RawContentListFile string `json:"raw_content_list_file,omitempty" yaml:"raw_content_list_file,omitempty"`
	OutlineFile        string `json:"outline_file,omitempty" yaml:"outline_file,omitempty"`

	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	Blocks        int `json:"blocks" yaml:"blocks"`
	Matched       int `json:"matched" yaml:"matched"`
	LowConfidence int `json:"low_confidence" yaml:"low_confidence"`
	Unresolved    int `json:"unresolved" yaml:"unresolved"`
	Tables        int `json:"tables" yaml:"tables"`
}

// Registry maps provider ids to parsers. It is filled at startup and only
// read afterwards.
type Registry struct {
	parsers map[string]DocumentParser
}

func NewRegistry() *Registry {
	return &Registry{
		parsers: map[string]DocumentParser{},
	}
}

func (r *Registry) Register(name string, p DocumentParser) {
	r.parsers[name] = p
}

func (r *Registry) Get(name string) (DocumentParser, error) {
	p, ok := r.parsers[name]

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	return p, nil
}

// Names returns the registered provider ids in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))

	for name := range r.parsers {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
