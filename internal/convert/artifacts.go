package convert

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/0mao0/minerpick/internal/align"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/model"
	"github.com/0mao0/minerpick/internal/parser"
)

func writeArtifacts(outDir string, lay *layout.Layout, res *align.Result) (*parser.Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	result := &parser.Result{
		MarkdownFile:      filepath.Join(outDir, MarkdownFile),
		ContentListFile:   filepath.Join(outDir, ContentListFile),
		ContentTablesFile: filepath.Join(outDir, ContentTablesFile),

		Blocks:        res.Stats.Blocks,
		Matched:       res.Stats.Matched,
		LowConfidence: res.Stats.LowConfidence,
		Unresolved:    res.Stats.Unresolved,
		Tables:        len(res.Tables),
	}

	if err := os.WriteFile(result.MarkdownFile, []byte(lay.Markdown), 0o644); err != nil {
		return nil, err
	}

	if err := WriteContentList(result.ContentListFile, res.Items); err != nil {
		return nil, err
	}

	tables := res.Tables
	if tables == nil {
		tables = map[string]model.TableDefinition{}
	}

	if err := WriteJSON(result.ContentTablesFile, tables); err != nil {
		return nil, err
	}

	result.OutlineFile = filepath.Join(outDir, OutlineFile)

	if err := WriteJSON(result.OutlineFile, BuildOutline(res.Items)); err != nil {
		return nil, err
	}

	if len(lay.Raw) > 0 {
		result.RawContentListFile = filepath.Join(outDir, RawContentListFile)

		var raw any
		if err := json.Unmarshal(lay.Raw, &raw); err != nil {
			return nil, err
		}

		if err := WriteJSON(result.RawContentListFile, raw); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// WriteJSON writes v indented by two spaces. HTML characters are not escaped
// so table bodies stay readable.
func WriteJSON(path string, v any) error {
	var b bytes.Buffer

	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return err
	}

	return os.WriteFile(path, b.Bytes(), 0o644)
}

// WriteContentList writes a content list without its discarded items.
func WriteContentList(path string, items []model.ContentItem) error {
	if items == nil {
		items = []model.ContentItem{}
	}

	data, err := json.Marshal(items)

	if err != nil {
		return err
	}

	v, err := FilterDiscarded(data)

	if err != nil {
		return err
	}

	return WriteJSON(path, v)
}

// FilterDiscarded decodes a content list and drops the items of type
// discarded. Both a bare array and an object wrapping it under
// "content_list" are accepted; other values are returned unchanged.
func FilterDiscarded(data []byte) (any, error) {
	var v any

	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case []any:
		return dropDiscarded(t), nil

	case map[string]any:
		if list, ok := t["content_list"].([]any); ok {
			t["content_list"] = dropDiscarded(list)
		}
		return t, nil
	}

	return v, nil
}

func dropDiscarded(items []any) []any {
	out := make([]any, 0, len(items))

	for _, item := range items {
		if m, ok := item.(map[string]any); ok && m["type"] == model.ContentDiscarded {
			continue
		}

		out = append(out, item)
	}

	return out
}
