package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/0mao0/minerpick/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestAlignCommand(t *testing.T) {
	dir := t.TempDir()

	md := filepath.Join(dir, "content.md")
	raw := filepath.Join(dir, "raw_content_list.json")

	require.NoError(t, os.WriteFile(md, []byte("# Overview\n\nThe quick brown fox jumps over the lazy dog.\n"), 0o644))
	require.NoError(t, os.WriteFile(raw, []byte(`{"content_list": [
		{"type": "text", "text": "Overview", "text_level": 1, "page_idx": 0, "bbox": [10, 10, 200, 30]},
		{"type": "discarded", "text": "Page 1", "page_idx": 0, "bbox": [10, 980, 60, 995]},
		{"type": "text", "text": "The quick brown fox jumps over the lazy dog.", "page_idx": 0, "bbox": [10, 40, 900, 80]}
	]}`), 0o644))

	out, err := run(t, "align", md, raw, "--output", "yaml")
	require.NoError(t, err)

	var res alignResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))

	assert.Equal(t, 2, res.Stats.Blocks)
	assert.Equal(t, 2, res.Stats.Matched)
	assert.Equal(t, 2, res.Stats.Candidates)

	data, err := os.ReadFile(res.ContentListFile)
	require.NoError(t, err)

	var items []model.ContentItem
	require.NoError(t, json.Unmarshal(data, &items))

	require.Len(t, items, 2)
	assert.Equal(t, &model.BBox{10, 40, 900, 80}, items[1].BBox)

	assert.FileExists(t, filepath.Join(dir, "content_tables.json"))
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minerpick.yaml")

	out, err := run(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	assert.FileExists(t, path)

	_, err = run(t, "init", path)
	require.Error(t, err)

	_, err = run(t, "init", path, "--force")
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "minerpick dev")
}

func TestUnknownOutputFormat(t *testing.T) {
	dir := t.TempDir()

	md := filepath.Join(dir, "content.md")
	raw := filepath.Join(dir, "raw.json")

	require.NoError(t, os.WriteFile(md, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(raw, []byte(`[]`), 0o644))

	_, err := run(t, "align", md, raw, "-o", "xml")
	require.Error(t, err)
}
