package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0mao0/minerpick/internal/model"
)

func box(x0, y0, x1, y1 float64) *model.BBox {
	return &model.BBox{x0, y0, x1, y1}
}

func text(s string, page int, b *model.BBox) model.Element {
	return model.Element{Type: model.ElementText, Text: s, Page: page, BBox: b}
}

func table(id string, page int, b *model.BBox, body string) model.Element {
	return model.Element{Type: model.ElementTable, ID: model.FlexString(id), Page: page, BBox: b, TableBody: body}
}

func TestPrepareCandidates(t *testing.T) {
	elements := []model.Element{
		text("Hello", 0, box(0, 0, 10, 10)),
		table("t", 0, box(0, 20, 10, 30), ""),
		text("   ", 0, nil),
		text("-- !! --", 0, nil),
		{Type: model.ElementDiscarded, Text: "page 1", Page: 0},
		text("World", -1, nil),
	}

	cands := PrepareCandidates(elements)
	require.Len(t, cands, 2)

	assert.Equal(t, 0, cands[0].OriginalIndex)
	assert.Equal(t, "hello", cands[0].Compact)
	assert.True(t, cands[0].Resolvable())

	assert.Equal(t, 5, cands[1].OriginalIndex)
	assert.Equal(t, model.NoPage, cands[1].Page)
	assert.False(t, cands[1].HasPage())
	assert.False(t, cands[1].Resolvable())
}

func TestAssignTableIDs(t *testing.T) {
	in := []model.Element{
		table("", 0, nil, ""),
		text("x", 0, nil),
		table("keep", 1, nil, ""),
		table("", 2, nil, ""),
	}

	out := AssignTableIDs(in)

	assert.Equal(t, model.FlexString("table_0"), out[0].ID)
	assert.Equal(t, model.FlexString(""), out[1].ID)
	assert.Equal(t, model.FlexString("keep"), out[2].ID)
	assert.Equal(t, model.FlexString("table_1"), out[3].ID)

	assert.Empty(t, in[0].ID)

	regions := TableRegions(out)
	require.Len(t, regions, 3)
	assert.Equal(t, model.FlexString("table_1"), regions[2].ID)
}

func TestMergeTableDefinitions(t *testing.T) {
	regions := []model.Element{
		table("late", 1, box(0, 500, 100, 600), "| a |\n|---|"),
		table("early", 0, box(0, 100, 100, 200), "<table><tr><td>x</td></tr></table>"),
		table("late", 1, box(0, 500, 100, 600), ""),
	}

	enriched := map[string]model.TableDefinition{
		"late": {
			Page:     1,
			BBox:     model.BBox{0, 500, 100, 600},
			Markdown: "| a |\n|---|\n| 1 |",
			Cells:    []model.Cell{{Row: 0, Col: 0, IsHeader: true}, {Row: 1, Col: 0}},
			Enriched: true,
		},
		"orphan": {ID: "orphan", Page: 0, BBox: model.BBox{0, 300, 10, 310}, Enriched: true},
	}

	defs := MergeTableDefinitions(regions, enriched)
	require.Len(t, defs, 3)

	assert.Equal(t, "early", defs[0].ID)
	assert.False(t, defs[0].Enriched)
	assert.Contains(t, defs[0].HTML, "<table>")
	assert.Empty(t, defs[0].Markdown)
	assert.NotNil(t, defs[0].Cells)

	assert.Equal(t, "orphan", defs[1].ID)

	assert.Equal(t, "late", defs[2].ID)
	assert.True(t, defs[2].Enriched)
	assert.Len(t, defs[2].Cells, 2)
}
