package align

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0mao0/minerpick/internal/model"
)

// grid builds a cols-wide table with the given number of rows. The first
// headers rows are header rows.
func grid(page, rows, cols, headers int) []model.Cell {
	var cells []model.Cell

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, model.Cell{
				Row:      r,
				Col:      c,
				RowSpan:  1,
				ColSpan:  1,
				IsHeader: r < headers,
				Page:     page,
			})
		}
	}

	return cells
}

func TestMergeContinuation(t *testing.T) {
	a := model.TableDefinition{ID: "a", Cells: grid(0, 3, 2, 1)}
	b := model.TableDefinition{ID: "b", Cells: grid(1, 4, 2, 1)}

	cells := mergeContinuation(a.Cells, b)

	merged := model.TableDefinition{Cells: cells}
	assert.Equal(t, 3+4-1-1, merged.MaxRow())

	seen := make(map[[2]int]bool)
	for _, c := range cells {
		key := [2]int{c.Row, c.Col}
		require.False(t, seen[key], "duplicate cell %v", key)
		seen[key] = true
	}

	for _, c := range cells[len(a.Cells):] {
		assert.False(t, c.IsHeader)
		assert.Equal(t, 1, c.Page)
	}

	assert.Len(t, a.Cells, 6, "input cells must not be modified")
}

func TestMergeContinuationHeaderInMiddle(t *testing.T) {
	part := model.TableDefinition{Cells: []model.Cell{
		{Row: 0, Col: 0},
		{Row: 1, Col: 0, IsHeader: true},
		{Row: 2, Col: 0},
	}}

	cells := mergeContinuation([]model.Cell{{Row: 0, Col: 0}}, part)
	require.Len(t, cells, 3)

	assert.Equal(t, 1, cells[1].Row)
	assert.Equal(t, 2, cells[2].Row)
}

func TestReconcileTableContinuation(t *testing.T) {
	md := "Intro text here\n\n| h1 | h2 |\n|---|---|\n| a | b |\n\nAfter table paragraph"

	elements := []model.Element{
		text("Intro text here", 0, box(0, 0, 100, 10)),
		table("t1", 0, box(0, 700, 500, 990), ""),
		table("t2", 1, box(0, 10, 500, 200), ""),
		text("After table paragraph", 1, box(0, 210, 100, 220)),
	}

	enriched := map[string]model.TableDefinition{
		"t1": {
			ID: "t1", Page: 0, BBox: model.BBox{0, 700, 500, 990},
			Markdown: "| h1 | h2 |\n|---|---|\n| a | b |",
			Cells:    grid(0, 2, 2, 1),
			Enriched: true,
		},
		"t2": {
			ID: "t2", Page: 1, BBox: model.BBox{0, 10, 500, 200},
			Markdown: "| h1 | h2 |\n|---|---|\n| c | d |\n| e | f |",
			Cells:    grid(1, 3, 2, 1),
			Enriched: true,
		},
	}

	res := Reconcile(md, elements, enriched)
	require.Len(t, res.Items, 3)

	item := res.Items[1]
	assert.Equal(t, model.ContentTable, item.Type)
	assert.Equal(t, "t1", item.TableID)
	require.NotNil(t, item.Page)
	assert.Equal(t, 0, *item.Page)
	assert.Equal(t, enriched["t1"].Markdown, item.Text)

	primary := res.Tables["t1"]
	assert.Equal(t, []string{"t2"}, primary.Continuations)
	assert.Equal(t, 2+3-1-1, primary.MaxRow())
	assert.Len(t, primary.Cells, 4+4)

	assert.Equal(t, "t1", res.Tables["t2"].ContinuationOf)
	assert.Len(t, res.Tables["t2"].Cells, 6, "continuation keeps its own cells")

	require.NotNil(t, res.Items[2].Page)
	assert.Equal(t, 1, *res.Items[2].Page)
	assert.Equal(t, 1, res.Stats.Continuations)
}

func TestReconcileSavedTables(t *testing.T) {
	md := "Intro text here\n\n| h1 | h2 |\n|---|---|\n| a | b |\n\nAfter table paragraph"

	elements := []model.Element{
		text("Intro text here", 0, box(0, 0, 100, 10)),
		table("t1", 0, box(0, 700, 500, 990), ""),
		table("t2", 1, box(0, 10, 500, 200), ""),
		text("After table paragraph", 1, box(0, 210, 100, 220)),
	}

	enriched := map[string]model.TableDefinition{
		"t1": {
			ID: "t1", Page: 0, BBox: model.BBox{0, 700, 500, 990},
			Markdown: "| h1 | h2 |\n|---|---|\n| a | b |",
			Cells:    grid(0, 2, 2, 1),
			Enriched: true,
		},
		"t2": {
			ID: "t2", Page: 1, BBox: model.BBox{0, 10, 500, 200},
			Markdown: "| h1 | h2 |\n|---|---|\n| c | d |\n| e | f |",
			Cells:    grid(1, 3, 2, 1),
			Enriched: true,
		},
	}

	first := Reconcile(md, elements, enriched)

	data, err := json.Marshal(first.Tables)
	require.NoError(t, err)

	var saved map[string]model.TableDefinition
	require.NoError(t, json.Unmarshal(data, &saved))

	second := Reconcile(md, elements, saved)
	require.Len(t, second.Items, 3)

	assert.Equal(t, "t1", second.Items[1].TableID)
	assert.Equal(t, first.Tables["t1"].MaxRow(), second.Tables["t1"].MaxRow())
	assert.Len(t, second.Tables["t1"].Cells, len(first.Tables["t1"].Cells))
	assert.Equal(t, []string{"t2"}, second.Tables["t1"].Continuations)
	assert.Equal(t, "t1", second.Tables["t2"].ContinuationOf)
	assert.Zero(t, second.Stats.Continuations)
}

func TestMatchTable(t *testing.T) {
	block := Segment("| fruit | price |\n|---|---|\n| apple | 3 |")[0]

	t.Run("broadened search", func(t *testing.T) {
		var regions []model.Element
		for i := 0; i < 6; i++ {
			regions = append(regions, table(fmt.Sprintf("r%d", i), 0, box(0, float64(i*10), 10, float64(i*10+5)), "| zzz |"))
		}
		regions = append(regions, table("r6", 0, box(0, 100, 10, 105), block.Raw))

		m := newMatcher(nil, MergeTableDefinitions(regions, nil))

		idx, ok := m.matchTable(block)
		require.True(t, ok)
		assert.Equal(t, "r6", m.defs[idx].ID)
		assert.Equal(t, 7, m.tp)
	})

	t.Run("positional fallback", func(t *testing.T) {
		m := newMatcher(nil, MergeTableDefinitions([]model.Element{
			table("empty", 2, box(0, 0, 10, 10), ""),
		}, nil))
		m.floor = 1

		idx, ok := m.matchTable(block)
		require.True(t, ok)
		assert.Equal(t, "empty", m.defs[idx].ID)
		assert.Equal(t, 2, m.floor)
	})

	t.Run("nothing at or after the floor", func(t *testing.T) {
		m := newMatcher(nil, MergeTableDefinitions([]model.Element{
			table("old", 0, box(0, 0, 10, 10), ""),
		}, nil))
		m.floor = 3

		_, ok := m.matchTable(block)
		assert.False(t, ok)
	})

	t.Run("raw definition keeps the markdown block text", func(t *testing.T) {
		res := Reconcile(block.Raw, []model.Element{
			table("", 0, box(0, 0, 10, 10), "<table><tr><td>fruit</td><td>price</td></tr><tr><td>apple</td><td>3</td></tr></table>"),
		}, nil)

		require.Len(t, res.Items, 1)
		assert.Equal(t, "table_0", res.Items[0].TableID)
		assert.Equal(t, block.Raw, res.Items[0].Text)
		assert.False(t, res.Tables["table_0"].Enriched)
	})
}

func TestTableScoreProximity(t *testing.T) {
	body := "| fruit | price |\n|---|---|\n| apple | 3 |"

	m := newMatcher(
		PrepareCandidates([]model.Element{text("Anchor", 5, box(0, 0, 1, 1))}),
		MergeTableDefinitions([]model.Element{
			table("same", 5, box(0, 0, 1, 1), body),
			table("near", 7, box(0, 0, 1, 1), body),
			table("far", 8, box(0, 0, 1, 1), body),
		}, nil),
	)

	variants := tableVariants(body)

	assert.InDelta(t, exactScore*samePageBoost, m.tableScore(variants, 0, 5), 1e-9)
	assert.InDelta(t, exactScore, m.tableScore(variants, 1, 5), 1e-9)
	assert.InDelta(t, exactScore*farPagePenalty, m.tableScore(variants, 2, 5), 1e-9)
}
