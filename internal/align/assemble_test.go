package align

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0mao0/minerpick/internal/model"
)

const medley = `# 数据分析报告

本报告介绍了数据分析的主要方法与结果。

## Methods

We collected samples from three sites and measured the concentration of each
compound twice, averaging the results.

| site | value |
|---|---|
| A | 1.2 |

- first bullet point with a [link](http://example.com)
- second bullet point

<table><tr><td>x</td></tr>

<tr><td>y</td></tr></table>

***

Closing remarks on page two.`

func medleyElements() []model.Element {
	return []model.Element{
		text("数据分析报告", 0, box(100, 50, 900, 90)),
		text("本报告介绍了数据分析的主要方法与结果。", 0, box(100, 100, 900, 140)),
		text("Methods", 0, box(100, 160, 300, 180)),
		text("We collected samples from three sites and measured", 0, box(100, 200, 900, 220)),
		text("the concentration of each compound twice, averaging the results.", 0, box(100, 222, 900, 242)),
		table("", 0, box(100, 300, 900, 400), "| site | value |\n|---|---|\n| A | 1.2 |"),
		text("first bullet point with a link", 1, box(100, 50, 900, 70)),
		text("second bullet point", 1, box(100, 72, 900, 92)),
		{Type: model.ElementDiscarded, Text: "Page 1 footer", Page: 0},
		table("", 1, box(100, 120, 900, 200), "<table><tr><td>x</td></tr><tr><td>y</td></tr></table>"),
		text("Closing remarks on page two.", 1, box(100, 300, 900, 320)),
	}
}

func TestReconcileScenarioHeadingAndProse(t *testing.T) {
	res := Reconcile("# Intro\n\nHello world.", []model.Element{
		text("Intro", 0, box(0, 0, 100, 20)),
		text("Hello world.", 0, box(0, 30, 200, 50)),
	}, nil)

	require.Len(t, res.Items, 2)

	heading := res.Items[0]
	assert.Equal(t, model.ContentText, heading.Type)
	assert.Equal(t, 1, heading.TextLevel)
	require.True(t, heading.Resolved())
	assert.Equal(t, 0, *heading.Page)
	assert.Equal(t, model.BBox{0, 0, 100, 20}, *heading.BBox)

	prose := res.Items[1]
	assert.Equal(t, 0, prose.TextLevel)
	require.True(t, prose.Resolved())
	assert.Equal(t, 0, *prose.Page)
	assert.Equal(t, model.BBox{0, 30, 200, 50}, *prose.BBox)
	assert.Equal(t, []int{1}, prose.SourceIndices)
}

func TestReconcileScenarioTableWithoutDefinitions(t *testing.T) {
	res := Reconcile("Some text\n\n| a | b |\n|---|---|\n| 1 | 2 |", nil, nil)

	require.Len(t, res.Items, 2)

	item := res.Items[1]
	assert.Equal(t, model.ContentTable, item.Type)
	assert.Equal(t, 1, item.MDIndex)
	assert.Empty(t, item.TableID)
	assert.Nil(t, item.Page)
	assert.Nil(t, item.BBox)

	assert.Empty(t, res.Tables)
	assert.Equal(t, 2, res.Stats.Unresolved)
}

func TestReconcileCoverage(t *testing.T) {
	docs := []string{
		"",
		"single",
		medley,
		"# A\n\n# B\n\n# C",
		"| a | b |\n|---|---|\n\n| c | d |\n|---|---|",
	}

	for _, b := range Segment(docs[4]) {
		assert.Equal(t, KindTable, b.Kind)
	}

	for _, md := range docs {
		blocks := Segment(md)
		res := Reconcile(md, medleyElements(), nil)

		require.Len(t, res.Items, len(blocks))
		for i, item := range res.Items {
			assert.Equal(t, i, item.MDIndex)
		}
	}
}

func TestReconcileMedley(t *testing.T) {
	res := Reconcile(medley, medleyElements(), nil)

	blocks := Segment(medley)
	require.Len(t, blocks, 9)
	require.Len(t, res.Items, 9)

	pageOf := func(i int) int {
		t.Helper()
		require.NotNil(t, res.Items[i].Page, "item %d unresolved", i)
		return *res.Items[i].Page
	}

	assert.Equal(t, 0, pageOf(0))
	assert.Equal(t, 0, pageOf(1))
	assert.Equal(t, 0, pageOf(2))

	assert.Equal(t, []int{3, 4}, res.Items[3].SourceIndices)
	assert.Equal(t, model.BBox{100, 200, 900, 242}, *res.Items[3].BBox)

	assert.Equal(t, "table_0", res.Items[4].TableID)
	assert.Equal(t, 1, pageOf(5))
	assert.Equal(t, "table_1", res.Items[6].TableID)

	assert.Equal(t, []int{6, 7}, res.Items[5].SourceIndices)

	assert.False(t, res.Items[7].Resolved(), "separator line has no text")
	assert.Equal(t, []int{10}, res.Items[8].SourceIndices)
}

func TestReconcileDeterministic(t *testing.T) {
	first := Reconcile(medley, medleyElements(), nil)
	second := Reconcile(medley, medleyElements(), nil)

	a, err := json.Marshal(first.Items)
	require.NoError(t, err)
	b, err := json.Marshal(second.Items)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	a, err = json.Marshal(first.Tables)
	require.NoError(t, err)
	b, err = json.Marshal(second.Tables)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestPageFloorNeverDecreases(t *testing.T) {
	elements := []model.Element{
		text("First page heading", 0, box(0, 0, 10, 10)),
		text("Second page paragraph", 1, box(0, 0, 10, 10)),
		text("Stray first page footnote", 0, box(0, 900, 10, 910)),
		table("", 2, box(0, 0, 10, 10), "| q | r |\n|---|---|\n| 1 | 2 |"),
		text("Third page text", 2, box(0, 100, 10, 110)),
		table("", 0, box(0, 500, 10, 510), "| z | w |\n|---|---|\n| 9 | 8 |"),
		text("Fourth page text", 3, box(0, 0, 10, 10)),
	}

	md := "# First page heading\n\nSecond page paragraph\n\nStray first page footnote\n\n" +
		"| q | r |\n|---|---|\n| 1 | 2 |\n\nThird page text\n\n| z | w |\n|---|---|\n| 9 | 8 |\n\nFourth page text"

	elements = AssignTableIDs(elements)
	m := newMatcher(PrepareCandidates(elements), MergeTableDefinitions(TableRegions(elements), nil))

	blocks := Segment(md)
	require.Len(t, blocks, 7)
	assert.Equal(t, KindTable, blocks[3].Kind)
	assert.Equal(t, KindTable, blocks[5].Kind)

	floor := m.floor
	for _, b := range blocks {
		if b.Kind == KindTable {
			idx, ok := m.matchTable(b)
			if b.Index == 3 {
				require.True(t, ok)
				assert.Equal(t, 2, m.defs[idx].Page)
			} else {
				assert.False(t, ok, "a table behind the floor must not match")
			}
		} else {
			m.matchText(Prepare(b.Text))
		}

		require.GreaterOrEqual(t, m.floor, floor, "block %d lowered the floor", b.Index)
		floor = m.floor
	}

	assert.Equal(t, 3, m.floor)
}
