package model

import "sort"

// Cell is one detected table cell. Row and Col are grid indices; BBox is the
// cell's region on Page.
type Cell struct {
	Row      int  `json:"r"`
	Col      int  `json:"c"`
	RowSpan  int  `json:"row_span"`
	ColSpan  int  `json:"col_span"`
	IsHeader bool `json:"is_header"`

	Page int  `json:"page_idx"`
	BBox BBox `json:"bbox"`
}

func (c Cell) rowSpan() int {
	if c.RowSpan < 1 {
		return 1
	}
	return c.RowSpan
}

func (c Cell) colSpan() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// LastRow returns the last grid row covered by the cell.
func (c Cell) LastRow() int {
	return c.Row + c.rowSpan() - 1
}

// Covered returns every (row, col) position spanned by the cell.
func (c Cell) Covered() [][2]int {
	out := make([][2]int, 0, c.rowSpan()*c.colSpan())

	for r := c.Row; r < c.Row+c.rowSpan(); r++ {
		for col := c.Col; col < c.Col+c.colSpan(); col++ {
			out = append(out, [2]int{r, col})
		}
	}

	return out
}

// TableDefinition is a table region with its body and, when the cell detector
// succeeded, its cell grid.
type TableDefinition struct {
	ID   string `json:"id"`
	Page int    `json:"page_idx"`
	BBox BBox   `json:"bbox"`

	Markdown string `json:"md"`
	HTML     string `json:"html"`

	Cells    []Cell `json:"cells"`
	Enriched bool   `json:"enriched"`

	ContinuationOf string   `json:"continuation_of,omitempty"`
	Continuations  []string `json:"continuations,omitempty"`
}

// Bodies returns the non-empty body renditions, markdown first.
func (t TableDefinition) Bodies() []string {
	var out []string

	if t.Markdown != "" {
		out = append(out, t.Markdown)
	}

	if t.HTML != "" {
		out = append(out, t.HTML)
	}

	return out
}

// Body returns the preferred body text.
func (t TableDefinition) Body() string {
	if t.Markdown != "" {
		return t.Markdown
	}
	return t.HTML
}

// ColumnCount returns the number of distinct column indices among the cells.
func (t TableDefinition) ColumnCount() int {
	seen := make(map[int]struct{})

	for _, c := range t.Cells {
		seen[c.Col] = struct{}{}
	}

	return len(seen)
}

// MaxRow returns the highest row index covered by any cell, or -1 without cells.
func (t TableDefinition) MaxRow() int {
	last := -1

	for _, c := range t.Cells {
		if r := c.LastRow(); r > last {
			last = r
		}
	}

	return last
}

// HeaderRows returns the sorted rows where every cell is a header cell.
func (t TableDefinition) HeaderRows() []int {
	all := make(map[int]bool)

	for _, c := range t.Cells {
		header, ok := all[c.Row]
		if !ok {
			header = true
		}
		all[c.Row] = header && c.IsHeader
	}

	var rows []int
	for r, header := range all {
		if header {
			rows = append(rows, r)
		}
	}

	sort.Ints(rows)
	return rows
}
