package align

import (
	"sort"

	"github.com/0mao0/minerpick/internal/model"
)

const (
	tableThreshold = 0.2

	samePageBoost   = 1.2
	farPagePenalty  = 0.7
	farPageDistance = 2
	backwardPenalty = 0.1

	tableLookback  = 1
	tableLookahead = 5
)

// tableVariants prepares the renditions a table body can be compared by.
func tableVariants(bodies ...string) []Prepared {
	var out []Prepared

	for _, b := range bodies {
		if b == "" {
			continue
		}

		out = append(out, Prepare(b))

		if IsHTMLTable(b) {
			if text := tableText(b); text != "" {
				out = append(out, Prepare(text))
			}
		}
	}

	return out
}

// referencePage is the page of the text candidate at cp, or NoPage.
func (m *matcher) referencePage() int {
	if len(m.cands) == 0 {
		return model.NoPage
	}

	return m.cands[min(m.cp, len(m.cands)-1)].Page
}

func (m *matcher) tableScore(block []Prepared, i int, ref int) float64 {
	best := 0.0

	for _, a := range block {
		for _, b := range m.bodies[i] {
			best = max(best, score(a, b))
		}
	}

	page := m.defs[i].Page
	if ref >= 0 && page >= 0 {
		switch d := abs(page - ref); {
		case d == 0:
			best *= samePageBoost
		case d > farPageDistance:
			best *= farPagePenalty
		}
	}

	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// matchTable picks a definition for one table block: windowed search first,
// then every unused definition, then the next one in reading order.
func (m *matcher) matchTable(block Block) (int, bool) {
	if len(m.defs) == 0 {
		return -1, false
	}

	variants := tableVariants(block.Raw)
	ref := m.referencePage()

	pick := func(lo, hi int, penalize bool) int {
		idx, best := -1, 0.0

		for i := lo; i <= hi; i++ {
			if m.used[i] {
				continue
			}

			sc := m.tableScore(variants, i, ref)
			if penalize && m.defs[i].Page >= 0 && m.defs[i].Page < m.floor {
				sc *= backwardPenalty
			}

			if sc >= tableThreshold && sc > best {
				idx, best = i, sc
			}
		}

		return idx
	}

	idx := pick(max(0, m.tp-tableLookback), min(len(m.defs)-1, m.tp+tableLookahead), false)
	if idx < 0 {
		idx = pick(0, len(m.defs)-1, true)
	}

	if idx < 0 {
		for i, d := range m.defs {
			if !m.used[i] && (d.Page < 0 || d.Page >= m.floor) {
				idx = i
				break
			}
		}
	}

	if idx < 0 {
		return -1, false
	}

	m.used[idx] = true
	m.tp = max(m.tp, idx+1)
	m.raiseFloor(m.defs[idx].Page)

	m.collectContinuations(idx)

	return idx, true
}

// collectContinuations marks the definitions on the following pages that
// continue the table at idx. A definition that already lists continuations
// has been merged and is left alone.
func (m *matcher) collectContinuations(idx int) {
	if len(m.defs[idx].Continuations) > 0 {
		return
	}

	cols := m.defs[idx].ColumnCount()
	if cols == 0 {
		return
	}

	last := idx
	for {
		next := -1
		for j := last + 1; j < len(m.defs); j++ {
			if !m.used[j] {
				next = j
				break
			}
		}

		if next < 0 {
			return
		}

		prevPage, page := m.defs[last].Page, m.defs[next].Page
		if prevPage < 0 || page != prevPage+1 || m.defs[next].ColumnCount() != cols {
			return
		}

		m.used[next] = true
		m.parts[idx] = append(m.parts[idx], next)
		m.tp = max(m.tp, next+1)
		m.raiseFloor(page)

		last = next
	}
}

// mergeContinuation appends the body rows of part below the rows of cells.
// Header rows repeated on the continuation page are dropped.
func mergeContinuation(cells []model.Cell, part model.TableDefinition) []model.Cell {
	offset := model.TableDefinition{Cells: cells}.MaxRow() + 1

	headers := part.HeaderRows()
	isHeader := make(map[int]bool, len(headers))
	for _, r := range headers {
		isHeader[r] = true
	}

	out := make([]model.Cell, len(cells), len(cells)+len(part.Cells))
	copy(out, cells)

	for _, c := range part.Cells {
		if isHeader[c.Row] {
			continue
		}

		before := sort.SearchInts(headers, c.Row)

		c.Row = c.Row - before + offset
		out = append(out, c)
	}

	return out
}

// resolveTables builds the final definition map. Merges are computed against
// the untouched definitions and swapped in afterwards.
func (m *matcher) resolveTables() map[string]model.TableDefinition {
	merged := make(map[int]model.TableDefinition, len(m.parts))
	continuationOf := make(map[int]string)

	primaries := make([]int, 0, len(m.parts))
	for idx := range m.parts {
		primaries = append(primaries, idx)
	}
	sort.Ints(primaries)

	for _, idx := range primaries {
		def := m.defs[idx]
		cells := def.Cells

		var ids []string
		for _, p := range m.parts[idx] {
			cells = mergeContinuation(cells, m.defs[p])
			ids = append(ids, m.defs[p].ID)
			continuationOf[p] = def.ID
		}

		def.Cells = cells
		def.Continuations = ids
		merged[idx] = def
	}

	out := make(map[string]model.TableDefinition, len(m.defs))
	for i, d := range m.defs {
		if def, ok := merged[i]; ok {
			d = def
		}

		if parent, ok := continuationOf[i]; ok {
			d.ContinuationOf = parent
		}

		if d.Cells == nil {
			d.Cells = []model.Cell{}
		}

		out[d.ID] = d
	}

	return out
}

// tableItem returns the content item for a table block matched to defs[idx].
func (m *matcher) tableItem(block Block, idx int, tables map[string]model.TableDefinition) model.ContentItem {
	item := model.ContentItem{
		MDIndex: block.Index,
		Type:    model.ContentTable,
		Text:    block.Raw,
	}

	if idx < 0 {
		return item
	}

	def := tables[m.defs[idx].ID]
	item.TableID = def.ID

	if def.Enriched && def.Body() != "" {
		item.Text = def.Body()
	}

	if def.Page >= 0 {
		page := def.Page
		item.Page = &page
	}

	if def.BBox != (model.BBox{}) {
		bbox := def.BBox
		item.BBox = &bbox
	}

	return item
}
