// Package align reconciles a markdown document with the layout index that
// was extracted from the same PDF. Every markdown block is mapped to the page
// region it was rendered from, so a viewer can highlight it.
//
// Alignment is a single forward pass over the blocks. Text blocks are matched
// to runs of layout fragments, table blocks to table definitions. Both passes
// share a page floor that never decreases, so noisy layout data cannot make a
// later block jump back to an earlier page.
package align

import (
	"github.com/0mao0/minerpick/internal/model"
)

// Stats summarizes how well a document aligned.
type Stats struct {
	Blocks        int `json:"blocks" yaml:"blocks"`
	Candidates    int `json:"candidates" yaml:"candidates"`
	Tables        int `json:"tables" yaml:"tables"`
	Matched       int `json:"matched" yaml:"matched"`
	LowConfidence int `json:"low_confidence" yaml:"low_confidence"`
	Unresolved    int `json:"unresolved" yaml:"unresolved"`
	Continuations int `json:"continuations" yaml:"continuations"`
}

// Result is the output of Reconcile.
type Result struct {
	Items  []model.ContentItem
	Tables map[string]model.TableDefinition
	Stats  Stats
}

// Reconcile aligns markdown against the layout elements it was produced with.
// enriched holds detector results keyed by table id and may be nil; table
// regions it does not cover fall back to the raw element body.
//
// The returned items correspond one to one with the markdown blocks, in
// order. Blocks that cannot be placed carry neither page nor bbox.
func Reconcile(markdown string, elements []model.Element, enriched map[string]model.TableDefinition) *Result {
	elements = AssignTableIDs(elements)

	blocks := Segment(markdown)
	cands := PrepareCandidates(elements)
	defs := MergeTableDefinitions(TableRegions(elements), enriched)

	m := newMatcher(cands, defs)

	items := make([]model.ContentItem, len(blocks))
	tableIdx := make(map[int]int)

	stats := Stats{
		Blocks:     len(blocks),
		Candidates: len(cands),
		Tables:     len(defs),
	}

	for _, b := range blocks {
		if b.Kind == KindTable {
			idx, ok := m.matchTable(b)
			if !ok {
				idx = -1
			}
			tableIdx[b.Index] = idx
			continue
		}

		items[b.Index] = m.textItem(b, &stats)
	}

	tables := m.resolveTables()

	for _, b := range blocks {
		if b.Kind != KindTable {
			continue
		}

		item := m.tableItem(b, tableIdx[b.Index], tables)
		if item.Resolved() {
			stats.Matched++
		} else {
			stats.Unresolved++
		}

		items[b.Index] = item
	}

	for _, p := range m.parts {
		stats.Continuations += len(p)
	}

	return &Result{
		Items:  items,
		Tables: tables,
		Stats:  stats,
	}
}

func (m *matcher) textItem(b Block, stats *Stats) model.ContentItem {
	item := model.ContentItem{
		MDIndex: b.Index,
		Type:    model.ContentText,
		Text:    b.Text,
	}

	if b.Kind == KindHeading {
		item.TextLevel = b.HeadingLevel
	}

	match, ok := m.matchText(Prepare(b.Text))
	if !ok {
		stats.Unresolved++
		return item
	}

	page, bbox := match.page, match.bbox
	item.Page = &page
	item.BBox = &bbox
	item.SourceIndices = match.indices
	item.LowConfidence = match.lowConfidence

	stats.Matched++
	if match.lowConfidence {
		stats.LowConfidence++
	}

	return item
}
