package align

import (
	"fmt"
	"sort"
	"strings"

	"github.com/0mao0/minerpick/internal/model"
)

// Candidate is a layout text fragment ready for matching.
type Candidate struct {
	OriginalIndex int
	Text          string
	Page          int
	BBox          *model.BBox

	Prepared
}

// HasPage reports whether the candidate has a known page.
func (c Candidate) HasPage() bool {
	return c.Page >= 0
}

// Resolvable reports whether the candidate can place a block on its own.
func (c Candidate) Resolvable() bool {
	return c.HasPage() && c.BBox != nil
}

// PrepareCandidates returns the text fragments of elements in encounter order.
// Tables, discarded regions and fragments without matchable text are skipped.
func PrepareCandidates(elements []model.Element) []Candidate {
	out := make([]Candidate, 0, len(elements))

	for i, e := range elements {
		if e.Type == model.ElementTable || e.Type == model.ElementDiscarded {
			continue
		}

		if strings.TrimSpace(e.Text) == "" {
			continue
		}

		p := Prepare(e.Text)
		if p.Empty() {
			continue
		}

		page := e.Page
		if page < 0 {
			page = model.NoPage
		}

		out = append(out, Candidate{
			OriginalIndex: i,
			Text:          e.Text,
			Page:          page,
			BBox:          e.BBox,
			Prepared:      p,
		})
	}

	return out
}

// AssignTableIDs gives every id-less table element a sequential table_<n> id,
// counting only the tables that needed one. The input slice is not modified.
func AssignTableIDs(elements []model.Element) []model.Element {
	out := make([]model.Element, len(elements))
	copy(out, elements)

	n := 0
	for i := range out {
		if out[i].Type != model.ElementTable || out[i].ID != "" {
			continue
		}

		out[i].ID = model.FlexString(fmt.Sprintf("table_%d", n))
		n++
	}

	return out
}

// TableRegions returns the table elements of an id-assigned element list.
func TableRegions(elements []model.Element) []model.Element {
	var out []model.Element

	for _, e := range elements {
		if e.Type == model.ElementTable {
			out = append(out, e)
		}
	}

	return out
}

// RawTableDefinition builds an enrichment-less definition from a table region.
func RawTableDefinition(region model.Element) model.TableDefinition {
	def := model.TableDefinition{
		ID:    string(region.ID),
		Page:  region.Page,
		Cells: []model.Cell{},
	}

	if region.BBox != nil {
		def.BBox = *region.BBox
	}

	if IsHTMLTable(region.TableBody) {
		def.HTML = region.TableBody
	} else {
		def.Markdown = region.TableBody
	}

	return def
}

// MergeTableDefinitions combines enriched definitions with the raw regions the
// detector did not cover, ordered by page and then top edge.
func MergeTableDefinitions(regions []model.Element, enriched map[string]model.TableDefinition) []model.TableDefinition {
	seen := make(map[string]bool, len(regions))
	defs := make([]model.TableDefinition, 0, len(regions)+len(enriched))

	for _, r := range regions {
		id := string(r.ID)
		if seen[id] {
			continue
		}
		seen[id] = true

		if def, ok := enriched[id]; ok {
			if def.ID == "" {
				def.ID = id
			}
			defs = append(defs, def)
			continue
		}

		defs = append(defs, RawTableDefinition(r))
	}

	var extra []string
	for id := range enriched {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)

	for _, id := range extra {
		def := enriched[id]
		if def.ID == "" {
			def.ID = id
		}
		defs = append(defs, def)
	}

	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Page != defs[j].Page {
			return defs[i].Page < defs[j].Page
		}
		return defs[i].BBox.Y0() < defs[j].BBox.Y0()
	})

	return defs
}
