// Package detector defines the table-cell detector used to enrich table
// regions with a cell grid.
package detector

import (
	"context"

	"github.com/0mao0/minerpick/internal/model"
)

// Region is a table region to analyze. BBox is in the 0-1000 page space.
type Region struct {
	ID   string     `json:"id"`
	Page int        `json:"page_idx"`
	BBox model.BBox `json:"bbox"`
}

// Provider detects the cells of table regions. Regions that fail are left out
// of the result; an error means no region could be analyzed.
type Provider interface {
	Detect(ctx context.Context, pdfPath string, regions []Region) (map[string]model.TableDefinition, error)
}

// Noop never enriches anything.
type Noop struct{}

func (Noop) Detect(ctx context.Context, pdfPath string, regions []Region) (map[string]model.TableDefinition, error) {
	return map[string]model.TableDefinition{}, nil
}

// Regions returns the detectable table regions of an element list. Elements
// need an id, a page and a box.
func Regions(elements []model.Element) []Region {
	var out []Region

	for _, e := range elements {
		if e.Type != model.ElementTable || e.ID == "" || !e.HasPage() || e.BBox == nil {
			continue
		}

		out = append(out, Region{
			ID:   string(e.ID),
			Page: e.Page,
			BBox: *e.BBox,
		})
	}

	return out
}
