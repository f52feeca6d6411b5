package model

// Content item types.
const (
	ContentText      = "text"
	ContentTable     = "table"
	ContentDiscarded = "discarded"
)

// ContentItem maps one markdown block to its source region. Page and BBox are
// nil when no plausible match exists.
type ContentItem struct {
	MDIndex int    `json:"md_index"`
	Type    string `json:"type"`

	Text      string `json:"text,omitempty"`
	TextLevel int    `json:"text_level,omitempty"`

	Page *int  `json:"page_idx,omitempty"`
	BBox *BBox `json:"bbox,omitempty"`

	TableID       string `json:"id,omitempty"`
	SourceIndices []int  `json:"source_raw_indices,omitempty"`

	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Resolved reports whether the item was placed on a page.
func (c ContentItem) Resolved() bool {
	return c.Page != nil && c.BBox != nil
}
