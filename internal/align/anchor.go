package align

import (
	"strings"

	"github.com/0mao0/minerpick/internal/model"
)

const (
	lookback  = 5
	lookahead = 120

	spanPenalty     = 0.03
	acceptThreshold = 0.22

	mergeSlack = 5
	mergeFloor = 0.7
)

// maxSpan bounds how many fragments one block may be assembled from.
func maxSpan(length int) int {
	switch {
	case length < 12:
		return 1
	case length < 30:
		return 4
	case length < 80:
		return 6
	default:
		return 8
	}
}

// matcher holds the alignment state of one document. The candidate and table
// pointers and the page floor only move forward.
type matcher struct {
	cands []Candidate

	defs   []model.TableDefinition
	bodies [][]Prepared
	used   []bool

	cp    int
	tp    int
	floor int

	// continuation parts per primary table index, applied after matching
	parts map[int][]int
}

func newMatcher(cands []Candidate, defs []model.TableDefinition) *matcher {
	m := &matcher{
		cands:  cands,
		defs:   defs,
		bodies: make([][]Prepared, len(defs)),
		used:   make([]bool, len(defs)),
		parts:  make(map[int][]int),
	}

	for i, d := range defs {
		m.bodies[i] = tableVariants(d.Markdown, d.HTML)

		// Continuations from an earlier pass are already part of their primary.
		if d.ContinuationOf != "" {
			m.used[i] = true
		}
	}

	return m
}

func (m *matcher) eligible(i int) bool {
	c := m.cands[i]
	return !c.HasPage() || c.Page >= m.floor
}

func (m *matcher) raiseFloor(page int) {
	if page > m.floor {
		m.floor = page
	}
}

type textMatch struct {
	start, end int
	score      float64

	page    int
	bbox    model.BBox
	indices []int
	matched Prepared

	lowConfidence bool
}

type span struct {
	start, end int
	score      float64
}

// bestSpan scores every contiguous run of eligible candidates in the window
// around cp. The first strictly best run wins.
func (m *matcher) bestSpan(target Prepared) (span, bool) {
	if target.Empty() || len(target.Shingles) == 0 {
		return span{}, false
	}

	lo := max(0, m.cp-lookback)
	hi := min(len(m.cands), m.cp+lookahead)
	limit := maxSpan(target.Length)

	var best span
	found := false

	for s := lo; s < hi; s++ {
		if !m.eligible(s) {
			continue
		}

		acc := Prepared{Shingles: make(shingleSet)}

		for e := s; e < hi && e < s+limit; e++ {
			if !m.eligible(e) {
				break
			}

			c := m.cands[e]
			acc.Compact += c.Compact
			acc.Length += c.Length
			for k := range c.Shingles {
				acc.Shingles[k] = struct{}{}
			}

			sc := score(target, acc) - spanPenalty*float64(e-s)
			if !found || sc > best.score {
				best = span{start: s, end: e, score: sc}
				found = true
			}
		}
	}

	return best, found
}

// dominantPage picks the page carrying the most matched text in cands[start:end+1]
// and the union of the boxes on it. Ties go to the page seen first.
func (m *matcher) dominantPage(start, end int) (int, model.BBox, bool) {
	weights := make(map[int]int)
	var order []int

	for i := start; i <= end; i++ {
		c := m.cands[i]
		if !c.HasPage() {
			continue
		}

		if _, ok := weights[c.Page]; !ok {
			order = append(order, c.Page)
		}
		weights[c.Page] += c.Length + 1
	}

	if len(order) == 0 {
		return model.NoPage, model.BBox{}, false
	}

	page := order[0]
	for _, p := range order[1:] {
		if weights[p] > weights[page] {
			page = p
		}
	}

	var boxes []model.BBox
	for i := start; i <= end; i++ {
		c := m.cands[i]
		if c.Page == page && c.BBox != nil {
			boxes = append(boxes, *c.BBox)
		}
	}

	bbox, ok := model.UnionAll(boxes)
	return page, bbox, ok
}

// matchText aligns one prose or heading block. It returns false when the
// block cannot be placed at all.
func (m *matcher) matchText(target Prepared) (textMatch, bool) {
	if target.Empty() {
		return textMatch{}, false
	}

	var match textMatch

	best, found := m.bestSpan(target)
	page, bbox, resolved := model.NoPage, model.BBox{}, false
	if found {
		page, bbox, resolved = m.dominantPage(best.start, best.end)
	}

	switch {
	case found && resolved && best.score >= acceptThreshold:
		match = textMatch{
			start: best.start,
			end:   best.end,
			score: best.score,
			page:  page,
			bbox:  bbox,
		}

		m.cp = max(m.cp, best.end+1)
		m.raiseFloor(page)
	default:
		for m.cp < len(m.cands) && !m.eligible(m.cp) {
			m.cp++
		}

		if m.cp >= len(m.cands) || !m.cands[m.cp].Resolvable() {
			return textMatch{}, false
		}

		c := m.cands[m.cp]
		match = textMatch{
			start:         m.cp,
			end:           m.cp,
			page:          c.Page,
			bbox:          *c.BBox,
			lowConfidence: true,
		}

		m.cp++
	}

	parts := make([]Prepared, 0, match.end-match.start+1)
	for i := match.start; i <= match.end; i++ {
		parts = append(parts, m.cands[i].Prepared)
		match.indices = append(match.indices, m.cands[i].OriginalIndex)
	}
	match.matched = concat(parts...)

	m.forwardMerge(target, &match)

	return match, true
}

// forwardMerge absorbs following fragments while the block is still clearly
// longer than what has been matched so far.
func (m *matcher) forwardMerge(target Prepared, match *textMatch) {
	for target.Length-match.matched.Length > mergeSlack && m.cp < len(m.cands) {
		next := m.cands[m.cp]
		if !m.eligible(m.cp) || !next.HasPage() {
			return
		}

		if next.Page != match.page && next.Page != match.page+1 {
			return
		}

		combined := concat(match.matched, next.Prepared)
		before := score(target, match.matched)
		after := score(target, combined)

		if after <= before && !strings.Contains(target.Compact, combined.Compact) && after <= mergeFloor {
			return
		}

		match.matched = combined
		match.indices = append(match.indices, next.OriginalIndex)
		match.end = m.cp

		if next.Page == match.page && next.BBox != nil {
			match.bbox = match.bbox.Union(*next.BBox)
		}

		m.cp++
	}
}
