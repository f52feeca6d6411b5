package pdftext

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"rsc.io/pdf"

	"github.com/0mao0/minerpick/internal/model"
)

// line is one run of glyphs sharing a baseline, in PDF user space.
type line struct {
	page int

	x0, x1   float64
	baseline float64
	size     float64

	// text separates columns by two or more spaces
	text string
}

func (l line) top() float64    { return l.baseline + l.size }
func (l line) bottom() float64 { return l.baseline - l.size*0.2 }

// groupLines folds glyphs in content order into lines. A wide horizontal gap
// is kept as a double space so column layouts survive.
func groupLines(page int, glyphs []pdf.Text) []line {
	var out []line
	var cur *line
	var b strings.Builder

	flush := func() {
		if cur == nil {
			return
		}

		cur.text = strings.TrimRight(b.String(), " ")
		if strings.TrimSpace(cur.text) != "" {
			out = append(out, *cur)
		}

		cur = nil
		b.Reset()
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}

		size := g.FontSize
		if size <= 0 {
			size = 1
		}

		if cur != nil {
			sameLine := math.Abs(g.Y-cur.baseline) <= math.Max(cur.size, size)*0.5
			wrapped := g.X < cur.x1-math.Max(cur.size, size)

			if !sameLine || wrapped {
				flush()
			}
		}

		if cur == nil {
			cur = &line{page: page, x0: g.X, x1: g.X, baseline: g.Y, size: size}
		} else {
			gap := g.X - cur.x1
			last, _ := utf8.DecodeLastRuneInString(b.String())

			switch {
			case gap > cur.size*1.5:
				b.WriteString(strings.Repeat(" ", 2-trailingSpaces(b.String())))
			case gap > cur.size*0.2 && last != ' ' && g.S != " ":
				b.WriteByte(' ')
			}
		}

		b.WriteString(g.S)

		cur.x0 = math.Min(cur.x0, g.X)
		cur.x1 = math.Max(cur.x1, g.X+g.W)
		cur.size = math.Max(cur.size, size)
	}

	flush()

	return out
}

func trailingSpaces(s string) int {
	n := len(s) - len(strings.TrimRight(s, " "))
	return min(n, 2)
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// blockKind of a group of lines.
type blockKind int

const (
	blockParagraph blockKind = iota
	blockTable
)

type block struct {
	kind  blockKind
	lines []line

	// rows holds the cells of table blocks
	rows [][]string
}

func (b block) text() string {
	parts := make([]string, 0, len(b.lines))
	for _, l := range b.lines {
		parts = append(parts, collapse(l.text))
	}

	return strings.Join(parts, " ")
}

func (b block) size() float64 {
	s := 0.0
	for _, l := range b.lines {
		s = math.Max(s, l.size)
	}
	return s
}

// bbox returns the block box in page space with a top-left origin.
func (b block) bbox(box mediaBox) model.BBox {
	out := model.BBox{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}

	for _, l := range b.lines {
		out = out.Union(model.BBox{
			l.x0 - box.x0,
			box.y1 - l.top(),
			l.x1 - box.x0,
			box.y1 - l.bottom(),
		})
	}

	return clamp(model.Normalize(out, box.width(), box.height()))
}

func clamp(b model.BBox) model.BBox {
	for i := range b {
		b[i] = math.Max(0, math.Min(1000, b[i]))
	}
	return b
}

var twoPlusSpaces = regexp.MustCompile(`\s{2,}`)

func splitBy2Spaces(s string) []string {
	return twoPlusSpaces.Split(strings.TrimSpace(s), -1)
}

// maxTableRows stops runaway grouping on long column layouts.
const maxTableRows = 50

// groupBlocks splits the lines of one page into tables and paragraphs. Runs of
// at least two lines splitting into the same number of columns (two or more)
// are tables; the remaining lines join into paragraphs while font size and
// line spacing stay consistent.
func groupBlocks(lines []line) []block {
	var out []block

	i := 0
	for i < len(lines) {
		if rows, n := tableRun(lines[i:]); n > 0 {
			out = append(out, block{kind: blockTable, lines: lines[i : i+n], rows: rows})
			i += n
			continue
		}

		cur := block{kind: blockParagraph, lines: []line{lines[i]}}
		i++

		for i < len(lines) {
			prev, next := cur.lines[len(cur.lines)-1], lines[i]

			if _, n := tableRun(lines[i:]); n > 0 {
				break
			}

			if math.Abs(next.size-prev.size) > 0.5 {
				break
			}

			if spacing := prev.baseline - next.baseline; spacing <= 0 || spacing > prev.size*1.8 {
				break
			}

			cur.lines = append(cur.lines, next)
			i++
		}

		out = append(out, cur)
	}

	return out
}

func tableRun(lines []line) ([][]string, int) {
	var rows [][]string
	cols := 0

	for _, l := range lines {
		parts := splitBy2Spaces(l.text)
		if len(parts) < 2 {
			break
		}

		if cols == 0 {
			cols = len(parts)
		}

		if len(parts) != cols {
			break
		}

		rows = append(rows, trimAll(parts))
		if len(rows) >= maxTableRows {
			break
		}
	}

	if len(rows) < 2 {
		return nil, 0
	}

	return rows, len(rows)
}

func trimAll(a []string) []string {
	out := make([]string, len(a))
	for i, v := range a {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// renderTable writes rows as a pipe table with the first row as header.
func renderTable(rows [][]string) string {
	var out []string

	header := rows[0]
	out = append(out, "| "+strings.Join(header, " | ")+" |")

	var sep []string
	for range header {
		sep = append(sep, "---")
	}
	out = append(out, "| "+strings.Join(sep, " | ")+" |")

	for _, row := range rows[1:] {
		out = append(out, "| "+strings.Join(row, " | ")+" |")
	}

	return strings.Join(out, "\n")
}

// headingLevels maps the font sizes clearly above the body size to heading
// levels, largest first.
func headingLevels(blocks []block) map[float64]int {
	weights := make(map[float64]int)

	for _, b := range blocks {
		if b.kind != blockParagraph {
			continue
		}

		for _, l := range b.lines {
			weights[roundSize(l.size)] += utf8.RuneCountInString(l.text)
		}
	}

	body, best := 0.0, -1
	for size, w := range weights {
		if w > best || (w == best && size < body) {
			body, best = size, w
		}
	}

	var larger []float64
	for size := range weights {
		if size >= body*1.2 {
			larger = append(larger, size)
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(larger)))

	levels := make(map[float64]int, len(larger))
	for i, size := range larger {
		levels[size] = min(i+1, 6)
	}

	return levels
}

func roundSize(s float64) float64 {
	return math.Round(s*2) / 2
}

// maxHeadingRunes keeps large-print paragraphs from being taken for headings.
const maxHeadingRunes = 120
