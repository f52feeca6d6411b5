package align

import (
	"regexp"
	"strings"
)

// BlockKind classifies a markdown block.
type BlockKind int

const (
	KindProse BlockKind = iota
	KindHeading
	KindTable
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindTable:
		return "table"
	default:
		return "prose"
	}
}

// Block is one paragraph, heading or table of the source markdown.
type Block struct {
	Index        int
	Raw          string
	Kind         BlockKind
	HeadingLevel int

	// Text is the plain text used for matching. Empty for tables.
	Text string
}

var (
	htmlTableRe      = regexp.MustCompile(`(?i)<table[\s\S]*?</table>`)
	blankLineRe      = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	tableSeparatorRe = regexp.MustCompile(`^\s*\|?\s*:?-{1,}:?\s*(\|\s*:?-{1,}:?\s*)+\|?\s*$`)
	headingRe        = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	headingMarkRe = regexp.MustCompile(`^#{1,6}\s+`)
	bulletRe      = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	inlineCodeRe  = regexp.MustCompile("`{1,3}([^`]+)`{1,3}")
	imageRe       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Segment splits markdown into ordered blocks. HTML tables are kept whole even
// when they contain blank lines.
func Segment(markdown string) []Block {
	src := strings.ReplaceAll(markdown, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	src = strings.TrimSpace(src)

	if src == "" {
		return nil
	}

	var raws []string

	last := 0
	for _, loc := range htmlTableRe.FindAllStringIndex(src, -1) {
		raws = appendParagraphs(raws, src[last:loc[0]])

		if table := strings.TrimSpace(src[loc[0]:loc[1]]); table != "" {
			raws = append(raws, table)
		}

		last = loc[1]
	}

	raws = appendParagraphs(raws, src[last:])

	blocks := make([]Block, 0, len(raws))
	for i, raw := range raws {
		blocks = append(blocks, classify(i, raw))
	}

	return blocks
}

func appendParagraphs(dst []string, text string) []string {
	if strings.TrimSpace(text) == "" {
		return dst
	}

	for _, p := range blankLineRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			dst = append(dst, p)
		}
	}

	return dst
}

func classify(index int, raw string) Block {
	b := Block{
		Index: index,
		Raw:   raw,
	}

	if IsHTMLTable(raw) || IsMarkdownTable(raw) {
		b.Kind = KindTable
		return b
	}

	if m := headingRe.FindStringSubmatch(raw); m != nil {
		b.Kind = KindHeading
		b.HeadingLevel = len(m[1])
		b.Text = strings.TrimSpace(m[2])
		return b
	}

	b.Kind = KindProse
	b.Text = StripMarkdown(raw)

	return b
}

// IsHTMLTable reports whether block contains a complete HTML table.
func IsHTMLTable(block string) bool {
	s := strings.ToLower(block)
	return strings.Contains(s, "<table") && strings.Contains(s, "</table>")
}

// IsMarkdownTable reports whether the first two non-blank lines of block form a
// pipe table header and separator.
func IsMarkdownTable(block string) bool {
	var lines []string

	for _, ln := range strings.Split(block, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}

		lines = append(lines, strings.TrimRight(ln, " \t"))
		if len(lines) == 2 {
			break
		}
	}

	if len(lines) < 2 || !strings.Contains(lines[0], "|") {
		return false
	}

	return tableSeparatorRe.MatchString(lines[1])
}

// StripMarkdown removes heading marks, bullets, inline code fences and link
// syntax from block and collapses whitespace.
func StripMarkdown(block string) string {
	text := strings.TrimSpace(block)
	if text == "" {
		return ""
	}

	text = headingMarkRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = imageRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	text = spaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
