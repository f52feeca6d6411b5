package align

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Score constants. They are empirically tuned against real MinerU output;
// changing any of them shifts recall and precision silently.
const (
	exactScore = 1.2

	longSubstringLen   = 8
	longSubstringFloor = 0.9

	shortSubstringLen   = 4
	shortSubstringFloor = 0.7
)

type shingleSet map[string]struct{}

// Prepared is the normalized, pre-shingled form of a string. Candidates are
// prepared once and reused for every alignment attempt.
type Prepared struct {
	Compact  string
	Length   int
	CJK      bool
	Shingles shingleSet
}

// Empty reports whether nothing matchable survived normalization.
func (p Prepared) Empty() bool {
	return p.Compact == ""
}

func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// Normalize returns the compact form of text: NFKC folded, lower-cased, with
// whitespace and punctuation removed. Letters and digits of every script are
// kept, CJK ideographs included.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = strings.ToLower(norm.NFKC.String(text))

	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || isCJK(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// cjkDominant reports whether at least half of the runes are CJK ideographs.
func cjkDominant(compact string) bool {
	total, cjk := 0, 0

	for _, r := range compact {
		total++
		if isCJK(r) {
			cjk++
		}
	}

	return total > 0 && cjk*2 >= total
}

func shingles(compact string, cjk bool) shingleSet {
	if compact == "" {
		return nil
	}

	runes := []rune(compact)

	size := 3
	if cjk {
		size = 2
	}

	if len(runes) <= size {
		return shingleSet{compact: {}}
	}

	out := make(shingleSet, len(runes))
	for i := 0; i+size <= len(runes); i++ {
		out[string(runes[i:i+size])] = struct{}{}
	}

	return out
}

// Prepare normalizes and shingles text.
func Prepare(text string) Prepared {
	compact := Normalize(text)
	cjk := cjkDominant(compact)

	return Prepared{
		Compact:  compact,
		Length:   utf8.RuneCountInString(compact),
		CJK:      cjk,
		Shingles: shingles(compact, cjk),
	}
}

// Similarity scores two strings in [0, 1.2]. Exact matches on the compact form
// score 1.2 so that they dominate any fuzzy tie.
func Similarity(a, b string) float64 {
	return score(Prepare(a), Prepare(b))
}

func score(a, b Prepared) float64 {
	if a.Empty() || b.Empty() {
		return 0
	}

	if a.Compact == b.Compact {
		return exactScore
	}

	if len(a.Shingles) == 0 || len(b.Shingles) == 0 {
		return 0
	}

	s := jaccard(a.Shingles, b.Shingles) * (0.5 + 0.5*lengthRatio(a.Length, b.Length))

	contains := strings.Contains(a.Compact, b.Compact) || strings.Contains(b.Compact, a.Compact)

	switch {
	case contains && a.Length >= longSubstringLen && b.Length >= longSubstringLen:
		s = max(s, longSubstringFloor)
	case contains && (a.Length <= shortSubstringLen || b.Length <= shortSubstringLen):
		s = max(s, shortSubstringFloor)
	}

	return s
}

func jaccard(a, b shingleSet) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}

func lengthRatio(a, b int) float64 {
	hi := max(a, b)
	if hi == 0 {
		return 0
	}

	return float64(min(a, b)) / float64(hi)
}

// concat joins prepared fragments as if their texts were concatenated, using
// the union of their shingles.
func concat(parts ...Prepared) Prepared {
	var b strings.Builder
	var out Prepared

	out.Shingles = make(shingleSet)

	for _, p := range parts {
		b.WriteString(p.Compact)
		out.Length += p.Length

		for k := range p.Shingles {
			out.Shingles[k] = struct{}{}
		}
	}

	out.Compact = b.String()
	out.CJK = cjkDominant(out.Compact)

	return out
}
