package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "punctuation and case", in: "Hello, World!", want: "helloworld"},
		{name: "cjk", in: "  数据 分析。", want: "数据分析"},
		{name: "fullwidth folded", in: "ＡＢＣ１２３", want: "abc123"},
		{name: "mixed scripts", in: "Größe: 12 cm", want: "größe12cm"},
		{name: "only punctuation", in: "-- * --", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestShingles(t *testing.T) {
	assert.Equal(t, shingleSet{"abc": {}, "bcd": {}}, shingles("abcd", false))
	assert.Equal(t, shingleSet{"ab": {}}, shingles("ab", false))
	assert.Equal(t, shingleSet{"数据": {}, "据分": {}, "分析": {}}, shingles("数据分析", true))
	assert.Equal(t, shingleSet{"数": {}}, shingles("数", true))
	assert.Nil(t, shingles("", false))
}

func TestPrepare(t *testing.T) {
	p := Prepare("数据 analysis")
	require.Equal(t, "数据analysis", p.Compact)
	require.Equal(t, 10, p.Length)
	require.False(t, p.CJK)

	p = Prepare("使用Go分析数据")
	require.True(t, p.CJK)
}

func TestSimilarity(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		assert.Equal(t, exactScore, Similarity("Hello world.", "hello   world"))
	})

	t.Run("empty side", func(t *testing.T) {
		assert.Zero(t, Similarity("", "abc"))
		assert.Zero(t, Similarity("!!", "abc"))
		assert.Zero(t, Similarity("abc", ""))
	})

	t.Run("disjoint", func(t *testing.T) {
		assert.Zero(t, Similarity("apple", "zebra"))
	})

	t.Run("long substring floor", func(t *testing.T) {
		assert.GreaterOrEqual(t, Similarity("the quick brown fox", "quick brown"), longSubstringFloor)
	})

	t.Run("short substring floor", func(t *testing.T) {
		assert.GreaterOrEqual(t, Similarity("abc", "abcdefghij"), shortSubstringFloor)
	})

	t.Run("length ratio penalizes partial overlap", func(t *testing.T) {
		near := Similarity("introduction to the topic", "introduction to a topic")
		far := Similarity("introduction to the topic", "conclusion of a different story")

		assert.Greater(t, near, far)
		assert.Less(t, near, exactScore)
	})
}

func TestSimilaritySymmetry(t *testing.T) {
	samples := []string{
		"",
		"abc",
		"Hello world.",
		"hello wor",
		"The quick brown fox jumps over the lazy dog",
		"quick brown",
		"数据分析",
		"数据分析方法与应用",
		"Table 1: results",
		"表 1 结果 results",
		"x",
	}

	for _, a := range samples {
		for _, b := range samples {
			assert.Equal(t, Similarity(a, b), Similarity(b, a), "%q vs %q", a, b)
		}
	}
}

func TestConcat(t *testing.T) {
	p := concat(Prepare("Hello"), Prepare("World"))

	assert.Equal(t, "helloworld", p.Compact)
	assert.Equal(t, 10, p.Length)
	assert.Contains(t, p.Shingles, "hel")
	assert.Contains(t, p.Shingles, "rld")
	assert.NotContains(t, p.Shingles, "low")
}
