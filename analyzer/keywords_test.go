package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *Heuristic {
	return NewHeuristic(DefaultConfig())
}

func TestKeywordsEmptyInput(t *testing.T) {
	h := newTestAnalyzer()

	assert.Empty(t, h.Keywords(""))
	assert.Empty(t, h.Keywords("   \t  "))
	assert.Empty(t, h.Keywords("！！！？？？"))
}

func TestKeywordsFiltersStopWords(t *testing.T) {
	h := newTestAnalyzer()

	assert.Empty(t, h.Keywords("什么"))
	assert.Empty(t, h.Keywords("怎么 可以"))
}

func TestKeywordsFiltersPlainLatinTokens(t *testing.T) {
	h := newTestAnalyzer()

	// Latin-only tokens survive only as recognized technical terms.
	assert.Empty(t, h.Keywords("abcd efgh"))

	keywords := h.Keywords("python python 很棒")
	require.NotEmpty(t, keywords)
	assert.Equal(t, "python", keywords[0].Term)
}

func TestKeywordsImportanceBonusOutranksPosition(t *testing.T) {
	h := newTestAnalyzer()

	// 编程 sits in the technical importance category; it outranks the
	// earlier but unimportant token.
	keywords := h.Keywords("很棒 编程")
	require.NotEmpty(t, keywords)
	assert.Equal(t, "编程", keywords[0].Term)
}

func TestKeywordsCapped(t *testing.T) {
	h := newTestAnalyzer()

	keywords := h.Keywords("编程 代码 算法 技术 软件 开发 数据 模型 网络 系统")
	assert.LessOrEqual(t, len(keywords), h.cfg.MaxKeywords)
}

func TestKeywordsDeterministic(t *testing.T) {
	h := newTestAnalyzer()
	text := "我想学习python编程 也想了解算法和数据结构"

	first := h.Keywords(text)
	second := h.Keywords(text)
	assert.Equal(t, first, second)
}
