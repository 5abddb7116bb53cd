package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityActionPatternCaptures(t *testing.T) {
	h := newTestAnalyzer()

	tests := []struct {
		name   string
		text   string
		entity string
		action ActionCategory
	}{
		{
			name:   "what is question",
			text:   "什么是真正的智慧？",
			entity: "智慧",
			action: ActionDiscussion,
		},
		{
			name:   "learning intent with latin term",
			text:   "我想学习Python编程，有什么建议吗？",
			entity: "编程",
			action: ActionLearning,
		},
		{
			name:   "how to with connective",
			text:   "如何与朋友相处？",
			entity: "朋友相处",
			action: ActionSolving,
		},
		{
			name:   "which ones question",
			text:   "霍格沃茨有哪些有趣的魔法课程？",
			entity: "魔法课程",
			action: ActionDiscussion,
		},
		{
			name:   "how to understand",
			text:   "如何理解真正的爱情？",
			entity: "爱情",
			action: ActionSolving,
		},
		{
			name:   "trailing what is",
			text:   "人工智能是什么",
			entity: "人工智能",
			action: ActionDiscussion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ea, ok := h.EntityAction(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.entity, ea.Entity)
			assert.Equal(t, tt.action, ea.Action)
		})
	}
}

func TestEntityActionNoPattern(t *testing.T) {
	h := newTestAnalyzer()

	_, ok := h.EntityAction("今天天气不错")
	assert.False(t, ok)

	_, ok = h.EntityAction("")
	assert.False(t, ok)
}

func TestEntityActionRejectsStopWordCaptures(t *testing.T) {
	h := newTestAnalyzer()

	// 这个 is a stop word, not usable as an entity.
	_, ok := h.EntityAction("了解这个")
	assert.False(t, ok)
}

func TestEntityActionVocabularySubCandidates(t *testing.T) {
	h := newTestAnalyzer()

	// 理论 is a known vocabulary word inside the raw capture; its short
	// length lets it outrank the full seven-rune capture.
	ea, ok := h.EntityAction("讨论宇宙大爆炸理论")
	require.True(t, ok)
	assert.Equal(t, "理论", ea.Entity)
	assert.Equal(t, ActionDiscussion, ea.Action)
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		text string
		want ActionCategory
	}{
		{"我想学习书法", ActionLearning},
		{"请教一个问题", ActionLearning},
		{"我们聊聊音乐吧", ActionDiscussion},
		{"帮我看看这段代码", ActionSolving},
		{"这件事怎么办", ActionSolving},
		{"我打算去旅行", ActionGeneral},
		{"今天月色真美", ActionDiscussion},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyAction(cleanText(tt.text)), tt.text)
	}
}
