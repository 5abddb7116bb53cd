package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileForKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "哲思：%s", ProfileFor("socrates").Discussion)
	assert.Equal(t, "霍格沃茨：%s", ProfileFor("harry-potter").Learning)
	assert.Equal(t, genericProfile, ProfileFor("no-such-persona"))
}

func TestRegisterProfile(t *testing.T) {
	profile := VoiceProfile{
		Discussion: "江湖：%s",
		Learning:   "武学：%s",
		Solving:    "出手：%s",
		General:    "江湖：%s",
	}
	RegisterProfile("wuxia-master", profile)
	assert.Equal(t, profile, ProfileFor("wuxia-master"))

	// Incomplete profiles are ignored.
	RegisterProfile("half-baked", VoiceProfile{Discussion: "x：%s"})
	assert.Equal(t, genericProfile, ProfileFor("half-baked"))
}

func TestFormatEntityTitle(t *testing.T) {
	tests := []struct {
		personaID string
		ea        EntityAction
		want      string
	}{
		{"socrates", EntityAction{Entity: "智慧", Action: ActionDiscussion}, "哲思：智慧"},
		{"einstein", EntityAction{Entity: "编程", Action: ActionLearning}, "科学：编程"},
		{"confucius", EntityAction{Entity: "朋友相处", Action: ActionSolving}, "师说：朋友相处"},
		{"shakespeare", EntityAction{Entity: "爱情", Action: ActionGeneral}, "爱情的诗篇"},
		{"unknown", EntityAction{Entity: "美食", Action: ActionLearning}, "学习美食"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEntityTitle(tt.personaID, tt.ea))
	}
}

func TestFallbackTitleShortVerbatim(t *testing.T) {
	assert.Equal(t, "哈利波特：你好呀", FallbackTitle("哈利波特", "你好呀"))
	assert.Equal(t, "孔子：你好", FallbackTitle("孔子", "  你好  "))
}

func TestFallbackTitleSentenceCut(t *testing.T) {
	got := FallbackTitle("孔子", "今天天气真好啊。我们聊聊天吧")
	assert.Equal(t, "孔子：今天天气真好啊。", got)
}

func TestFallbackTitleCommaCut(t *testing.T) {
	got := FallbackTitle("苏格拉底", "我最近生活过得还不错，就是有点累")
	assert.Equal(t, "苏格拉底：我最近生活过得还不错，", got)
}

func TestFallbackTitleHardTruncate(t *testing.T) {
	got := FallbackTitle("爱因斯坦", "这是一段完全没有任何标点符号的超长测试文本内容")
	assert.Equal(t, "爱因斯坦：这是一段完全没有任何标点符号的…", got)
	assert.LessOrEqual(t, TitleRuneLen(got), MaxTitleRunes)
}
