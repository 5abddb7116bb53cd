package analyzer

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// MaxTitleRunes is the documented length envelope for generated titles.
// Templates are hand-budgeted to stay well under it; an oversized entity is
// not truncated (accepted limitation).
const MaxTitleRunes = 40

// VoiceProfile is a persona's title template set. Each template holds one
// %s placeholder for the entity or topic.
type VoiceProfile struct {
	Discussion string
	Learning   string
	Solving    string
	General    string
}

// voiceProfiles carries the built-in persona flavors. Unknown personas fall
// back to genericProfile. Guarded by profileMu: custom personas register
// profiles at runtime.
var profileMu sync.RWMutex

var voiceProfiles = map[string]VoiceProfile{
	"socrates": {
		Discussion: "哲思：%s",
		Learning:   "求知：%s",
		Solving:    "哲思：%s",
		General:    "哲思：%s",
	},
	"confucius": {
		Discussion: "论%s",
		Learning:   "师说：%s",
		Solving:    "师说：%s",
		General:    "师说：%s",
	},
	"einstein": {
		Discussion: "探讨%s",
		Learning:   "科学：%s",
		Solving:    "科学：%s",
		General:    "科学：%s",
	},
	"shakespeare": {
		Discussion: "文学：%s",
		Learning:   "文学：%s",
		Solving:    "文学：%s",
		General:    "%s的诗篇",
	},
	"harry-potter": {
		Discussion: "霍格沃茨：%s",
		Learning:   "霍格沃茨：%s",
		Solving:    "霍格沃茨：%s",
		General:    "霍格沃茨：%s",
	},
}

var genericProfile = VoiceProfile{
	Discussion: "探讨%s",
	Learning:   "学习%s",
	Solving:    "解决%s",
	General:    "关于%s的对话",
}

// ProfileFor returns the voice profile for a persona, falling back to the
// generic profile for unknown ids.
func ProfileFor(personaID string) VoiceProfile {
	profileMu.RLock()
	defer profileMu.RUnlock()
	if profile, ok := voiceProfiles[personaID]; ok {
		return profile
	}
	return genericProfile
}

// RegisterProfile installs a voice profile for a persona at runtime, e.g.
// for user-created characters.
func RegisterProfile(personaID string, profile VoiceProfile) {
	if personaID == "" {
		return
	}
	if profile.Discussion == "" || profile.Learning == "" ||
		profile.Solving == "" || profile.General == "" {
		return
	}
	profileMu.Lock()
	defer profileMu.Unlock()
	voiceProfiles[personaID] = profile
}

// FormatEntityTitle renders an entity/action pair through the persona's
// template for the action category.
func FormatEntityTitle(personaID string, ea EntityAction) string {
	profile := ProfileFor(personaID)
	var template string
	switch ea.Action {
	case ActionLearning:
		template = profile.Learning
	case ActionSolving:
		template = profile.Solving
	case ActionGeneral:
		template = profile.General
	default:
		template = profile.Discussion
	}
	return fmt.Sprintf(template, ea.Entity)
}

// FormatTopicTitle renders a topic label through the persona's general
// template.
func FormatTopicTitle(personaID string, topic string) string {
	return fmt.Sprintf(ProfileFor(personaID).General, topic)
}

// FallbackTitle derives a title from the first user message when no entity
// or topic was found. Short messages are used verbatim; longer ones are cut
// at a sentence boundary inside the 6th-20th rune window, then at a comma
// inside the 8th-18th window, then hard-truncated at 15 runes.
func FallbackTitle(personaName, firstMessage string) string {
	message := strings.TrimSpace(firstMessage)
	runes := []rune(message)

	if len(runes) <= 12 {
		return personaName + "：" + message
	}

	if cut := scanCut(runes, 6, 20, "。？！?!"); cut > 0 {
		return personaName + "：" + string(runes[:cut])
	}
	if cut := scanCut(runes, 8, 18, "，,、"); cut > 0 {
		return personaName + "：" + string(runes[:cut])
	}

	return personaName + "：" + string(runes[:15]) + "…"
}

// scanCut looks for one of the marks within [from, to) and returns the cut
// position including the mark, or 0.
func scanCut(runes []rune, from, to int, marks string) int {
	end := to
	if end > len(runes) {
		end = len(runes)
	}
	for i := from; i < end; i++ {
		if strings.ContainsRune(marks, runes[i]) {
			return i + 1
		}
	}
	return 0
}

// TitleRuneLen reports the rune length of a title, for callers enforcing
// the MaxTitleRunes envelope in diagnostics.
func TitleRuneLen(title string) int {
	return utf8.RuneCountInString(title)
}
