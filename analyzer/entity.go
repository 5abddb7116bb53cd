package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Phrase patterns that capture a short noun phrase after a connective
// marker. Conversational text rarely has a clean subject-verb-object, but
// people reliably phrase requests as "关于X的…", "什么是X", "如何X" and so
// on; anchoring on those markers beats raw frequency for short sessions.
var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`关于([\p{Han}a-z0-9]{1,8})的`),
	regexp.MustCompile(`什么是([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`([\p{Han}a-z0-9]{1,8})是什么`),
	regexp.MustCompile(`如何([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`怎么([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`怎样([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`学习([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`了解([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`讨论([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`探讨([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`聊聊([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`谈谈([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`有哪些([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`想要([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`需要([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`希望([\p{Han}a-z0-9]{1,8})`),
	regexp.MustCompile(`打算([\p{Han}a-z0-9]{1,8})`),
}

// Intent markers, checked in order; the first match decides the action
// category used to pick the title template bucket.
var actionMarkers = []struct {
	re       *regexp.Regexp
	category ActionCategory
}{
	{regexp.MustCompile(`学习|想学|请教|教我`), ActionLearning},
	{regexp.MustCompile(`讨论|探讨|聊聊|谈谈|说说`), ActionDiscussion},
	{regexp.MustCompile(`解决|帮我|帮忙|怎么办|如何|怎么|怎样`), ActionSolving},
	{regexp.MustCompile(`想要|需要|希望|打算|计划`), ActionGeneral},
}

// leadingConnectives are single-rune function words stripped from the front
// of a capture ("与朋友相处" -> "朋友相处").
var leadingConnectives = map[rune]struct{}{
	'与': {}, '和': {}, '跟': {}, '对': {}, '把': {}, '给': {}, '被': {},
}

type entityCandidate struct {
	term  string
	bonus float64
}

// EntityAction extracts the most salient entity from the text together with
// the user's intent toward it. It reports false when no candidate clears the
// qualification threshold, in which case the caller should fall back to
// topic classification.
func (h *Heuristic) EntityAction(text string) (EntityAction, bool) {
	clean := cleanText(text)
	if clean == "" {
		return EntityAction{}, false
	}

	candidates := make(map[string]*entityCandidate)
	credit := func(term string, bonus float64) {
		if term == "" || isStopWord(term) {
			return
		}
		if n := utf8.RuneCountInString(term); n < h.cfg.MinTokenRunes || n > h.cfg.MaxTokenRunes {
			return
		}
		if c, ok := candidates[term]; ok {
			c.bonus += bonus
		} else {
			candidates[term] = &entityCandidate{term: term, bonus: bonus}
		}
	}

	for _, pattern := range entityPatterns {
		for _, m := range pattern.FindAllStringSubmatch(clean, -1) {
			capture := cleanEntityCapture(m[1])
			credit(capture, h.cfg.EntityPatternBonus)

			// Vocabulary words buried inside the capture are candidates
			// in their own right ("python编程" also offers "编程").
			for word := range importanceSet {
				if word != capture && strings.Contains(m[1], word) {
					credit(word, h.cfg.EntityVocabBonus)
				}
			}
		}
	}

	if len(candidates) == 0 {
		return EntityAction{}, false
	}

	scored := make([]entityCandidate, 0, len(candidates))
	for _, c := range candidates {
		score := float64(strings.Count(clean, c.term)) + c.bonus
		if n := utf8.RuneCountInString(c.term); n >= 2 && n <= 4 {
			score += h.cfg.ShortEntityBonus
		}
		scored = append(scored, entityCandidate{term: c.term, bonus: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].bonus != scored[j].bonus {
			return scored[i].bonus > scored[j].bonus
		}
		pi := strings.Index(clean, scored[i].term)
		pj := strings.Index(clean, scored[j].term)
		if pi != pj {
			return pi < pj
		}
		return scored[i].term < scored[j].term
	})

	best := scored[0]
	if best.bonus <= h.cfg.EntityThreshold {
		return EntityAction{}, false
	}

	return EntityAction{Entity: best.term, Action: classifyAction(clean)}, true
}

// cleanEntityCapture reduces a raw pattern capture to its noun core: the
// segment after a possessive 的 and without a leading connective.
func cleanEntityCapture(capture string) string {
	capture = strings.TrimSpace(capture)
	if idx := strings.LastIndex(capture, "的"); idx >= 0 {
		if rest := capture[idx+len("的"):]; rest != "" {
			capture = rest
		}
	}

	runes := []rune(capture)
	for len(runes) > 2 {
		if _, ok := leadingConnectives[runes[0]]; !ok {
			break
		}
		runes = runes[1:]
	}
	return string(runes)
}

// classifyAction picks the template bucket for the text. Without any intent
// marker the conversation is treated as a discussion.
func classifyAction(clean string) ActionCategory {
	for _, marker := range actionMarkers {
		if marker.re.MatchString(clean) {
			return marker.category
		}
	}
	return ActionDiscussion
}
