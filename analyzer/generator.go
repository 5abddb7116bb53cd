package analyzer

import (
	"fmt"
	"strings"
)

// Title generation paths, reported alongside the generated title so callers
// can observe which stage of the chain produced it.
const (
	PathEntity   = "entity"
	PathTopic    = "topic"
	PathKeyword  = "keyword"
	PathFallback = "fallback"
)

// Result is a generated title and the path that produced it.
type Result struct {
	Title string
	Path  string
}

// Generator orchestrates the analysis chain: entity/action extraction first,
// then topic classification, then keyword extraction, then raw-message
// truncation. Given at least one non-empty user message it always produces
// a title.
type Generator struct {
	analyzer    TextAnalyzer
	maxMessages int
}

// NewGenerator creates a Generator reading at most maxMessages user
// messages per session.
func NewGenerator(analyzer TextAnalyzer, maxMessages int) *Generator {
	if maxMessages <= 0 {
		maxMessages = 5
	}
	return &Generator{analyzer: analyzer, maxMessages: maxMessages}
}

// Generate derives a session title from the user's messages. It is a pure
// function of its inputs; it reports false when there is nothing to work
// with (no user messages).
func (g *Generator) Generate(userMessages []string, personaID, personaName string) (Result, bool) {
	messages := make([]string, 0, g.maxMessages)
	for _, m := range userMessages {
		if strings.TrimSpace(m) == "" {
			continue
		}
		messages = append(messages, m)
		if len(messages) == g.maxMessages {
			break
		}
	}
	if len(messages) == 0 {
		return Result{}, false
	}

	text := strings.Join(messages, " ")

	if ea, ok := g.analyzer.EntityAction(text); ok {
		return Result{Title: FormatEntityTitle(personaID, ea), Path: PathEntity}, true
	}

	if topics := g.analyzer.Topics(text); len(topics) > 0 {
		return Result{Title: FormatTopicTitle(personaID, topics[0].Label), Path: PathTopic}, true
	}

	if keywords := g.analyzer.Keywords(text); len(keywords) > 0 {
		term := trimRunes(keywords[0].Term, 4)
		return Result{Title: FormatTopicTitle(personaID, term), Path: PathKeyword}, true
	}

	return Result{Title: FallbackTitle(personaName, messages[0]), Path: PathFallback}, true
}

func trimRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// DescribeResult is a short human-readable rendering used in debug logs.
func DescribeResult(r Result) string {
	return fmt.Sprintf("%s (%s, %d runes)", r.Title, r.Path, TitleRuneLen(r.Title))
}
