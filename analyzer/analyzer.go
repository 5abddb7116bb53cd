// Package analyzer implements the heuristic text-analysis pipeline that
// turns raw conversation text into short, human-readable session titles.
// It is tuned for Chinese conversational text with mixed Latin technical
// terms and performs no network or model calls.
package analyzer

import (
	"regexp"
	"strings"
)

// Keyword is a ranked candidate term extracted from conversation text.
type Keyword struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// TopicMatch is a ranked topic bucket matched against conversation text.
type TopicMatch struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ActionCategory classifies what the user wants to do with the extracted
// entity. It selects the title template bucket.
type ActionCategory int

const (
	ActionDiscussion ActionCategory = iota
	ActionLearning
	ActionSolving
	ActionGeneral
)

// EntityAction is a salient noun phrase and the associated intent.
type EntityAction struct {
	Entity string
	Action ActionCategory
}

// TextAnalyzer is the capability interface behind which the locale-specific
// heuristics live. Implementations must be deterministic.
type TextAnalyzer interface {
	Keywords(text string) []Keyword
	Topics(text string) []TopicMatch
	EntityAction(text string) (EntityAction, bool)
}

// Config holds the scoring tunables. The defaults are empirically chosen;
// they are exposed as named fields rather than inline literals so deployments
// can adjust them.
type Config struct {
	// MaxKeywords caps the ranked keyword list
	MaxKeywords int
	// MaxTopics caps the ranked topic list
	MaxTopics int
	// MinTokenRunes / MaxTokenRunes bound admissible token length
	MinTokenRunes int
	MaxTokenRunes int
	// PositionWeight is the maximum early-occurrence bonus, decaying to 0
	// at the end of the text
	PositionWeight float64
	// LengthBonus rewards 3-4 rune tokens over 2 rune ones
	LengthBonus float64
	// ImportanceBonus rewards tokens found in a domain importance category
	ImportanceBonus float64
	// BreadthBonus rewards topics matched by more than one distinct keyword
	BreadthBonus float64
	// EntityPatternBonus is credited to candidates captured by a phrase pattern
	EntityPatternBonus float64
	// EntityVocabBonus is credited to vocabulary words found inside a capture
	EntityVocabBonus float64
	// ShortEntityBonus rewards entity candidates of 2-4 runes
	ShortEntityBonus float64
	// EntityThreshold is the score an entity must exceed to qualify
	EntityThreshold float64
}

// DefaultConfig returns the default scoring tunables.
func DefaultConfig() Config {
	return Config{
		MaxKeywords:        5,
		MaxTopics:          2,
		MinTokenRunes:      2,
		MaxTokenRunes:      8,
		PositionWeight:     2.0,
		LengthBonus:        0.5,
		ImportanceBonus:    1.5,
		BreadthBonus:       2.0,
		EntityPatternBonus: 1.0,
		EntityVocabBonus:   0.5,
		ShortEntityBonus:   1.0,
		EntityThreshold:    1.0,
	}
}

// Heuristic is the default TextAnalyzer implementation.
type Heuristic struct {
	cfg Config
}

// NewHeuristic creates a Heuristic analyzer with the given tunables.
func NewHeuristic(cfg Config) *Heuristic {
	if cfg.MaxKeywords <= 0 {
		cfg = DefaultConfig()
	}
	return &Heuristic{cfg: cfg}
}

var (
	nonWordRE    = regexp.MustCompile(`[^\w\s\p{Han}]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// cleanText strips everything except word characters, whitespace and CJK
// ideographs, collapses whitespace and lowercases.
func cleanText(text string) string {
	clean := nonWordRE.ReplaceAllString(text, " ")
	clean = whitespaceRE.ReplaceAllString(clean, " ")
	return strings.ToLower(strings.TrimSpace(clean))
}

func isHanRune(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

func isLatinDigitOnly(s string) bool {
	for _, r := range s {
		if isHanRune(r) {
			return false
		}
	}
	return true
}
