package analyzer

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Keywords tokenizes the text, filters stop words and ranks the surviving
// terms by frequency, position, length and domain importance. The result is
// capped at MaxKeywords. Empty or fully-filtered input yields nil.
func (h *Heuristic) Keywords(text string) []Keyword {
	clean := cleanText(text)
	if clean == "" {
		return nil
	}

	totalRunes := utf8.RuneCountInString(clean)
	candidates := make(map[string]struct{})
	for _, field := range strings.Fields(clean) {
		collectCandidates(field, candidates)
	}

	keywords := make([]Keyword, 0, len(candidates))
	for term := range candidates {
		if !h.admissible(term) {
			continue
		}
		keywords = append(keywords, Keyword{
			Term:  term,
			Score: h.scoreKeyword(clean, term, totalRunes),
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		pi := strings.Index(clean, keywords[i].Term)
		pj := strings.Index(clean, keywords[j].Term)
		if pi != pj {
			return pi < pj
		}
		return keywords[i].Term < keywords[j].Term
	})

	if len(keywords) > h.cfg.MaxKeywords {
		keywords = keywords[:h.cfg.MaxKeywords]
	}
	return keywords
}

// collectCandidates splits a whitespace-delimited field into token
// candidates. CJK runs carry no word boundaries, so they contribute their
// 2-4 rune substrings; Latin/digit runs contribute whole tokens.
func collectCandidates(field string, out map[string]struct{}) {
	runes := []rune(field)
	out[field] = struct{}{}

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := runes[start:end]
		for n := 2; n <= 4 && n <= len(run); n++ {
			for i := 0; i+n <= len(run); i++ {
				out[string(run[i:i+n])] = struct{}{}
			}
		}
		start = -1
	}

	for i, r := range runes {
		if isHanRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(runes))

	// Latin runs inside mixed tokens ("python编程" -> "python")
	var latin []rune
	for _, r := range runes {
		if isHanRune(r) {
			if len(latin) > 0 {
				out[string(latin)] = struct{}{}
				latin = latin[:0]
			}
			continue
		}
		latin = append(latin, r)
	}
	if len(latin) > 0 && len(latin) < len(runes) {
		out[string(latin)] = struct{}{}
	}
}

func (h *Heuristic) admissible(term string) bool {
	n := utf8.RuneCountInString(term)
	if n < h.cfg.MinTokenRunes || n > h.cfg.MaxTokenRunes {
		return false
	}
	if isStopWord(term) {
		return false
	}
	if isLatinDigitOnly(term) && !isTechTerm(term) {
		return false
	}
	return true
}

func (h *Heuristic) scoreKeyword(clean, term string, totalRunes int) float64 {
	score := float64(strings.Count(clean, term))

	// Earlier occurrence scores higher, decaying to zero at the end.
	if idx := strings.Index(clean, term); idx >= 0 && totalRunes > 0 {
		position := utf8.RuneCountInString(clean[:idx])
		score += h.cfg.PositionWeight * (1 - float64(position)/float64(totalRunes))
	}

	if n := utf8.RuneCountInString(term); n >= 3 && n <= 4 {
		score += h.cfg.LengthBonus
	}

	if isImportant(term) {
		score += h.cfg.ImportanceBonus
	}

	return score
}
