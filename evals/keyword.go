package evals

import (
	"errors"
	"sort"
	"strings"
	"unicode"
)

// ErrNoMatch is returned when no tool shares a word with the input.
var ErrNoMatch = errors.New("no tool matches the input")

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "what": true,
	"are": true, "any": true, "all": true, "show": true, "give": true,
	"get": true, "this": true, "that": true, "from": true, "into": true,
	"equivalent": true,
}

// KeywordSelector picks the tool whose name and description share the most
// words with the input. It never fills arguments, so it gives a floor to
// compare model-backed selectors against.
type KeywordSelector struct {
	tools []keywordTool
}

type keywordTool struct {
	name        string
	nameWords   map[string]bool
	detailWords map[string]bool
}

// NewKeywordSelector builds a selector from tool descriptions keyed by name.
func NewKeywordSelector(descriptions map[string]string) *KeywordSelector {
	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &KeywordSelector{tools: make([]keywordTool, 0, len(names))}
	for _, name := range names {
		s.tools = append(s.tools, keywordTool{
			name:        name,
			nameWords:   wordSet(strings.ReplaceAll(name, "_", " ")),
			detailWords: wordSet(descriptions[name]),
		})
	}
	return s
}

// SelectTool scores each tool by the input words it shares: two points for
// a word in the tool name, one for a word only in its description. Ties go
// to the alphabetically first tool.
func (s *KeywordSelector) SelectTool(input string) (string, map[string]any, error) {
	words := wordSet(input)

	best, bestScore := "", 0
	for _, tool := range s.tools {
		score := 0
		for w := range words {
			switch {
			case tool.nameWords[w]:
				score += 2
			case tool.detailWords[w]:
				score++
			}
		}
		if score > bestScore {
			best, bestScore = tool.name, score
		}
	}
	if best == "" {
		return "", nil, ErrNoMatch
	}
	return best, map[string]any{}, nil
}

// wordSet lowercases text and keeps words of three or more letters that are
// not stop words. A trailing plural "s" is dropped.
func wordSet(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, w := range fields {
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			w = strings.TrimSuffix(w, "s")
		}
		if len(w) < 3 || stopWords[w] {
			continue
		}
		set[w] = true
	}
	return set
}
