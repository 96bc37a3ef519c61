package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

// maxContentRunes bounds the stored sentence of a candidate.
const maxContentRunes = 300

type compiledPattern struct {
	Pattern
	regex *regexp.Regexp
}

// Extractor matches memory patterns against messages. It is safe for
// concurrent use.
type Extractor struct {
	byKind map[storage.MemoryKind][]compiledPattern
}

// NewExtractor compiles patterns; with none it uses DefaultPatterns.
func NewExtractor(patterns ...Pattern) (*Extractor, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	e := &Extractor{byKind: make(map[storage.MemoryKind][]compiledPattern)}
	for _, p := range patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %s: %w", p.Name, err)
		}
		e.byKind[p.Kind] = append(e.byKind[p.Kind], compiledPattern{Pattern: p, regex: re})
	}
	return e, nil
}

// Default is an Extractor over DefaultPatterns.
var Default = mustDefault()

func mustDefault() *Extractor {
	e, err := NewExtractor()
	if err != nil {
		panic(err)
	}
	return e
}

// ExtractPreferences returns likes, dislikes and interests.
func (e *Extractor) ExtractPreferences(text string) []Candidate {
	return e.extract(storage.MemoryPreference, text)
}

// ExtractGoals returns what the speaker wants or is looking for.
func (e *Extractor) ExtractGoals(text string) []Candidate {
	return e.extract(storage.MemoryGoal, text)
}

// ExtractFacts returns biographical facts. Patterns with a Field emit one
// candidate per match so a sentence can yield both a name and a company.
func (e *Extractor) ExtractFacts(text string) []Candidate {
	var out []Candidate
	for _, sentence := range Sentences(text) {
		for _, p := range e.byKind[storage.MemoryFact] {
			m := p.regex.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}
			out = append(out, newCandidate(p, sentence, m))
		}
	}
	return out
}

// ExtractAchievements returns accomplishments, with metrics when stated.
func (e *Extractor) ExtractAchievements(text string) []Candidate {
	return e.extract(storage.MemoryAchievement, text)
}

// Extract runs every extractor over text.
func (e *Extractor) Extract(text string) []Candidate {
	var out []Candidate
	out = append(out, e.ExtractPreferences(text)...)
	out = append(out, e.ExtractGoals(text)...)
	out = append(out, e.ExtractFacts(text)...)
	out = append(out, e.ExtractAchievements(text)...)
	return out
}

// extract returns at most one candidate of kind per sentence: the first
// pattern that matches.
func (e *Extractor) extract(kind storage.MemoryKind, text string) []Candidate {
	var out []Candidate
	for _, sentence := range Sentences(text) {
		for _, p := range e.byKind[kind] {
			m := p.regex.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}
			out = append(out, newCandidate(p, sentence, m))
			break
		}
	}
	return out
}

func newCandidate(p compiledPattern, sentence string, m []string) Candidate {
	c := Candidate{
		Kind:    p.Kind,
		Pattern: p.Name,
		Content: truncateRunes(sentence, maxContentRunes),
		Field:   p.Field,
	}
	if len(m) > 1 {
		c.Value = strings.TrimRight(strings.TrimSpace(m[1]), ".,;:!? ")
	}
	c.Importance = Importance(p.Kind, sentence)
	return c
}

var sentenceEnd = regexp.MustCompile(`([.!?]+)(\s+|$)|\n+`)

// Sentences splits text into trimmed sentences, keeping terminal
// punctuation. Curly apostrophes are straightened so patterns can use '.
func Sentences(text string) []string {
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(text)
	var out []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringSubmatchIndex(text, -1) {
		end := loc[1]
		if loc[2] >= 0 {
			end = loc[3]
		}
		if s := strings.TrimSpace(text[last:end]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
