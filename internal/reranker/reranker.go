// Package reranker scores text by keyword overlap. It re-ranks vector search
// hits and ranks stored text when no vector results exist.
package reranker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"
)

// ErrNilContext is returned when a nil context is passed to Rerank.
var ErrNilContext = errors.New("context cannot be nil")

// Document is a candidate with its similarity score from the first stage.
type Document struct {
	ID      string
	Content string
	Score   float32
}

// ScoredDocument is a re-ranked candidate.
type ScoredDocument struct {
	Document
	// Overlap is the share of query keywords found in the content.
	Overlap float32
	// Combined is the score the results are sorted by.
	Combined     float32
	OriginalRank int
}

// Reranker combines the first-stage score with keyword overlap.
type Reranker struct {
	// ScoreWeight is the weight of the first-stage score; the overlap gets
	// 1 - ScoreWeight.
	ScoreWeight float32
}

// New returns a reranker that weighs both signals equally.
func New() *Reranker {
	return &Reranker{ScoreWeight: 0.5}
}

// Rerank sorts docs by combined score and returns the best topK. topK <= 0
// keeps every document.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []Document, topK int) ([]ScoredDocument, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 || topK > len(docs) {
		topK = len(docs)
	}

	queryTerms := Keywords(query)
	w := r.ScoreWeight
	if len(queryTerms) == 0 {
		w = 1
	}

	scored := make([]ScoredDocument, len(docs))
	for i, d := range docs {
		overlap := float32(0)
		if len(queryTerms) > 0 {
			overlap = Overlap(queryTerms, Keywords(d.Content))
		}
		scored[i] = ScoredDocument{
			Document:     d,
			Overlap:      overlap,
			Combined:     w*d.Score + (1-w)*overlap,
			OriginalRank: i,
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Combined > scored[j].Combined
	})
	return scored[:topK], nil
}

// Keywords lower-cases text and returns its distinct terms of three or more
// characters that are not stop words, in order of first appearance.
func Keywords(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimLeft(t, "+#")
		short := len([]rune(t)) < 3 && !strings.ContainsAny(t, "+#")
		if t == "" || short || IsStopword(t) || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Overlap returns the fraction of query terms present in doc terms.
func Overlap(query, doc []string) float32 {
	if len(query) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(doc))
	for _, t := range doc {
		set[t] = struct{}{}
	}
	matched := 0
	for _, t := range query {
		if _, ok := set[t]; ok {
			matched++
		}
	}
	return float32(matched) / float32(len(query))
}

// Jaccard returns |a ∩ b| / |a ∪ b| over the two term sets.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// TopTerms returns up to n keywords of text ordered by frequency, ties
// broken by first appearance.
func TopTerms(text string, n int) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	counts := map[string]int{}
	first := map[string]int{}
	for i, t := range tokens {
		if len([]rune(t)) < 4 || IsStopword(t) {
			continue
		}
		if _, ok := first[t]; !ok {
			first[t] = i
		}
		counts[t]++
	}
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return first[terms[i]] < first[terms[j]]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true, "he": true,
	"she": true, "it": true, "we": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true, "about": true,
	"into": true, "than": true, "then": true, "there": true, "their": true, "them": true,
	"your": true, "our": true, "its": true, "also": true, "just": true, "more": true,
	"most": true, "some": true, "such": true, "only": true, "over": true, "very": true,
	"really": true, "any": true, "all": true, "not": true, "out": true, "up": true,
	"tell": true, "me": true, "my": true, "us": true, "his": true, "her": true,
	"like": true, "know": true, "want": true, "need": true, "much": true, "many": true,
	"each": true, "other": true, "were": true, "while": true, "after": true, "before": true,
}

// IsStopword reports whether token is a common English stop word.
func IsStopword(token string) bool {
	return stopwords[token]
}
