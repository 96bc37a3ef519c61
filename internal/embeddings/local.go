package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"
	"unicode"
)

// bigramWeight scales adjacent-word features relative to single words.
const bigramWeight = 0.5

// Local is a deterministic feature-hashing embedder. Texts sharing words land
// near each other; it has no notion of synonyms.
type Local struct {
	dim     int
	metrics *Metrics
}

// NewLocal returns a hashing embedder producing vectors of size dim.
func NewLocal(dim int) (*Local, error) {
	if dim < 16 {
		return nil, fmt.Errorf("%w: local dimension must be at least 16, got %d", ErrInvalidConfig, dim)
	}
	return &Local{dim: dim}, nil
}

// EmbedDocuments embeds each text.
func (l *Local) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	var err error
	defer func() { l.metrics.Record(ctx, "local", "embed_documents", time.Since(start), len(texts), err) }()

	if len(texts) == 0 {
		err = fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = l.embed(text)
	}
	return out, nil
}

// EmbedQuery embeds a single query.
func (l *Local) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var err error
	defer func() { l.metrics.Record(ctx, "local", "embed_query", time.Since(start), 1, err) }()

	if strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
		return nil, err
	}
	return l.embed(text), nil
}

func (l *Local) Dimension() int { return l.dim }
func (l *Local) Name() string   { return "local" }
func (l *Local) Close() error   { return nil }

func (l *Local) embed(text string) []float32 {
	vec := make([]float64, l.dim)
	tokens := Tokenize(text)
	for i, tok := range tokens {
		l.add(vec, tok, 1)
		if i > 0 {
			l.add(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, l.dim)
	if norm == 0 {
		// Texts without word characters still need a unit vector.
		out[0] = 1
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func (l *Local) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(l.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// Tokenize lower-cases text, splits it on anything that is not a letter or
// digit, drops single characters and stop words, and strips common English
// suffixes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopWords[f] {
			continue
		}
		out = append(out, stem(f))
	}
	return out
}

func stem(w string) string {
	if len(w) <= 4 {
		return w
	}
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(w, suffix) && len(w)-len(suffix) >= 3 {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"but": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "this": true, "to": true, "was": true, "were": true,
	"what": true, "when": true, "which": true, "who": true, "will": true, "with": true,
	"you": true, "your": true, "do": true, "does": true, "did": true, "me": true,
	"my": true, "we": true, "our": true, "they": true, "their": true, "he": true,
	"she": true, "his": true, "her": true, "about": true, "so": true, "if": true,
}
