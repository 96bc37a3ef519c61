package llm

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE used for budgeting prompts.
const DefaultEncoding = "cl100k_base"

// charsPerToken is the estimate used when no encoding is loaded.
const charsPerToken = 4

// Tokenizer counts and truncates text in model tokens. When the encoding
// cannot be loaded it estimates from the character count.
type Tokenizer struct {
	once     sync.Once
	encoding string
	enc      *tiktoken.Tiktoken
	loadErr  error
}

// NewTokenizer returns a tokenizer for encoding. The encoding is loaded on
// first use.
func NewTokenizer(encoding string) *Tokenizer {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Tokenizer{encoding: encoding}
}

// NewEstimator returns a tokenizer that never loads an encoding.
func NewEstimator() *Tokenizer {
	t := &Tokenizer{}
	t.once.Do(func() {})
	return t
}

func (t *Tokenizer) load() *tiktoken.Tiktoken {
	t.once.Do(func() {
		t.enc, t.loadErr = tiktoken.GetEncoding(t.encoding)
	})
	return t.enc
}

// Exact reports whether counts come from a real encoding. It forces the
// encoding to load.
func (t *Tokenizer) Exact() bool {
	return t.load() != nil
}

// LoadError returns why the encoding could not be loaded, if it failed.
func (t *Tokenizer) LoadError() error {
	t.load()
	return t.loadErr
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := t.load(); enc != nil {
		return len(enc.EncodeOrdinary(text))
	}
	return estimate(text)
}

// Truncate returns the longest prefix of text that fits in maxTokens.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if enc := t.load(); enc != nil {
		tokens := enc.EncodeOrdinary(text)
		if len(tokens) <= maxTokens {
			return text
		}
		return strings.ToValidUTF8(enc.Decode(tokens[:maxTokens]), "")
	}
	if estimate(text) <= maxTokens {
		return text
	}
	limit := maxTokens * charsPerToken
	cut := 0
	for i := range text {
		if i > limit {
			break
		}
		cut = i
	}
	prefix := text[:cut]
	if sp := strings.LastIndexAny(prefix, " \n\t"); sp > len(prefix)/2 {
		prefix = prefix[:sp]
	}
	return strings.TrimSpace(prefix)
}

func estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
