// Package secrets redacts credentials from uploaded documents and chat
// messages before they are stored, embedded or sent to a language model.
package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fyrsmithlabs/folio/internal/config"
)

// Redacted replaces every detected secret.
const Redacted = "[REDACTED]"

var findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "folio",
	Subsystem: "secrets",
	Name:      "findings_total",
	Help:      "Secrets redacted from scrubbed content, by rule.",
}, []string{"rule"})

// Finding is one detected secret. The matched value is never kept.
type Finding struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Line     int    `json:"line"`
}

// Result is the outcome of scrubbing one piece of content.
type Result struct {
	Scrubbed string    `json:"scrubbed"`
	Findings []Finding `json:"findings,omitempty"`
}

// HasFindings reports whether anything was redacted.
func (r Result) HasFindings() bool {
	return len(r.Findings) > 0
}

// RuleIDs returns the distinct rules that matched, sorted.
func (r Result) RuleIDs() []string {
	seen := map[string]struct{}{}
	for _, f := range r.Findings {
		seen[f.RuleID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type compiledRule struct {
	Rule
	pattern  *regexp.Regexp
	keywords []string
}

// Scrubber applies the detection rules. It is safe for concurrent use; the
// zero value and a nil *Scrubber pass content through unchanged.
type Scrubber struct {
	enabled bool
	rules   []compiledRule
	allow   []*regexp.Regexp
}

// New compiles the default rules plus extra.
func New(cfg config.SecretsConfig, extra ...Rule) (*Scrubber, error) {
	s := &Scrubber{enabled: cfg.Enabled}
	if !cfg.Enabled {
		return s, nil
	}
	for _, rule := range append(DefaultRules(), extra...) {
		if rule.ID == "" || rule.Pattern == "" {
			return nil, fmt.Errorf("secret rule %q: id and pattern are required", rule.ID)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("secret rule %s: %w", rule.ID, err)
		}
		kws := make([]string, len(rule.Keywords))
		for i, kw := range rule.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		s.rules = append(s.rules, compiledRule{Rule: rule, pattern: re, keywords: kws})
	}
	for i, pattern := range cfg.AllowList {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("secrets allow_list %d: %w", i, err)
		}
		s.allow = append(s.allow, re)
	}
	return s, nil
}

// Enabled reports whether the scrubber redacts anything.
func (s *Scrubber) Enabled() bool {
	return s != nil && s.enabled
}

// Scrub replaces detected secrets in content with Redacted.
func (s *Scrubber) Scrub(content string) Result {
	res := Result{Scrubbed: content}
	if !s.Enabled() || content == "" {
		return res
	}

	lower := strings.ToLower(content)
	var spans [][2]int
	for _, rule := range s.rules {
		if !rule.hasKeyword(lower) {
			continue
		}
		for _, m := range rule.pattern.FindAllStringIndex(content, -1) {
			if rule.Validate != nil && !rule.Validate(content[m[0]:m[1]]) {
				continue
			}
			if s.allowed(content[m[0]:m[1]]) {
				continue
			}
			res.Findings = append(res.Findings, Finding{
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Start:    m[0],
				End:      m[1],
				Line:     strings.Count(content[:m[0]], "\n") + 1,
			})
			spans = append(spans, [2]int{m[0], m[1]})
			findingsTotal.WithLabelValues(rule.ID).Inc()
		}
	}
	if len(spans) == 0 {
		return res
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	var b strings.Builder
	b.Grow(len(content))
	cursor := 0
	for _, sp := range mergeSpans(spans) {
		b.WriteString(content[cursor:sp[0]])
		b.WriteString(Redacted)
		cursor = sp[1]
	}
	b.WriteString(content[cursor:])
	res.Scrubbed = b.String()
	return res
}

// String is Scrub without the findings.
func (s *Scrubber) String(content string) string {
	return s.Scrub(content).Scrubbed
}

func (r compiledRule) hasKeyword(lower string) bool {
	if len(r.keywords) == 0 {
		return true
	}
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (s *Scrubber) allowed(match string) bool {
	for _, re := range s.allow {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}

// mergeSpans joins overlapping spans; input must be sorted by start.
func mergeSpans(spans [][2]int) [][2]int {
	merged := [][2]int{spans[0]}
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp[0] <= last[1] {
			if sp[1] > last[1] {
				last[1] = sp[1]
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}
