package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/extraction"
	"github.com/fyrsmithlabs/folio/internal/llm"
	"github.com/fyrsmithlabs/folio/internal/reranker"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

const analysisSystemPrompt = `You analyse documents for a software professional's portfolio knowledge base.
Answer in plain text using exactly these section headings, each on its own line:

SUMMARY:
<two to four sentences>

KEY POINTS:
- <point>

SKILLS:
- <skill>

TECHNOLOGIES:
- <technology>

TOPICS:
- <topic>

ACHIEVEMENTS:
- <achievement, with metrics when the document states them>

EXPERIENCE LEVEL: <junior | mid | senior | lead | principal | unknown>

Only use information present in the document. Leave a section empty rather than guessing.`

// analysisInputTokens bounds the document text sent for analysis.
const analysisInputTokens = 6000

const maxListItems = 15

// Analysis is a document summary plus structured insights.
type Analysis struct {
	Summary  string
	Insights storage.DocumentInsights
}

// analyze asks the LLM for an analysis and falls back to heuristics when the
// client is disabled, fails or answers in an unusable shape.
func (p *Processor) analyze(ctx context.Context, filename, text string) Analysis {
	if p.llm == nil || !p.llm.Available() {
		return HeuristicAnalysis(text)
	}

	body := p.tokenizer.Truncate(text, analysisInputTokens)
	resp, err := p.llm.Complete(ctx, llm.Request{
		System: analysisSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Document: %s\n\n%s", filename, body),
		}},
		Temperature: llm.Temperature(0),
	})
	if err != nil {
		p.logger.Warn("document analysis failed, using heuristics",
			zap.String("filename", filename), zap.Error(err))
		analysisFallbacks.WithLabelValues("llm_error").Inc()
		return HeuristicAnalysis(text)
	}

	a, ok := ParseAnalysis(resp.Text)
	if !ok {
		p.logger.Warn("unparseable document analysis, using heuristics", zap.String("filename", filename))
		analysisFallbacks.WithLabelValues("unparseable").Inc()
		return HeuristicAnalysis(text)
	}
	return a
}

var (
	sectionHeader = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?(?:\*\*)?\s*(SUMMARY|KEY POINTS|SKILLS|TECHNOLOGIES|TOPICS|ACHIEVEMENTS|EXPERIENCE LEVEL)\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
	bulletLine    = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
	markdownNoise = regexp.MustCompile(`\*\*|__|` + "`")
)

var experienceLevels = map[string]bool{
	"junior": true, "mid": true, "senior": true, "lead": true, "principal": true,
}

// ParseAnalysis reads the sectioned answer produced for analysisSystemPrompt.
// Bulleted sections become lists; sections written as one line are split on
// commas. ok is false when no section could be found.
func ParseAnalysis(answer string) (Analysis, bool) {
	sections := map[string][]string{}
	current := ""
	for _, line := range strings.Split(answer, "\n") {
		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			current = strings.ToUpper(m[1])
			sections[current] = nil
			if rest := strings.TrimSpace(m[2]); rest != "" {
				sections[current] = append(sections[current], rest)
			}
			continue
		}
		if current == "" || strings.TrimSpace(line) == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	if len(sections) == 0 {
		return Analysis{}, false
	}

	a := Analysis{
		Summary: strings.Join(cleanLines(sections["SUMMARY"]), " "),
		Insights: storage.DocumentInsights{
			KeyPoints:    listItems(sections["KEY POINTS"]),
			Skills:       listItems(sections["SKILLS"]),
			Technologies: listItems(sections["TECHNOLOGIES"]),
			Topics:       listItems(sections["TOPICS"]),
			Achievements: listItems(sections["ACHIEVEMENTS"]),
			Source:       "llm",
		},
	}
	if lvl := cleanLines(sections["EXPERIENCE LEVEL"]); len(lvl) > 0 {
		word := strings.ToLower(strings.Fields(lvl[0])[0])
		word = strings.Trim(word, ".,;:")
		if experienceLevels[word] {
			a.Insights.ExperienceLevel = word
		}
	}
	if a.Summary == "" && len(a.Insights.KeyPoints) == 0 && len(a.Insights.Topics) == 0 {
		return Analysis{}, false
	}
	return a, true
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(markdownNoise.ReplaceAllString(l, ""))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// listItems turns section lines into a deduplicated list. Bullet lines are
// items; other lines are comma separated items.
func listItems(lines []string) []string {
	var items []string
	for _, l := range cleanLines(lines) {
		if m := bulletLine.FindStringSubmatch(l); m != nil {
			items = append(items, strings.TrimRight(m[1], ".;"))
			continue
		}
		for _, it := range strings.Split(l, ",") {
			items = append(items, strings.TrimRight(strings.TrimSpace(it), ".;"))
		}
	}
	return dedupe(items, maxListItems)
}

func dedupe(items []string, limit int) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(it)
		if it == "" || seen[key] || strings.EqualFold(it, "none") || strings.EqualFold(it, "n/a") {
			continue
		}
		seen[key] = true
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

var (
	achievementVerb = regexp.MustCompile(`(?i)\b(?:increased|reduced|improved|launched|led|built|shipped|grew|saved|cut|won|delivered|scaled|founded|awarded)\b`)
	hasDigit        = regexp.MustCompile(`\d`)
	levelPatterns   = []struct {
		level string
		re    *regexp.Regexp
	}{
		{"principal", regexp.MustCompile(`(?i)\b(?:principal|staff|distinguished)\b`)},
		{"lead", regexp.MustCompile(`(?i)\b(?:lead|head of|manager|director)\b`)},
		{"senior", regexp.MustCompile(`(?i)\bsenior\b|\b(?:[5-9]|\d{2})\+? years\b`)},
		{"junior", regexp.MustCompile(`(?i)\b(?:junior|intern|graduate|entry[- ]level)\b`)},
	}
)

// HeuristicAnalysis summarises text without an LLM: the opening sentences
// as summary, dictionary matches for technologies and skills, frequent terms
// as topics, and sentences with numbers or outcome verbs as achievements.
func HeuristicAnalysis(text string) Analysis {
	sentences := extraction.Sentences(text)

	var summary strings.Builder
	for _, s := range sentences {
		if summary.Len() > 0 && summary.Len()+len(s) > 400 {
			break
		}
		if summary.Len() > 0 {
			summary.WriteByte(' ')
		}
		summary.WriteString(s)
		if summary.Len() >= 200 {
			break
		}
	}

	var keyPoints, achievements []string
	for _, s := range sentences {
		if len(s) > 300 {
			continue
		}
		if achievementVerb.MatchString(s) && hasDigit.MatchString(s) {
			achievements = append(achievements, s)
		} else if hasDigit.MatchString(s) || achievementVerb.MatchString(s) {
			keyPoints = append(keyPoints, s)
		}
	}

	level := ""
	for _, lp := range levelPatterns {
		if lp.re.MatchString(text) {
			level = lp.level
			break
		}
	}

	return Analysis{
		Summary: summary.String(),
		Insights: storage.DocumentInsights{
			KeyPoints:       dedupe(keyPoints, 5),
			Skills:          orEmpty(extraction.Skills(text)),
			Technologies:    orEmpty(extraction.Technologies(text)),
			Topics:          reranker.TopTerms(text, 8),
			Achievements:    dedupe(achievements, 5),
			ExperienceLevel: level,
			Source:          "heuristic",
		},
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
