package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

func values(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}

func TestExtractPreferences(t *testing.T) {
	got := Default.ExtractPreferences("I prefer remote roles. I love working with Go! The weather is nice. I’m interested in platform teams")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"remote roles", "working with Go", "platform teams"}, values(got))
	assert.Equal(t, FieldInterest, got[2].Field)
	for _, c := range got {
		assert.Equal(t, storage.MemoryPreference, c.Kind)
	}
}

func TestExtractGoals(t *testing.T) {
	got := Default.ExtractGoals("We're hiring a staff engineer. My goal is to scale our data team. I plan to launch in Q3.")
	require.Len(t, got, 3)
	assert.Equal(t, "hiring", got[0].Pattern)
	assert.Equal(t, "a staff engineer", got[0].Value)
	assert.Equal(t, "scale our data team", got[1].Value)
	assert.Equal(t, "launch in Q3", got[2].Value)
}

func TestExtractFacts(t *testing.T) {
	text := "Hi, my name is Dana Reyes and I work at Acme Robotics as a recruiter. " +
		"I'm a senior software engineer. I live in Lisbon. Reach me at dana@example.com. I have 8 years of experience."
	got := Default.ExtractFacts(text)

	fields := map[string]string{}
	for _, c := range got {
		fields[c.Field] = c.Value
	}
	assert.Equal(t, "Dana Reyes", fields[FieldName])
	assert.Equal(t, "Acme Robotics", fields[FieldCompany])
	assert.Equal(t, "senior software engineer", fields[FieldRole])
	assert.Equal(t, "Lisbon", fields[FieldLocation])
	assert.Equal(t, "dana@example.com", fields[FieldEmail])
	assert.Equal(t, "8", fields[FieldExperience])
}

func TestExtractFacts_NameNeedsCapital(t *testing.T) {
	got := Default.ExtractFacts("call me maybe")
	assert.Empty(t, got)
}

func TestExtractAchievements(t *testing.T) {
	got := Default.ExtractAchievements("I increased conversion by 35%. I shipped the new billing system. I was promoted last year.")
	require.Len(t, got, 3)
	assert.Equal(t, "metric", got[0].Pattern)
	assert.Equal(t, "35%", got[0].Value)
	assert.Equal(t, "built", got[1].Pattern)
	assert.Equal(t, "promoted", got[2].Pattern)
}

func TestExtract_NothingInSmallTalk(t *testing.T) {
	assert.Empty(t, Default.Extract("Hello there, how are you today?"))
}

func TestImportance(t *testing.T) {
	assert.InDelta(t, 0.5, Importance(storage.MemoryPreference, "I like tea"), 1e-9)
	assert.InDelta(t, 0.9, Importance(storage.MemoryAchievement, "I grew revenue by 20%"), 1e-9)
	assert.InDelta(t, 0.8, Importance(storage.MemoryGoal, "I really want to move to Berlin"), 1e-9)
	assert.InDelta(t, 1.0, Importance(storage.MemorySummary, "We must ship 3 things!"), 1e-9)
	long := "I want to find a team that values thoughtful code review and pairing on hard problems"
	assert.InDelta(t, 0.75, Importance(storage.MemoryGoal, long), 1e-9)
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two!", "Three?", "Four", "five"},
		Sentences("One. Two! Three?\nFour\n\nfive"))
	assert.Equal(t, []string{"Email a@b.com today."}, Sentences("Email a@b.com today."))
}

func TestNewExtractor_BadPattern(t *testing.T) {
	_, err := NewExtractor(Pattern{Name: "bad", Kind: storage.MemoryFact, Regex: "("})
	assert.Error(t, err)
}
