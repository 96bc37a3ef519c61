package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis_MarkdownStyle(t *testing.T) {
	answer := `Here is the analysis.

**SUMMARY:** A backend engineer's case study
about payments.

## KEY POINTS:
1. Rebuilt the ledger
2) Cut costs
* Rebuilt the ledger

**Skills**: API design, Testing, none

TECHNOLOGIES:
- Go
- PostgreSQL

ACHIEVEMENTS:
N/A

EXPERIENCE LEVEL: unknown`

	a, ok := ParseAnalysis(answer)
	require.True(t, ok)
	assert.Equal(t, "A backend engineer's case study about payments.", a.Summary)
	assert.Equal(t, []string{"Rebuilt the ledger", "Cut costs"}, a.Insights.KeyPoints)
	assert.Equal(t, []string{"API design", "Testing"}, a.Insights.Skills)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, a.Insights.Technologies)
	assert.Empty(t, a.Insights.Achievements)
	assert.Empty(t, a.Insights.Topics)
	assert.Empty(t, a.Insights.ExperienceLevel)
	assert.Equal(t, "llm", a.Insights.Source)
}

func TestParseAnalysis_Unusable(t *testing.T) {
	_, ok := ParseAnalysis("I cannot help with that.")
	assert.False(t, ok)

	_, ok = ParseAnalysis("SKILLS:\n- Go")
	assert.False(t, ok, "a skills list alone is not an analysis")
}

func TestHeuristicAnalysis(t *testing.T) {
	a := HeuristicAnalysis("Principal engineer at Initech. Increased throughput by 3x using Rust and Redis. Enjoys hiking.")
	assert.Equal(t, "heuristic", a.Insights.Source)
	assert.Equal(t, "principal", a.Insights.ExperienceLevel)
	assert.Equal(t, []string{"Redis", "Rust"}, a.Insights.Technologies)
	assert.Equal(t, []string{"Increased throughput by 3x using Rust and Redis."}, a.Insights.Achievements)
	assert.NotEmpty(t, a.Summary)
	assert.NotNil(t, a.Insights.Skills)
}

func TestHeuristicAnalysis_KeepsSentencePunctuation(t *testing.T) {
	a := HeuristicAnalysis("Led 4 teams across two offices. Shipped 12 releases in 2023. Led 4 teams across two offices.")
	assert.Equal(t, []string{"Led 4 teams across two offices.", "Shipped 12 releases in 2023."}, a.Insights.Achievements)

	b, ok := ParseAnalysis("SUMMARY: Payments work.\nKEY POINTS:\n- Cut costs.\n- Cut costs;\n- Rebuilt the ledger.")
	require.True(t, ok)
	assert.Equal(t, []string{"Cut costs", "Rebuilt the ledger"}, b.Insights.KeyPoints)
}
