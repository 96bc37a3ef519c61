package extraction

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

// Base importance per memory kind.
var baseImportance = map[storage.MemoryKind]float64{
	storage.MemoryAchievement: 0.8,
	storage.MemoryGoal:        0.7,
	storage.MemoryFact:        0.6,
	storage.MemoryPreference:  0.5,
	storage.MemorySummary:     0.9,
}

const (
	metricBonus   = 0.1
	emphasisBonus = 0.1
	lengthBonus   = 0.05
	longStatement = 12
)

var (
	hasNumber = regexp.MustCompile(`\d`)
	emphasis  = regexp.MustCompile(`(?i)\b(?:really|very|important|must|critical|definitely|absolutely)\b|!`)
)

// Importance scores content of kind in [0, 1]: the kind's base plus bonuses
// for numbers, emphasis and statements longer than twelve words.
func Importance(kind storage.MemoryKind, content string) float64 {
	score, ok := baseImportance[kind]
	if !ok {
		score = 0.5
	}
	if hasNumber.MatchString(content) {
		score += metricBonus
	}
	if emphasis.MatchString(content) {
		score += emphasisBonus
	}
	if len(strings.Fields(content)) > longStatement {
		score += lengthBonus
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
