package extraction

import (
	"github.com/fyrsmithlabs/folio/internal/storage"
)

// Profile fields a fact pattern can fill.
const (
	FieldName       = "name"
	FieldCompany    = "company"
	FieldRole       = "role"
	FieldLocation   = "location"
	FieldEmail      = "email"
	FieldExperience = "experience"
	FieldInterest   = "interest"
)

// Pattern is a named regular expression for one memory kind. When the
// expression has a capture group, group 1 is the extracted value.
type Pattern struct {
	Name  string             `json:"name" yaml:"name"`
	Kind  storage.MemoryKind `json:"kind" yaml:"kind"`
	Regex string             `json:"regex" yaml:"regex"`
	// Field names the profile attribute a fact fills.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
}

// Candidate is a memory found in a message.
type Candidate struct {
	Kind    storage.MemoryKind `json:"kind"`
	Pattern string             `json:"pattern"`
	// Content is the sentence the pattern matched.
	Content string `json:"content"`
	// Value is the captured subject, e.g. the company for a work-at fact.
	Value      string  `json:"value,omitempty"`
	Field      string  `json:"field,omitempty"`
	Importance float64 `json:"importance"`
}

// DefaultPatterns returns the built-in first-person patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Preferences
		{Name: "prefer", Kind: storage.MemoryPreference, Regex: `(?i)\bI (?:really |strongly )?prefer\b\s*(.+)`},
		{Name: "like", Kind: storage.MemoryPreference, Regex: `(?i)\bI (?:really )?(?:like|love|enjoy)\b\s*(.+)`},
		{Name: "rather", Kind: storage.MemoryPreference, Regex: `(?i)\bI(?:'d| would) rather\b\s*(.+)`},
		{Name: "interested_in", Kind: storage.MemoryPreference, Field: FieldInterest, Regex: `(?i)\bI(?:'m| am) (?:really |very |particularly )?interested in\b\s*(.+)`},

		// Goals
		{Name: "want_to", Kind: storage.MemoryGoal, Regex: `(?i)\bI (?:really )?want to\b\s*(.+)`},
		{Name: "need_to", Kind: storage.MemoryGoal, Regex: `(?i)\bI need to\b\s*(.+)`},
		{Name: "looking_for", Kind: storage.MemoryGoal, Regex: `(?i)\b(?:I|we)(?:'m|'re| am| are) (?:currently )?looking for\b\s*(.+)`},
		{Name: "goal_is", Kind: storage.MemoryGoal, Regex: `(?i)\bmy (?:main )?goal is\b\s*(?:to\s+)?(.+)`},
		{Name: "trying_to", Kind: storage.MemoryGoal, Regex: `(?i)\bI(?:'m| am) trying to\b\s*(.+)`},
		{Name: "hiring", Kind: storage.MemoryGoal, Regex: `(?i)\bwe(?:'re| are) hiring\b\s*(.*)`},
		{Name: "plan_to", Kind: storage.MemoryGoal, Regex: `(?i)\bI (?:plan|intend|hope) to\b\s*(.+)`},
		{Name: "would_like_to", Kind: storage.MemoryGoal, Regex: `(?i)\bI(?:'d| would) like to\b\s*(.+)`},

		// Facts
		{Name: "name", Kind: storage.MemoryFact, Field: FieldName, Regex: `(?i:\bmy name is|\bcall me|\bI(?:'m| am) called)\s+(\p{Lu}[\p{L}'-]+(?:\s+\p{Lu}[\p{L}'-]+)?)`},
		{Name: "work_at", Kind: storage.MemoryFact, Field: FieldCompany, Regex: `(?i:\bI(?: currently)? (?:work|am working|'m working) (?:at|for))\s+([\p{L}\p{N}&.'-]+(?:\s+[\p{Lu}\p{N}&][\p{L}\p{N}&.'-]*){0,3})`},
		{Name: "role", Kind: storage.MemoryFact, Field: FieldRole, Regex: `(?i)\bI(?:'m| am) (?:a|an|the)\s+((?:[\p{L}-]+\s+){0,3}(?:engineer|developer|manager|designer|recruiter|founder|co-founder|cto|ceo|vp|director|consultant|architect|scientist|analyst|student|researcher|lead|programmer|freelancer))\b`},
		{Name: "location", Kind: storage.MemoryFact, Field: FieldLocation, Regex: `(?i)\bI(?: live|'m based| am based|'m located| am located) in\s+([\p{L}][\p{L} .'-]{1,40}?)\s*(?:,|\.|!|\?|;|$|\band\b)`},
		{Name: "email", Kind: storage.MemoryFact, Field: FieldEmail, Regex: `([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`},
		{Name: "years", Kind: storage.MemoryFact, Field: FieldExperience, Regex: `(?i)\bI(?: have|'ve got|'ve| have got) (\d+)\+? years?\b`},

		// Achievements
		{Name: "metric", Kind: storage.MemoryAchievement, Regex: `(?i)\bI (?:increased|reduced|cut|improved|grew|boosted|decreased)\b.+\bby\s+(\d+(?:\.\d+)?\s*(?:%|x|percent|times))`},
		{Name: "built", Kind: storage.MemoryAchievement, Regex: `(?i)\bI (?:built|launched|led|won|shipped|founded|created|designed|scaled|migrated|delivered)\b\s*(.+)`},
		{Name: "promoted", Kind: storage.MemoryAchievement, Regex: `(?i)\bI (?:was|got) promoted\b\s*(.*)`},
	}
}
