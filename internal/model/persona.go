package model

// Comprehension is how well a persona understands questions
type Comprehension string

const (
	ComprehensionHigh   Comprehension = "high"
	ComprehensionMedium Comprehension = "medium"
	ComprehensionLow    Comprehension = "low"
)

// DetailLevel is how much detail a persona volunteers per answer
type DetailLevel string

const (
	DetailHigh   DetailLevel = "high"
	DetailMedium DetailLevel = "medium"
	DetailLow    DetailLevel = "low"
)

// BehaviorModel holds the numeric knobs that drive a persona's behavior
type BehaviorModel struct {
	Comprehension           Comprehension `json:"comprehension"`
	Cooperativeness         int           `json:"cooperativeness"`         // 0-100
	TangentRate             float64       `json:"tangentRate"`             // 0-1
	FatigueRate             float64       `json:"fatigueRate"`             // per-response decay
	FrustrationThreshold    int           `json:"frustrationThreshold"`    // 0-100
	ClarificationLikelihood float64       `json:"clarificationLikelihood"` // 0-1
}

// ResponsePatterns describes the shape of a persona's answers
type ResponsePatterns struct {
	AverageWordCount int         `json:"averageWordCount"`
	DetailLevel      DetailLevel `json:"detailLevel"`
	ResponseTimeSec  float64     `json:"responseTimeSec"` // nominal seconds per answer
}

// Persona is a synthetic participant profile. Immutable once loaded.
type Persona struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Traits      []string         `json:"traits"`
	Behavior    BehaviorModel    `json:"behaviorModel"`
	Patterns    ResponsePatterns `json:"responsePatterns"`
}

// IsDifficult reports whether this persona is the difficult archetype
func (p *Persona) IsDifficult() bool {
	return p.ID == PersonaDifficult
}

// Catalog persona IDs
const (
	PersonaIdeal     = "ideal"
	PersonaTypical   = "typical"
	PersonaDifficult = "difficult"
)
