package model

// QuestionType defines the type of guide question
type QuestionType string

const (
	QuestionTypeOpen   QuestionType = "open"   // Open-ended main question
	QuestionTypeClosed QuestionType = "closed" // Yes/no or short factual
	QuestionTypeProbe  QuestionType = "probe"  // Scripted follow-up, excluded from coverage
)

// GuideQuestion is one ordered question in an interview guide
type GuideQuestion struct {
	ID                  string       `json:"id" bson:"id"`
	Question            string       `json:"question" bson:"question"`
	Type                QuestionType `json:"type" bson:"type"`
	Objective           string       `json:"objective,omitempty" bson:"objective,omitempty"` // Which project objective this serves
	ExpectedDurationMin float64      `json:"expectedDuration,omitempty" bson:"expectedDuration,omitempty"`
}

// InterviewGuide is the script under validation. Read-only input to a demo run.
type InterviewGuide struct {
	Questions            []GuideQuestion `json:"questions" bson:"questions"`
	EstimatedDurationMin float64         `json:"estimatedDuration" bson:"estimatedDuration"` // minutes
}

// NonProbeQuestions returns the main questions, in guide order
func (g *InterviewGuide) NonProbeQuestions() []GuideQuestion {
	out := make([]GuideQuestion, 0, len(g.Questions))
	for _, q := range g.Questions {
		if q.Type != QuestionTypeProbe {
			out = append(out, q)
		}
	}
	return out
}
