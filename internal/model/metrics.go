package model

// AgentMetrics quantifies the interview moderator's performance over one run
type AgentMetrics struct {
	CoverageRate     float64 `json:"coverageRate" bson:"coverageRate"`         // 0-100, % of guide questions asked
	AverageTimeMin   float64 `json:"averageTime" bson:"averageTime"`           // minutes, first to last turn
	TimeVariance     float64 `json:"timeVariance" bson:"timeVariance"`         // % deviation from estimate
	AdversarialScore float64 `json:"adversarialScore" bson:"adversarialScore"` // 0-10
	ProbingQuality   float64 `json:"probingQuality" bson:"probingQuality"`     // 0-10
}

// QuestionClarity is the per-question clarity breakdown
type QuestionClarity struct {
	QuestionID     string  `json:"questionId" bson:"questionId"`
	Score          float64 `json:"score" bson:"score"` // 0-10
	ConfusionCount int     `json:"confusionCount" bson:"confusionCount"`
	RephraseCount  int     `json:"rephraseCount" bson:"rephraseCount"`
}

// ObjectiveCoverage is how well one project objective was served
type ObjectiveCoverage struct {
	Objective        string  `json:"objective" bson:"objective"`
	RelatedQuestions int     `json:"relatedQuestions" bson:"relatedQuestions"`
	AskedQuestions   int     `json:"askedQuestions" bson:"askedQuestions"`
	Coverage         float64 `json:"coverage" bson:"coverage"` // 0-100
}

// LengthRealism is whether simulated duration matched the guide's estimate
type LengthRealism struct {
	EstimatedMin float64 `json:"estimated" bson:"estimated"`
	ActualMin    float64 `json:"actual" bson:"actual"`
	Variance     float64 `json:"variance" bson:"variance"` // % deviation
	Realistic    bool    `json:"realistic" bson:"realistic"`
}

// BriefMetrics quantifies the interview guide's quality over one run
type BriefMetrics struct {
	ClarityIndex      float64             `json:"clarityIndex" bson:"clarityIndex"` // 0-10, mean across questions
	QuestionClarity   []QuestionClarity   `json:"questionClarity" bson:"questionClarity"`
	ObjectiveCoverage float64             `json:"objectiveCoverage" bson:"objectiveCoverage"` // 0-100, mean across objectives
	Objectives        []ObjectiveCoverage `json:"objectives" bson:"objectives"`
	LengthRealism     LengthRealism       `json:"lengthRealism" bson:"lengthRealism"`
}
