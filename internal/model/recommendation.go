package model

import "time"

// RecommendationType ranks how urgent a recommendation is
type RecommendationType string

const (
	RecommendationCritical   RecommendationType = "critical"
	RecommendationWarning    RecommendationType = "warning"
	RecommendationSuggestion RecommendationType = "suggestion"
)

// Recommendation is one actionable finding from the aggregate evaluation
type Recommendation struct {
	Type              RecommendationType `json:"type" bson:"type"`
	Category          string             `json:"category" bson:"category"` // coverage, timing, clarity, objectives, adversarial, probing, pacing
	Title             string             `json:"title" bson:"title"`
	Description       string             `json:"description" bson:"description"`
	Impact            string             `json:"impact" bson:"impact"`
	Actionable        bool               `json:"actionable" bson:"actionable"`
	AffectedQuestions []string           `json:"affectedQuestions,omitempty" bson:"affectedQuestions,omitempty"`
}

// OverallScore is the readiness verdict for the interview script
type OverallScore struct {
	AgentScore    float64 `json:"agentScore" bson:"agentScore"` // 0-10
	BriefScore    float64 `json:"briefScore" bson:"briefScore"` // 0-10
	ReadyToLaunch bool    `json:"readyToLaunch" bson:"readyToLaunch"`
}

// DemoEvaluation aggregates metrics across all persona runs
type DemoEvaluation struct {
	AvgCoverage          float64          `json:"avgCoverage" bson:"avgCoverage"`
	AvgTimeVariance      float64          `json:"avgTimeVariance" bson:"avgTimeVariance"`
	AvgAdversarial       float64          `json:"avgAdversarial" bson:"avgAdversarial"`
	AvgProbing           float64          `json:"avgProbing" bson:"avgProbing"`
	AvgClarity           float64          `json:"avgClarity" bson:"avgClarity"`
	AvgObjectiveCoverage float64          `json:"avgObjectiveCoverage" bson:"avgObjectiveCoverage"`
	HighRiskQuestions    []string         `json:"highRiskQuestions" bson:"highRiskQuestions"`
	Recommendations      []Recommendation `json:"recommendations" bson:"recommendations"`
	Overall              OverallScore     `json:"overallScore" bson:"overallScore"`
	CreatedAt            time.Time        `json:"createdAt" bson:"createdAt"`
}
