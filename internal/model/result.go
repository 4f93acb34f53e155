package model

import "time"

// ResultMetrics bundles both evaluator outputs for one run
type ResultMetrics struct {
	Agent AgentMetrics `json:"agent" bson:"agent"`
	Brief BriefMetrics `json:"brief" bson:"brief"`
}

// SimulationResult is the outcome of one persona's simulated interview.
// Metrics are always populated, even when Completed is false.
type SimulationResult struct {
	PersonaID     string                `json:"personaId" bson:"personaId"`
	Completed     bool                  `json:"completed" bson:"completed"`
	DroppedAt     string                `json:"droppedAt,omitempty" bson:"droppedAt,omitempty"` // question ID active at drop-off
	DropOffReason string                `json:"dropOffReason,omitempty" bson:"dropOffReason,omitempty"`
	Transcript    []ConversationMessage `json:"transcript" bson:"transcript"`
	DurationMin   float64               `json:"duration" bson:"duration"` // minutes
	Metrics       ResultMetrics         `json:"metrics" bson:"metrics"`
	CompletedAt   time.Time             `json:"completedAt" bson:"completedAt"`
}

// Demo is a persisted demo run: all persona results plus the aggregate evaluation
type Demo struct {
	ID         string             `json:"id" bson:"_id"`
	ProjectID  string             `json:"projectId" bson:"projectId"`
	Brief      string             `json:"brief" bson:"brief"`
	Objectives []string           `json:"objectives" bson:"objectives"`
	Guide      InterviewGuide     `json:"guide" bson:"guide"`
	Results    []SimulationResult `json:"results" bson:"results"`
	Evaluation DemoEvaluation     `json:"evaluation" bson:"evaluation"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// DemoRunRequest is the input to a demo run
type DemoRunRequest struct {
	ProjectID      string         `json:"projectId"`
	Brief          string         `json:"brief"`
	Objectives     []string       `json:"objectives"`
	Guide          InterviewGuide `json:"guide"`
	MaxTurns       int            `json:"maxTurns,omitempty"`       // override, default 40
	TimeoutMinutes int            `json:"timeoutMinutes,omitempty"` // override, default 5
}
