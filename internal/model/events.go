package model

// EventType defines the type of demo progress event
type EventType string

const (
	EventInit            EventType = "init"
	EventPersonaStart    EventType = "persona_start"
	EventPersonaProgress EventType = "persona_progress"
	EventPersonaComplete EventType = "persona_complete"
	EventPersonaError    EventType = "persona_error"
	EventEvaluating      EventType = "evaluating"
	EventComplete        EventType = "complete"
	EventError           EventType = "error"
)

// ProgressEvent is one entry in the ordered demo progress stream.
// The stream terminates on a complete or error event.
type ProgressEvent struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// PersonaSummary identifies one catalog persona in the init event
type PersonaSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InitPayload announces the demo id and the personas that will run, in order
type InitPayload struct {
	DemoID   string           `json:"demoId"`
	Personas []PersonaSummary `json:"personas"`
}

// PersonaStartPayload marks the start of one persona's run
type PersonaStartPayload struct {
	Index     int    `json:"index"`
	PersonaID string `json:"personaId"`
	Name      string `json:"name"`
}

// PersonaProgressPayload is a turn-level progress note
type PersonaProgressPayload struct {
	Index   int    `json:"index"`
	Turn    int    `json:"turn"`
	Message string `json:"message"`
}

// PersonaCompletePayload marks the end of one persona's run
type PersonaCompletePayload struct {
	Index         int     `json:"index"`
	DurationMin   float64 `json:"duration"`
	MessagesCount int     `json:"messagesCount"`
}

// PersonaErrorPayload reports a fatal per-persona failure
type PersonaErrorPayload struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// CompletePayload carries the final results of the demo run
type CompletePayload struct {
	Results    []SimulationResult `json:"results"`
	Evaluation DemoEvaluation     `json:"evaluation"`
	DemoID     string             `json:"demoId"`
}

// ErrorPayload reports a request-level failure; no partial results follow
type ErrorPayload struct {
	Message string `json:"message"`
}
