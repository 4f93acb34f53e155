package service

// ConversationPhase is the orchestrator's state machine phase
type ConversationPhase string

const (
	PhaseOpening      ConversationPhase = "OPENING"
	PhaseInterviewing ConversationPhase = "INTERVIEWING"
	PhaseWrappingUp   ConversationPhase = "WRAPPING_UP"
	PhaseConcluded    ConversationPhase = "CONCLUDED" // terminal
)

// ConversationEvent is an input to the phase transition function
type ConversationEvent string

const (
	EventGreetingSent      ConversationEvent = "greeting_sent"
	EventCoverageReached   ConversationEvent = "coverage_reached"
	EventForcedCompletion  ConversationEvent = "forced_completion"
	EventNaturalClosing    ConversationEvent = "natural_closing"
	EventFarewellExchanged ConversationEvent = "farewell_exchanged"
	EventParticipantLeft   ConversationEvent = "participant_left"
	EventBudgetExhausted   ConversationEvent = "budget_exhausted"
)

// NextPhase is the pure transition function for the conversation state machine.
// Unknown (phase, event) pairs leave the phase unchanged.
func NextPhase(phase ConversationPhase, event ConversationEvent) ConversationPhase {
	switch phase {
	case PhaseOpening:
		if event == EventGreetingSent {
			return PhaseInterviewing
		}
	case PhaseInterviewing:
		switch event {
		case EventCoverageReached, EventForcedCompletion, EventParticipantLeft, EventBudgetExhausted:
			return PhaseConcluded
		case EventNaturalClosing:
			return PhaseWrappingUp
		}
	case PhaseWrappingUp:
		switch event {
		case EventFarewellExchanged, EventParticipantLeft, EventBudgetExhausted:
			return PhaseConcluded
		}
	}
	return phase
}
