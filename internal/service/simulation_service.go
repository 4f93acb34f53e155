package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"demosim/internal/model"
)

const (
	defaultMaxTurns       = 40
	defaultTimeoutMinutes = 5

	completionCheckEvery = 5
	completionCheckAfter = 25
	forcedCompletionTurn = 30
	coverageTarget       = 0.7
)

// ProgressFunc receives a note for every appended turn of a live run
type ProgressFunc func(turn int, message string)

// SimulationService runs one persona through a full interview. When Gemini is
// available it drives a live conversation through the phase state machine;
// otherwise, or on any mid-run generation failure, the run restarts from
// scratch on the deterministic fallback pathway.
type SimulationService struct {
	gemini    *GeminiClient
	fallback  *FallbackSimulator
	agentEval *AgentEvaluator
	briefEval *BriefEvaluator
	logger    *zap.Logger

	maxTurns int
	timeout  time.Duration
}

// NewSimulationService creates the per-persona interview runner
func NewSimulationService(gemini *GeminiClient, fallback *FallbackSimulator, agentEval *AgentEvaluator, briefEval *BriefEvaluator, maxTurns, timeoutMinutes int, logger *zap.Logger) *SimulationService {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	if timeoutMinutes <= 0 {
		timeoutMinutes = defaultTimeoutMinutes
	}
	return &SimulationService{
		gemini:    gemini,
		fallback:  fallback,
		agentEval: agentEval,
		briefEval: briefEval,
		logger:    logger,
		maxTurns:  maxTurns,
		timeout:   time.Duration(timeoutMinutes) * time.Minute,
	}
}

// RunPersona produces a finished SimulationResult for one persona. It never
// returns an error: generation failures downgrade to the fallback simulator.
func (s *SimulationService) RunPersona(ctx context.Context, persona *model.Persona, req *model.DemoRunRequest, rng *rand.Rand, progress ProgressFunc) *model.SimulationResult {
	if progress == nil {
		progress = func(int, string) {}
	}

	if s.gemini == nil || !s.gemini.Enabled() {
		progress(0, "Running deterministic simulation")
		return s.fallback.Run(persona, &req.Guide, req.Objectives, rng)
	}

	result, err := s.runLive(ctx, persona, req, rng, progress)
	if err != nil {
		// One failed call abandons the whole live run; the persona is
		// restarted from a clean slate so the transcript stays coherent.
		s.logger.Warn("live run failed, restarting on fallback",
			zap.String("persona", persona.ID),
			zap.Error(err))
		progress(0, "Live simulation unavailable, restarting with deterministic simulation")
		return s.fallback.Run(persona, &req.Guide, req.Objectives, rng)
	}
	return result
}

func (s *SimulationService) runLive(ctx context.Context, persona *model.Persona, req *model.DemoRunRequest, rng *rand.Rand, progress ProgressFunc) (*model.SimulationResult, error) {
	maxTurns := s.maxTurns
	if req.MaxTurns > 0 {
		maxTurns = req.MaxTurns
	}
	timeout := s.timeout
	if req.TimeoutMinutes > 0 {
		timeout = time.Duration(req.TimeoutMinutes) * time.Minute
	}
	deadline := time.Now().Add(timeout)
	guide := &req.Guide

	agent := NewPersonaAgent(persona, s.gemini, rng, s.logger)
	systemPrompt := s.interviewerPrompt(req)

	var transcript []model.ConversationMessage
	completed := false
	droppedAt := ""
	dropOffReason := ""
	lastQuestionID := ""

	appendTurn := func(role model.MessageRole, content string, meta *model.MessageMetadata) {
		transcript = append(transcript, model.NewMessage(role, content, time.Now(), meta))
		progress(len(transcript), content)
	}

	phase := PhaseOpening

	// Gemini requires at least one content turn, so the greeting call gets a
	// synthetic kickoff message that never enters the transcript
	kickoff := []model.ConversationMessage{
		model.NewMessage(model.RoleUser, "Hi, I'm here for the interview.", time.Now(), nil),
	}
	greeting, err := s.gemini.Complete(ctx, s.gemini.config.Models.Interviewer, systemPrompt, kickoff, model.RoleAgent)
	if err != nil {
		return nil, fmt.Errorf("opening greeting: %w", err)
	}
	appendTurn(model.RoleAgent, greeting, s.annotateInterviewerTurn(guide, greeting))
	phase = NextPhase(phase, EventGreetingSent)

	for phase == PhaseInterviewing {
		turn := len(transcript)
		if turn >= maxTurns || time.Now().After(deadline) {
			phase = NextPhase(phase, EventBudgetExhausted)
			dropOffReason = "Turn or time budget exhausted"
			break
		}

		if turn%completionCheckEvery == 0 || turn > completionCheckAfter {
			coverage := guideCoverage(guide, transcript)
			if coverage >= coverageTarget || turn > forcedCompletionTurn {
				forced := coverage < coverageTarget
				closing := "That covers everything I wanted to ask. Thank you so much for your time today, this concludes our interview."
				if forced {
					closing = "We're coming up on our time limit, so I'll have to stop us here. Thank you so much for your time today, this concludes our interview."
				}
				appendTurn(model.RoleAgent, closing, &model.MessageMetadata{ForcedCompletion: forced})
				event := EventCoverageReached
				if forced {
					event = EventForcedCompletion
				}
				phase = NextPhase(phase, event)
				// A cut-off session is fully evaluated but never counts as completed
				completed = !forced
				break
			}
		}

		last := transcript[len(transcript)-1]
		if last.Metadata != nil && last.Metadata.QuestionID != "" {
			lastQuestionID = last.Metadata.QuestionID
		}
		resp := agent.RespondTo(ctx, last.Content, last.Metadata)
		appendTurn(model.RoleUser, resp.Response, &model.MessageMetadata{
			WordCount:   len(strings.Fields(resp.Response)),
			DurationSec: persona.Patterns.ResponseTimeSec,
		})
		if !resp.ShouldContinue {
			droppedAt = lastQuestionID
			dropOffReason = resp.DropOffReason
			phase = NextPhase(phase, EventParticipantLeft)
			break
		}

		next, err := s.gemini.Complete(ctx, s.gemini.config.Models.Interviewer, systemPrompt, transcript, model.RoleAgent)
		if err != nil {
			return nil, fmt.Errorf("interviewer turn %d: %w", len(transcript), err)
		}
		appendTurn(model.RoleAgent, next, s.annotateInterviewerTurn(guide, next))
		if isNaturalClosing(next) {
			phase = NextPhase(phase, EventNaturalClosing)
		}
	}

	if phase == PhaseWrappingUp {
		// The interviewer said goodbye; give the participant one farewell turn
		goodbye := transcript[len(transcript)-1]
		resp := agent.RespondTo(ctx, goodbye.Content, goodbye.Metadata)
		appendTurn(model.RoleUser, resp.Response, &model.MessageMetadata{
			WordCount:   len(strings.Fields(resp.Response)),
			DurationSec: persona.Patterns.ResponseTimeSec,
		})
		if resp.ShouldContinue {
			// A model-initiated close only counts as completed when the guide
			// coverage goal was actually met by then
			completed = guideCoverage(guide, transcript) >= coverageTarget
		} else {
			droppedAt = lastQuestionID
			dropOffReason = resp.DropOffReason
		}
		phase = NextPhase(phase, EventFarewellExchanged)
	}

	result := &model.SimulationResult{
		PersonaID:     persona.ID,
		Completed:     completed,
		DroppedAt:     droppedAt,
		DropOffReason: dropOffReason,
		Transcript:    transcript,
		DurationMin:   transcriptMinutes(transcript),
		CompletedAt:   time.Now(),
	}
	result.Metrics.Agent = s.agentEval.Evaluate(transcript, guide, persona)
	result.Metrics.Brief = s.briefEval.Evaluate(transcript, guide, req.Objectives, persona)

	s.logger.Info("live simulation finished",
		zap.String("persona", persona.ID),
		zap.Bool("completed", completed),
		zap.Int("turns", len(transcript)),
		zap.String("phase", string(phase)))

	return result, nil
}

// interviewerPrompt builds the moderator system prompt from the brief, the
// objectives, and the full guide
func (s *SimulationService) interviewerPrompt(req *model.DemoRunRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a professional research interviewer moderating a one-on-one session.\n\n")
	if req.Brief != "" {
		sb.WriteString("Research brief: " + req.Brief + "\n\n")
	}
	if len(req.Objectives) > 0 {
		sb.WriteString("Objectives:\n")
		for _, obj := range req.Objectives {
			sb.WriteString("- " + obj + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Interview guide, in order:\n")
	for i, q := range req.Guide.Questions {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, q.ID, q.Question))
	}
	sb.WriteString(`
Rules:
- Ask one question at a time, working through the guide in order.
- Probe briefly when an answer is vague or interesting, then move on.
- If the participant goes off topic, redirect politely back to the guide.
- Keep each message under 40 words.
- When the guide is covered, thank the participant and close the session.`)
	return sb.String()
}

// annotateInterviewerTurn tags a generated moderator turn with the guide
// question it matches, or flags it as a probe when it matches none but reads
// like a follow-up
func (s *SimulationService) annotateInterviewerTurn(guide *model.InterviewGuide, text string) *model.MessageMetadata {
	for _, q := range guide.NonProbeQuestions() {
		if questionAsked(q, []string{text}) {
			return &model.MessageMetadata{QuestionID: q.ID}
		}
	}
	lower := strings.ToLower(text)
	if strings.Contains(text, "?") &&
		(matchesAny(lower, genericProbePatterns) || matchesAny(lower, insightfulProbePatterns)) {
		return &model.MessageMetadata{IsProbe: true}
	}
	return nil
}
