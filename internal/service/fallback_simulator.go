package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"demosim/internal/model"
)

const (
	optOutMinTurn = 6
	optOutChance  = 0.3
)

// FallbackSimulator produces a full, plausible SimulationResult without any
// external dependency. It is the complete alternate pathway used when Gemini
// is unconfigured or a live run fails, and it feeds the exact same evaluators
// as the live path.
type FallbackSimulator struct {
	agentEval *AgentEvaluator
	briefEval *BriefEvaluator
	logger    *zap.Logger
}

// NewFallbackSimulator creates a fallback simulator sharing the evaluators
// with the live path
func NewFallbackSimulator(agentEval *AgentEvaluator, briefEval *BriefEvaluator, logger *zap.Logger) *FallbackSimulator {
	return &FallbackSimulator{
		agentEval: agentEval,
		briefEval: briefEval,
		logger:    logger,
	}
}

// Run simulates one persona's interview deterministically. The rng drives the
// difficult persona's opt-out check and template selection only.
func (s *FallbackSimulator) Run(persona *model.Persona, guide *model.InterviewGuide, objectives []string, rng *rand.Rand) *model.SimulationResult {
	questions := guide.NonProbeQuestions()
	perQuestionMin := guide.EstimatedDurationMin / float64(max(len(questions), 1))

	var transcript []model.ConversationMessage
	clock := time.Now()
	completed := true
	droppedAt := ""
	dropOffReason := ""

	advance := func(minutes float64) {
		clock = clock.Add(time.Duration(minutes * float64(time.Minute)))
	}

	for _, q := range questions {
		// Difficult participants may walk out once the interview drags on
		if persona.IsDifficult() && len(transcript) >= optOutMinTurn && rng.Float64() < optOutChance {
			completed = false
			droppedAt = q.ID
			dropOffReason = "Participant opted out mid-interview"
			transcript = append(transcript, model.NewMessage(model.RoleUser,
				"You know what, I think I've said enough. I'm going to head out.",
				clock, &model.MessageMetadata{WordCount: 13}))
			break
		}

		slice := perQuestionMin
		if q.ExpectedDurationMin > 0 {
			slice = q.ExpectedDurationMin
		}

		transcript = append(transcript, model.NewMessage(model.RoleAgent, q.Question, clock,
			&model.MessageMetadata{QuestionID: q.ID}))
		advance(slice * 0.25)

		answer := s.templatedAnswer(persona, q, rng)
		transcript = append(transcript, model.NewMessage(model.RoleUser, answer, clock,
			&model.MessageMetadata{
				QuestionID:  q.ID,
				WordCount:   len(strings.Fields(answer)),
				DurationSec: persona.Patterns.ResponseTimeSec,
			}))
		advance(slice * answerPace(persona))

		// Talkative personas get one probe and one elaboration per question
		if persona.Patterns.DetailLevel != model.DetailLow {
			probe := probeFor(q)
			transcript = append(transcript, model.NewMessage(model.RoleAgent, probe, clock,
				&model.MessageMetadata{QuestionID: q.ID, IsProbe: true}))
			advance(slice * 0.15)

			elaboration := s.templatedElaboration(persona, rng)
			transcript = append(transcript, model.NewMessage(model.RoleUser, elaboration, clock,
				&model.MessageMetadata{
					QuestionID:  q.ID,
					WordCount:   len(strings.Fields(elaboration)),
					DurationSec: persona.Patterns.ResponseTimeSec,
				}))
			advance(slice * 0.3)
		}
	}

	if completed {
		transcript = append(transcript, model.NewMessage(model.RoleAgent,
			"Thank you so much for your time today. This concludes our interview, your feedback was really valuable.",
			clock, nil))
	}

	durationMin := 0.0
	if len(transcript) > 1 {
		durationMin = transcript[len(transcript)-1].Timestamp.Sub(transcript[0].Timestamp).Minutes()
	}

	result := &model.SimulationResult{
		PersonaID:     persona.ID,
		Completed:     completed,
		DroppedAt:     droppedAt,
		DropOffReason: dropOffReason,
		Transcript:    transcript,
		DurationMin:   durationMin,
		CompletedAt:   time.Now(),
	}
	result.Metrics.Agent = s.agentEval.Evaluate(transcript, guide, persona)
	result.Metrics.Brief = s.briefEval.Evaluate(transcript, guide, objectives, persona)

	s.logger.Debug("fallback simulation finished",
		zap.String("persona", persona.ID),
		zap.Bool("completed", completed),
		zap.Int("turns", len(transcript)))

	return result
}

// templatedAnswer synthesizes a persona-flavored answer to a main question
func (s *FallbackSimulator) templatedAnswer(persona *model.Persona, q model.GuideQuestion, rng *rand.Rand) string {
	trait := persona.Traits[rng.Intn(len(persona.Traits))]
	second := persona.Traits[rng.Intn(len(persona.Traits))]

	var sb strings.Builder
	switch persona.Patterns.DetailLevel {
	case model.DetailHigh:
		sb.WriteString(fmt.Sprintf("Oh, that's something I've thought about quite a bit. I'd describe myself as %s and %s, so I tend to notice the details here. ", trait, second))
	case model.DetailMedium:
		sb.WriteString(fmt.Sprintf("Sure. I'm fairly %s about it, honestly. ", trait))
	default:
		sb.WriteString(fmt.Sprintf("Not much to say. I'm %s, so. ", trait))
	}

	if q.Objective != "" {
		sb.WriteString(fmt.Sprintf("When it comes to %s, my experience has been mixed but mostly workable. ", strings.ToLower(q.Objective)))
	} else {
		sb.WriteString("My experience has been mixed but mostly workable. ")
	}

	if persona.Behavior.TangentRate > 0.3 {
		sb.WriteString("By the way, this has nothing to do with your question, but the weather on my way here was unbelievable.")
	}

	return strings.TrimSpace(sb.String())
}

func (s *FallbackSimulator) templatedElaboration(persona *model.Persona, rng *rand.Rand) string {
	elaborations := []string{
		"Well, for example, last month I ran into exactly that situation and it took me a while to figure out what to do.",
		"I suppose the main thing is that it worked differently than I expected, which threw me off at first.",
		"Thinking about it more, it comes down to whether it saves me time or costs me time on a given day.",
	}
	base := elaborations[rng.Intn(len(elaborations))]
	if persona.Patterns.DetailLevel == model.DetailHigh {
		base += " And if I compare it to what I used before, the difference is really noticeable."
	}
	return base
}

func probeFor(q model.GuideQuestion) string {
	return fmt.Sprintf("That's interesting, can you tell me more about why that matters to you regarding %s",
		strings.ToLower(strings.TrimRight(q.Question, "?.!"))) + "?"
}

func answerPace(persona *model.Persona) float64 {
	switch persona.Patterns.DetailLevel {
	case model.DetailHigh:
		return 0.9
	case model.DetailMedium:
		return 0.6
	default:
		return 0.35
	}
}
