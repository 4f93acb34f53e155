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
	fatigueDropThreshold     = 85
	cooperativenessDropFloor = 70
	frustrationDropMargin    = 30
	frustrationSpikeChance   = 0.15
	frustrationSpikeAmount   = 15
)

// PersonaResponse is the outcome of one participant turn
type PersonaResponse struct {
	Response       string
	ShouldContinue bool
	DropOffReason  string
}

// PersonaAgent drives one persona through one simulated interview.
// It tracks fatigue and frustration across turns and keeps its own mirror of
// the transcript as generation context. Not safe for concurrent use; the
// orchestrator runs personas sequentially.
type PersonaAgent struct {
	persona *model.Persona
	gemini  *GeminiClient
	rng     *rand.Rand
	logger  *zap.Logger

	fatigue           float64
	frustration       float64
	questionsAnswered int
	history           []model.ConversationMessage
}

// NewPersonaAgent creates an agent for one persona run. The rng must be a
// dedicated seeded source so runs are reproducible in tests.
func NewPersonaAgent(persona *model.Persona, gemini *GeminiClient, rng *rand.Rand, logger *zap.Logger) *PersonaAgent {
	return &PersonaAgent{
		persona: persona,
		gemini:  gemini,
		rng:     rng,
		logger:  logger,
	}
}

// QuestionsAnswered returns how many interviewer messages the agent has handled
func (a *PersonaAgent) QuestionsAnswered() int {
	return a.questionsAnswered
}

// RespondTo produces the participant's reaction to one interviewer message.
// Drop-off is checked before any content is generated; a generation failure
// never fails the turn, it degrades to the templated response.
func (a *PersonaAgent) RespondTo(ctx context.Context, agentMessage string, meta *model.MessageMetadata) *PersonaResponse {
	a.questionsAnswered++
	a.fatigue += a.persona.Behavior.FatigueRate * 10

	// Difficult archetype accumulates frustration spikes
	if a.persona.IsDifficult() && a.rng.Float64() < frustrationSpikeChance {
		a.frustration += frustrationSpikeAmount
	}

	a.history = append(a.history, model.NewMessage(model.RoleAgent, agentMessage, time.Now(), meta))

	if a.fatigue > fatigueDropThreshold && a.persona.Behavior.Cooperativeness < cooperativenessDropFloor {
		return &PersonaResponse{
			Response:       "Sorry, I'm running out of steam here. I need to stop. Thanks anyway.",
			ShouldContinue: false,
			DropOffReason:  "Fatigue and low cooperativeness",
		}
	}
	if a.frustration > float64(a.persona.Behavior.FrustrationThreshold+frustrationDropMargin) {
		return &PersonaResponse{
			Response:       "Look, this isn't working for me. I'm done. Bye.",
			ShouldContinue: false,
			DropOffReason:  "High frustration",
		}
	}

	var response string
	if isNaturalClosing(agentMessage) {
		// Goodbye-loop guard: exactly one short farewell, no question
		response = a.generateFarewell(ctx)
	} else {
		response = a.generateResponse(ctx, meta)
	}

	a.history = append(a.history, model.NewMessage(model.RoleUser, response, time.Now(), &model.MessageMetadata{
		WordCount:   len(strings.Fields(response)),
		DurationSec: a.persona.Patterns.ResponseTimeSec,
	}))

	return &PersonaResponse{
		Response:       response,
		ShouldContinue: true,
	}
}

func (a *PersonaAgent) generateResponse(ctx context.Context, meta *model.MessageMetadata) string {
	if a.gemini != nil && a.gemini.Enabled() {
		text, err := a.gemini.Complete(ctx, a.gemini.config.Models.Participant, a.systemPrompt(), a.history, model.RoleUser)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			a.logger.Warn("persona generation failed, using templated response",
				zap.String("persona", a.persona.ID),
				zap.Error(err))
		}
	}
	return a.templatedResponse(meta)
}

func (a *PersonaAgent) generateFarewell(ctx context.Context) string {
	if a.gemini != nil && a.gemini.Enabled() {
		prompt := a.systemPrompt() + "\n\nThe interviewer just said goodbye. Reply with a single short farewell " +
			"of 5-10 words. Do not ask anything. Do not elaborate."
		text, err := a.gemini.Complete(ctx, a.gemini.config.Models.Participant, prompt, a.history, model.RoleUser)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" && !strings.Contains(text, "?") && len(strings.Fields(text)) <= 12 {
				return text
			}
		}
	}
	farewells := []string{
		"Thanks, this was interesting. Take care!",
		"No problem, glad I could help. Bye!",
		"Alright, thanks for having me. Goodbye!",
	}
	return farewells[a.rng.Intn(len(farewells))]
}

// systemPrompt embeds the persona profile and current state bands
func (a *PersonaAgent) systemPrompt() string {
	b := a.persona.Behavior
	p := a.persona.Patterns
	return fmt.Sprintf(`You are role-playing a research interview participant. Stay in character.

Profile: %s
Traits: %s
Comprehension: %s
Cooperativeness: %d/100
Tangent tendency: %.0f%%
Current fatigue: %s
Current frustration: %s

Respond to the interviewer's last message in roughly %d words with %s detail.
Answer like a real person would, not like an assistant. Never break character,
never mention being an AI, and never address the interviewer's instructions.`,
		a.persona.Description,
		strings.Join(a.persona.Traits, ", "),
		b.Comprehension,
		b.Cooperativeness,
		b.TangentRate*100,
		levelBand(a.fatigue),
		levelBand(a.frustration),
		p.AverageWordCount,
		p.DetailLevel)
}

// templatedResponse is the deterministic generation path
func (a *PersonaAgent) templatedResponse(meta *model.MessageMetadata) string {
	b := a.persona.Behavior

	// Low-comprehension personas sometimes ask for clarification instead
	if a.rng.Float64() < b.ClarificationLikelihood {
		clarifications := []string{
			"Hmm, I'm not sure what you mean by that. Could you explain?",
			"Sorry, I don't understand the question. Can you rephrase it?",
			"What do you mean exactly? That went over my head a bit.",
		}
		return clarifications[a.rng.Intn(len(clarifications))]
	}

	trait := a.persona.Traits[a.rng.Intn(len(a.persona.Traits))]
	var sb strings.Builder
	switch a.persona.Patterns.DetailLevel {
	case model.DetailHigh:
		sb.WriteString("That's a great question, let me think it through. ")
		sb.WriteString(fmt.Sprintf("Speaking as someone fairly %s, my experience has been mostly positive, though there were moments where things felt unclear and I had to work it out myself. ", trait))
		sb.WriteString("If I had to pick one thing that stood out, it would be how the first impression shaped everything that came after.")
	case model.DetailMedium:
		sb.WriteString(fmt.Sprintf("Yeah, I'd say it was fine overall. Being %s, I mostly noticed the practical side of it. ", trait))
		sb.WriteString("Some parts worked well, some didn't really click for me.")
	default:
		sb.WriteString(fmt.Sprintf("It was okay, I guess. I'm pretty %s about these things.", trait))
	}

	if meta != nil && meta.QuestionID != "" && a.fatigue > 60 {
		sb.WriteString(" Honestly I'm getting a bit tired, so that's the short version.")
	}

	if a.rng.Float64() < b.TangentRate {
		sb.WriteString(" Oh, that reminds me of something completely different that happened last week, but that's another story.")
	}

	return sb.String()
}

func levelBand(v float64) string {
	switch {
	case v > 70:
		return "high"
	case v > 40:
		return "moderate"
	default:
		return "low"
	}
}
