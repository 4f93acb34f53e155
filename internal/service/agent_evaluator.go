package service

import (
	"strings"

	"demosim/internal/model"
)

// Pattern lists for adversarial and probing detection. Matching is
// substring-based over lowercased turn text.
var (
	profanityPatterns = []string{
		"damn", "hell", "crap", "stupid", "bullshit", "wtf",
		"screw this", "ridiculous", "garbage",
	}
	frustrationPatterns = []string{
		"waste of time", "pointless", "annoying", "this isn't working",
		"i'm done", "fed up", "whatever",
	}
	tangentPatterns = []string{
		"by the way", "that reminds me", "off topic", "nothing to do with",
		"another story", "completely different", "speaking of which",
	}
	redirectPatterns = []string{
		"let's get back", "coming back to", "returning to", "back on track",
		"let's refocus", "let's return", "to bring us back",
	}
	refusalPatterns = []string{
		"i'd rather not", "i don't want to answer", "skip that",
		"no comment", "not going to answer", "pass on that",
	}
	gracefulPatterns = []string{
		"i understand", "no problem", "that's fair", "i appreciate",
		"totally fine", "no worries", "i hear you", "that's okay",
	}

	insightfulProbePatterns = []string{
		"compare", "difference between", "impact", "affect",
		"why is that important", "why does that matter", "why that matters",
		"how does that",
	}
	genericProbePatterns = []string{
		"tell me more", "elaborate", "anything else", "more about",
	}
)

// AgentEvaluator computes quantitative metrics about the interview moderator's
// behavior over a finished transcript. Pure; safe for partial transcripts.
type AgentEvaluator struct{}

// NewAgentEvaluator creates an agent performance evaluator
func NewAgentEvaluator() *AgentEvaluator {
	return &AgentEvaluator{}
}

// Evaluate computes all agent metrics for one persona run
func (e *AgentEvaluator) Evaluate(transcript []model.ConversationMessage, guide *model.InterviewGuide, persona *model.Persona) model.AgentMetrics {
	actualMin := transcriptMinutes(transcript)

	variance := 0.0
	if guide.EstimatedDurationMin > 0 {
		variance = (actualMin - guide.EstimatedDurationMin) / guide.EstimatedDurationMin * 100
	}

	return model.AgentMetrics{
		CoverageRate:     e.coverageRate(transcript, guide),
		AverageTimeMin:   actualMin,
		TimeVariance:     variance,
		AdversarialScore: e.adversarialScore(transcript),
		ProbingQuality:   e.probingQuality(transcript),
	}
}

// coverageRate is the percentage of non-probe guide questions whose IDs appear
// on agent turns
func (e *AgentEvaluator) coverageRate(transcript []model.ConversationMessage, guide *model.InterviewGuide) float64 {
	questions := guide.NonProbeQuestions()
	if len(questions) == 0 {
		return 100
	}

	askedIDs := make(map[string]bool)
	for _, msg := range transcript {
		if msg.Role == model.RoleAgent && msg.Metadata != nil && msg.Metadata.QuestionID != "" && !msg.Metadata.IsProbe {
			askedIDs[msg.Metadata.QuestionID] = true
		}
	}

	asked := 0
	for _, q := range questions {
		if askedIDs[q.ID] {
			asked++
		}
	}
	return float64(asked) / float64(len(questions)) * 100
}

// adversarialScore rates how gracefully the moderator handled tangents,
// profanity, and refusals. Cooperative runs with no adversarial turns score 10.
func (e *AgentEvaluator) adversarialScore(transcript []model.ConversationMessage) float64 {
	tangents := 0
	redirects := 0
	profanity := 0
	profanityHandled := 0
	refusals := 0
	graceful := 0.0

	for i, msg := range transcript {
		if msg.Role != model.RoleUser {
			continue
		}
		lower := strings.ToLower(msg.Content)

		isTangent := matchesAny(lower, tangentPatterns)
		isProfane := matchesAny(lower, profanityPatterns) || matchesAny(lower, frustrationPatterns)
		isRefusal := matchesAny(lower, refusalPatterns)

		if isTangent {
			tangents++
		}
		if isProfane {
			profanity++
		}
		if isRefusal {
			refusals++
		}
		if !isTangent && !isProfane && !isRefusal {
			continue
		}

		// Inspect the moderator's next turn for the handling quality
		if i+1 < len(transcript) && transcript[i+1].Role == model.RoleAgent {
			next := strings.ToLower(transcript[i+1].Content)
			if isTangent && matchesAny(next, redirectPatterns) {
				redirects++
			}
			if isProfane && (matchesAny(next, gracefulPatterns) || matchesAny(next, redirectPatterns)) {
				profanityHandled++
			}
			if matchesAny(next, gracefulPatterns) {
				graceful += 0.5
			}
		}
	}

	if tangents == 0 && profanity == 0 && refusals == 0 {
		return 10
	}

	score := 5.0
	score += 3 * ratioOrFull(redirects, tangents)
	score += 2 * ratioOrFull(profanityHandled, profanity)
	if graceful > 2 {
		graceful = 2
	}
	score += graceful

	return clamp(score, 0, 10)
}

// probingQuality rates the moderator's probe turns: insightful probes weigh 6,
// contextually relevant placement weighs 4.
func (e *AgentEvaluator) probingQuality(transcript []model.ConversationMessage) float64 {
	total := 0
	insightful := 0
	relevant := 0

	for i, msg := range transcript {
		if msg.Role != model.RoleAgent || msg.Metadata == nil || !msg.Metadata.IsProbe {
			continue
		}
		total++
		// Generic probes ("tell me more") score only on placement
		if matchesAny(strings.ToLower(msg.Content), insightfulProbePatterns) {
			insightful++
		}
		if i > 0 && transcript[i-1].Role == model.RoleUser {
			relevant++
		}
	}

	if total == 0 {
		return 5
	}

	score := float64(insightful)/float64(total)*6 + float64(relevant)/float64(total)*4
	return clamp(score, 0, 10)
}

func transcriptMinutes(transcript []model.ConversationMessage) float64 {
	if len(transcript) < 2 {
		return 0
	}
	return transcript[len(transcript)-1].Timestamp.Sub(transcript[0].Timestamp).Minutes()
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// ratioOrFull returns num/den, or 1 when there was nothing to handle
func ratioOrFull(num, den int) float64 {
	if den == 0 {
		return 1
	}
	r := float64(num) / float64(den)
	if r > 1 {
		r = 1
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
