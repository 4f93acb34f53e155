package service

import (
	"strings"

	"demosim/internal/model"
)

const (
	clarityStartScore       = 10.0
	confusionPenalty        = 3.0
	rephrasePenalty         = 2.0
	clarityWindow           = 3
	realismVarianceBoundPct = 20.0
)

var confusionPhrases = []string{
	"i don't understand",
	"don't understand the question",
	"not sure what you mean",
	"what do you mean",
	"could you explain",
	"can you rephrase",
	"i'm confused",
	"went over my head",
	"that's confusing",
}

var rephrasePhrases = []string{
	"in other words",
	"let me rephrase",
	"put it another way",
	"put it differently",
	"what i mean is",
	"to clarify",
	"let me try again",
}

// BriefEvaluator scores the research brief itself: how clear its questions
// were to participants, how well the guide covers the stated objectives, and
// whether the estimated session length matched reality. Pure; shared verbatim
// between the live and fallback pathways.
type BriefEvaluator struct{}

// NewBriefEvaluator creates a brief quality evaluator
func NewBriefEvaluator() *BriefEvaluator {
	return &BriefEvaluator{}
}

// Evaluate computes all brief metrics for one persona run
func (e *BriefEvaluator) Evaluate(transcript []model.ConversationMessage, guide *model.InterviewGuide, objectives []string, persona *model.Persona) model.BriefMetrics {
	perQuestion := e.questionClarity(transcript, guide, persona)

	index := clarityStartScore
	if len(perQuestion) > 0 {
		sum := 0.0
		for _, qc := range perQuestion {
			sum += qc.Score
		}
		index = sum / float64(len(perQuestion))
	}

	objCoverage := e.objectiveCoverage(transcript, guide, objectives)
	overall := 0.0
	if len(objCoverage) > 0 {
		sum := 0.0
		for _, oc := range objCoverage {
			sum += oc.Coverage
		}
		overall = sum / float64(len(objCoverage))
	}

	return model.BriefMetrics{
		ClarityIndex:      index,
		QuestionClarity:   perQuestion,
		ObjectiveCoverage: overall,
		Objectives:        objCoverage,
		LengthRealism:     e.lengthRealism(transcript, guide),
	}
}

// questionClarity scores each asked guide question from 10 downward based on
// confusion and rephrasing observed in the turns that follow it. Questions
// that never made it into the transcript carry no clarity evidence and are
// skipped.
func (e *BriefEvaluator) questionClarity(transcript []model.ConversationMessage, guide *model.InterviewGuide, persona *model.Persona) []model.QuestionClarity {
	var scores []model.QuestionClarity

	for _, q := range guide.NonProbeQuestions() {
		askedAt := -1
		for i, msg := range transcript {
			if msg.Role == model.RoleAgent && msg.Metadata != nil &&
				msg.Metadata.QuestionID == q.ID && !msg.Metadata.IsProbe {
				askedAt = i
				break
			}
		}
		if askedAt < 0 {
			continue
		}

		confusions := 0
		rephrases := 0
		end := askedAt + clarityWindow
		if end >= len(transcript) {
			end = len(transcript) - 1
		}
		for i := askedAt + 1; i <= end; i++ {
			lower := strings.ToLower(transcript[i].Content)
			if transcript[i].Role == model.RoleUser && matchesAny(lower, confusionPhrases) {
				confusions++
			}
			if transcript[i].Role == model.RoleAgent && matchesAny(lower, rephrasePhrases) {
				rephrases++
			}
		}

		score := clarityStartScore - float64(confusions)*confusionPenalty - float64(rephrases)*rephrasePenalty

		// Confusion from a low-comprehension persona is expected noise; from a
		// high-comprehension persona it is a strong signal about the wording.
		if confusions > 0 || rephrases > 0 {
			switch persona.Behavior.Comprehension {
			case model.ComprehensionLow:
				score += 1
			case model.ComprehensionHigh:
				score -= 2
			}
		}

		scores = append(scores, model.QuestionClarity{
			QuestionID:     q.ID,
			Score:          clamp(score, 0, 10),
			ConfusionCount: confusions,
			RephraseCount:  rephrases,
		})
	}

	return scores
}

// objectiveCoverage maps each research objective to the guide questions tagged
// with it and reports what share of those were actually asked
func (e *BriefEvaluator) objectiveCoverage(transcript []model.ConversationMessage, guide *model.InterviewGuide, objectives []string) []model.ObjectiveCoverage {
	askedIDs := make(map[string]bool)
	for _, msg := range transcript {
		if msg.Role == model.RoleAgent && msg.Metadata != nil && msg.Metadata.QuestionID != "" && !msg.Metadata.IsProbe {
			askedIDs[msg.Metadata.QuestionID] = true
		}
	}

	coverage := make([]model.ObjectiveCoverage, 0, len(objectives))
	for _, obj := range objectives {
		objLower := strings.ToLower(obj)
		related := 0
		asked := 0
		for _, q := range guide.Questions {
			if q.Objective == "" {
				continue
			}
			qObj := strings.ToLower(q.Objective)
			if !strings.Contains(objLower, qObj) && !strings.Contains(qObj, objLower) {
				continue
			}
			related++
			if askedIDs[q.ID] {
				asked++
			}
		}

		pct := 0.0
		if related > 0 {
			pct = float64(asked) / float64(related) * 100
		}
		coverage = append(coverage, model.ObjectiveCoverage{
			Objective:        obj,
			RelatedQuestions: related,
			AskedQuestions:   asked,
			Coverage:         pct,
		})
	}
	return coverage
}

// lengthRealism compares the guide's estimated duration against the simulated
// run. The session is realistic when the variance stays within ±20%.
func (e *BriefEvaluator) lengthRealism(transcript []model.ConversationMessage, guide *model.InterviewGuide) model.LengthRealism {
	actual := transcriptMinutes(transcript)

	variance := 0.0
	if guide.EstimatedDurationMin > 0 {
		variance = (actual - guide.EstimatedDurationMin) / guide.EstimatedDurationMin * 100
	}

	return model.LengthRealism{
		EstimatedMin: guide.EstimatedDurationMin,
		ActualMin:    actual,
		Variance:     variance,
		Realistic:    variance >= -realismVarianceBoundPct && variance <= realismVarianceBoundPct,
	}
}
