package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"demosim/internal/model"
)

// Aggregate thresholds for recommendation triggers
const (
	coverageCriticalPct = 80.0
	coverageWarningPct  = 90.0
	timeVarianceWarnPct = 30.0
	clarityCritical     = 5.0
	clarityWarning      = 7.0
	objectiveCritical   = 80.0
	adversarialWarning  = 6.0
	probingSuggestion   = 6.0
	paceTooFastPerMin   = 2.0
	paceTooSlowPerMin   = 0.5
	launchScoreFloor    = 7.0
)

// RecommendationService aggregates per-persona metrics into prioritized
// recommendations and a launch-readiness verdict
type RecommendationService struct{}

// NewRecommendationService creates the aggregate evaluator
func NewRecommendationService() *RecommendationService {
	return &RecommendationService{}
}

// Evaluate folds all persona results into one demo evaluation
func (r *RecommendationService) Evaluate(results []*model.SimulationResult, guide *model.InterviewGuide) *model.DemoEvaluation {
	eval := &model.DemoEvaluation{
		Recommendations: []model.Recommendation{},
		CreatedAt:       time.Now(),
	}
	if len(results) == 0 {
		return eval
	}

	n := float64(len(results))
	lengthScoreSum := 0.0
	for _, res := range results {
		eval.AvgCoverage += res.Metrics.Agent.CoverageRate / n
		eval.AvgTimeVariance += abs(res.Metrics.Agent.TimeVariance) / n
		eval.AvgAdversarial += res.Metrics.Agent.AdversarialScore / n
		eval.AvgProbing += res.Metrics.Agent.ProbingQuality / n
		eval.AvgClarity += res.Metrics.Brief.ClarityIndex / n
		eval.AvgObjectiveCoverage += res.Metrics.Brief.ObjectiveCoverage / n
		if res.Metrics.Brief.LengthRealism.Realistic {
			lengthScoreSum += 10
		} else {
			lengthScoreSum += 5
		}
	}
	lengthScore := lengthScoreSum / n

	eval.HighRiskQuestions = highRiskQuestions(results)
	eval.Recommendations = r.recommendations(eval, results, guide)

	agentScore := eval.AvgCoverage/10*0.5 + eval.AvgAdversarial*0.25 + eval.AvgProbing*0.25
	briefScore := eval.AvgClarity*0.5 + eval.AvgObjectiveCoverage/10*0.3 + lengthScore*0.2

	hasCritical := false
	for _, rec := range eval.Recommendations {
		if rec.Type == model.RecommendationCritical {
			hasCritical = true
			break
		}
	}

	eval.Overall = model.OverallScore{
		AgentScore:    clamp(agentScore, 0, 10),
		BriefScore:    clamp(briefScore, 0, 10),
		ReadyToLaunch: agentScore >= launchScoreFloor && briefScore >= launchScoreFloor && !hasCritical,
	}
	return eval
}

func (r *RecommendationService) recommendations(eval *model.DemoEvaluation, results []*model.SimulationResult, guide *model.InterviewGuide) []model.Recommendation {
	var recs []model.Recommendation

	switch {
	case eval.AvgCoverage < coverageCriticalPct:
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationCritical,
			Category:    "coverage",
			Title:       "Interview guide is not being fully covered",
			Description: fmt.Sprintf("On average only %.0f%% of guide questions were asked across the simulated sessions. Shorten the guide or raise the session length so every question fits.", eval.AvgCoverage),
			Impact:      "Key research questions may go unanswered in real sessions.",
			Actionable:  true,
		})
	case eval.AvgCoverage < coverageWarningPct:
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationWarning,
			Category:    "coverage",
			Title:       "Some guide questions are being skipped",
			Description: fmt.Sprintf("Average question coverage was %.0f%%. Reorder the guide so the most important questions come first.", eval.AvgCoverage),
			Impact:      "A few questions are likely to be dropped under time pressure.",
			Actionable:  true,
		})
	}

	if eval.AvgTimeVariance > timeVarianceWarnPct {
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationWarning,
			Category:    "timing",
			Title:       "Session length deviates from the estimate",
			Description: fmt.Sprintf("Actual session length differed from the estimate by %.0f%% on average. Adjust the estimated duration or trim question scope to match.", eval.AvgTimeVariance),
			Impact:      "Participants may be scheduled for the wrong amount of time.",
			Actionable:  true,
		})
	}

	if unclear := questionsBelow(results, clarityCritical); len(unclear) > 0 {
		recs = append(recs, model.Recommendation{
			Type:              model.RecommendationCritical,
			Category:          "clarity",
			Title:             "Some questions confuse participants badly",
			Description:       fmt.Sprintf("%d question(s) scored below %.0f/10 on clarity. Rewrite the flagged questions in plainer language.", len(unclear), clarityCritical),
			Impact:            "Answers to these questions will be unreliable.",
			Actionable:        true,
			AffectedQuestions: unclear,
		})
	} else if borderline := questionsBelow(results, clarityWarning); len(borderline) > 0 {
		recs = append(recs, model.Recommendation{
			Type:              model.RecommendationWarning,
			Category:          "clarity",
			Title:             "Some questions caused mild confusion",
			Description:       fmt.Sprintf("%d question(s) scored below %.0f/10 on clarity. Simplify the flagged questions or add context before them.", len(borderline), clarityWarning),
			Impact:            "Participants may need rephrasing, which costs session time.",
			Actionable:        true,
			AffectedQuestions: borderline,
		})
	}

	if eval.AvgObjectiveCoverage < objectiveCritical {
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationCritical,
			Category:    "objectives",
			Title:       "Research objectives are under-covered",
			Description: fmt.Sprintf("Only %.0f%% of objective-linked questions were asked on average. Add or tag questions for the objectives with missing coverage.", eval.AvgObjectiveCoverage),
			Impact:      "The study may not answer what it set out to answer.",
			Actionable:  true,
		})
	}

	if avg, ok := adversarialAmongTested(results); ok && avg < adversarialWarning {
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationWarning,
			Category:    "moderation",
			Title:       "Moderator struggles with difficult participants",
			Description: fmt.Sprintf("Adversarial handling scored %.1f/10 on runs that included tangents or pushback. Strengthen the redirect instructions in the moderator prompt.", avg),
			Impact:      "Off-topic or frustrated participants will derail real sessions.",
			Actionable:  true,
		})
	}

	if eval.AvgProbing < probingSuggestion {
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationSuggestion,
			Category:    "probing",
			Title:       "Follow-up probing could go deeper",
			Description: fmt.Sprintf("Probing quality averaged %.1f/10. Add probe prompts asking for comparisons, impact, or reasons.", eval.AvgProbing),
			Impact:      "Surface-level answers will be accepted without digging in.",
			Actionable:  true,
		})
	}

	if rate, ok := questionsPerMinute(results, guide); ok && (rate > paceTooFastPerMin || rate < paceTooSlowPerMin) {
		title := "Interview pace is very fast"
		advice := "Allow more time per question or add probing between questions."
		if rate < paceTooSlowPerMin {
			title = "Interview pace is very slow"
			advice = "Tighten questions or reduce probing so the session keeps moving."
		}
		recs = append(recs, model.Recommendation{
			Type:        model.RecommendationSuggestion,
			Category:    "pacing",
			Title:       title,
			Description: fmt.Sprintf("Sessions averaged %.1f questions per minute. %s", rate, advice),
			Impact:      "Pacing this far off the norm fatigues participants or wastes time.",
			Actionable:  true,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return severityRank(recs[i].Type) < severityRank(recs[j].Type)
	})
	return recs
}

func severityRank(t model.RecommendationType) int {
	switch t {
	case model.RecommendationCritical:
		return 0
	case model.RecommendationWarning:
		return 1
	default:
		return 2
	}
}

// questionsBelow returns the sorted ids of questions whose worst clarity score
// across personas fell below the threshold
func questionsBelow(results []*model.SimulationResult, threshold float64) []string {
	worst := make(map[string]float64)
	for _, res := range results {
		for _, qc := range res.Metrics.Brief.QuestionClarity {
			if cur, ok := worst[qc.QuestionID]; !ok || qc.Score < cur {
				worst[qc.QuestionID] = qc.Score
			}
		}
	}
	var ids []string
	for id, score := range worst {
		if score < threshold {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func highRiskQuestions(results []*model.SimulationResult) []string {
	return questionsBelow(results, clarityCritical)
}

// adversarialAmongTested averages the adversarial score over runs whose
// transcripts actually contained adversarial participant turns
func adversarialAmongTested(results []*model.SimulationResult) (float64, bool) {
	sum := 0.0
	count := 0
	for _, res := range results {
		tested := false
		for _, msg := range res.Transcript {
			if msg.Role != model.RoleUser {
				continue
			}
			lower := strings.ToLower(msg.Content)
			if matchesAny(lower, tangentPatterns) || matchesAny(lower, refusalPatterns) ||
				matchesAny(lower, profanityPatterns) || matchesAny(lower, frustrationPatterns) {
				tested = true
				break
			}
		}
		if tested {
			sum += res.Metrics.Agent.AdversarialScore
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func questionsPerMinute(results []*model.SimulationResult, guide *model.InterviewGuide) (float64, bool) {
	totalQuestions := 0.0
	totalMinutes := 0.0
	questionCount := float64(len(guide.NonProbeQuestions()))
	for _, res := range results {
		if res.DurationMin <= 0 {
			continue
		}
		totalQuestions += res.Metrics.Agent.CoverageRate / 100 * questionCount
		totalMinutes += res.DurationMin
	}
	if totalMinutes == 0 {
		return 0, false
	}
	return totalQuestions / totalMinutes, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
