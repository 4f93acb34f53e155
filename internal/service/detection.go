package service

import (
	"strings"

	"demosim/internal/model"
)

// Heuristic text detection shared by the orchestrator, the persona agent, and
// the evaluators. Everything here operates on lowercased transcript text.

// keywordStopList holds common words excluded from question keyword matching
var keywordStopList = map[string]bool{
	"about": true, "after": true, "again": true, "being": true, "could": true,
	"every": true, "might": true, "other": true, "people": true, "please": true,
	"should": true, "tell": true, "their": true, "there": true, "these": true,
	"thing": true, "things": true, "think": true, "those": true, "through": true,
	"today": true, "using": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "would": true, "your": true, "yourself": true,
}

var closingPhrases = []string{
	"this concludes",
	"that concludes",
	"concludes our interview",
	"thank you for your time",
	"thanks for your time",
	"that's all the questions",
	"we've covered everything",
	"this wraps up",
	"that wraps up",
	"have a great day",
	"have a wonderful day",
}

var goodbyeWords = []string{"goodbye", "bye", "farewell"}

var gratitudePhrases = []string{
	"thank you so much",
	"thanks so much",
	"really appreciate",
	"i appreciate your",
}

// questionKeywords extracts the filtered keyword set for a guide question:
// lowercased words longer than 4 characters, minus the stop-list.
func questionKeywords(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range words {
		w = strings.Trim(w, "'")
		if len(w) <= 4 || keywordStopList[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// questionAsked reports whether any single agent turn overlaps at least 40%
// of the question's filtered keywords.
func questionAsked(question model.GuideQuestion, agentTurns []string) bool {
	keywords := questionKeywords(question.Question)
	if len(keywords) == 0 {
		return false
	}
	needed := float64(len(keywords)) * 0.4
	for _, turn := range agentTurns {
		lower := strings.ToLower(turn)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		if float64(matched) >= needed {
			return true
		}
	}
	return false
}

// guideCoverage returns the fraction (0-1) of non-probe guide questions whose
// keywords appear in the transcript's agent turns. Monotonically non-decreasing
// as agent turns are appended for a fixed guide.
func guideCoverage(guide *model.InterviewGuide, transcript []model.ConversationMessage) float64 {
	questions := guide.NonProbeQuestions()
	if len(questions) == 0 {
		return 1
	}
	var agentTurns []string
	for _, msg := range transcript {
		if msg.Role == model.RoleAgent {
			agentTurns = append(agentTurns, msg.Content)
		}
	}
	asked := 0
	for _, q := range questions {
		if questionAsked(q, agentTurns) {
			asked++
		}
	}
	return float64(asked) / float64(len(questions))
}

// isNaturalClosing classifies an agent turn as a conversation closing.
// A closing has no question mark AND matches a closing phrase, a goodbye word,
// or a gratitude phrase on a short (<20 word) message.
func isNaturalClosing(text string) bool {
	if strings.Contains(text, "?") {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range closingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, ".,!;:\"'")
		for _, goodbye := range goodbyeWords {
			if word == goodbye {
				return true
			}
		}
	}
	if len(strings.Fields(text)) < 20 {
		for _, phrase := range gratitudePhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}
