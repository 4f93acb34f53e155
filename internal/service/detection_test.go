package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"demosim/internal/model"
)

func TestQuestionKeywordsFiltersShortAndStopWords(t *testing.T) {
	keywords := questionKeywords("Which products do you reach for before leaving the house?")

	assert.Contains(t, keywords, "products")
	assert.Contains(t, keywords, "reach")
	assert.Contains(t, keywords, "leaving")
	assert.Contains(t, keywords, "house")
	assert.NotContains(t, keywords, "which") // stop-list
	assert.NotContains(t, keywords, "do")    // too short
}

func TestQuestionAskedMatchesParaphrase(t *testing.T) {
	q := model.GuideQuestion{ID: "q1", Question: "Which products do you reach for before leaving the house?"}

	asked := []string{"So tell me, which products do you usually reach for in the morning?"}
	assert.True(t, questionAsked(q, asked))

	unrelated := []string{"How was the weather on your way here today?"}
	assert.False(t, questionAsked(q, unrelated))
}

func TestGuideCoverageGrowsWithAskedQuestions(t *testing.T) {
	guide := testGuide()
	now := time.Now()

	var transcript []model.ConversationMessage
	assert.Equal(t, 0.0, guideCoverage(guide, transcript))

	prev := 0.0
	for _, q := range guide.Questions {
		transcript = append(transcript, model.NewMessage(model.RoleAgent, q.Question, now, nil))
		cov := guideCoverage(guide, transcript)
		assert.GreaterOrEqual(t, cov, prev)
		prev = cov
	}
	assert.Equal(t, 1.0, prev)
}

func TestIsNaturalClosing(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Thank you so much for your time! This concludes our interview.", true},
		{"Goodbye!", true},
		{"Thanks so much, this was really helpful.", true},
		{"Could you tell me more about that?", false},
		{"That concludes this topic, but one more thing: what would you change?", false},
		{"I really appreciate the nuance there, and I want to dig into the part about your commute because it sounded genuinely stressful for you every single day.", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, isNaturalClosing(tc.text), tc.text)
	}
}
