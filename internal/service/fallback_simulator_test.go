package service

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"demosim/internal/model"
)

// zeroSource makes every rng draw come out as zero, so probability checks
// like "rng.Float64() < 0.3" always pass and Intn always picks index 0
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func zeroRNG() *rand.Rand {
	return rand.New(zeroSource{})
}

func testGuide() *model.InterviewGuide {
	return &model.InterviewGuide{
		EstimatedDurationMin: 15,
		Questions: []model.GuideQuestion{
			{ID: "q1", Question: "How would you describe your current morning routine?", Type: model.QuestionTypeOpen, Objective: "Understand daily habits", ExpectedDurationMin: 3},
			{ID: "q2", Question: "Which products do you reach for before leaving the house?", Type: model.QuestionTypeOpen, Objective: "Understand daily habits", ExpectedDurationMin: 3},
			{ID: "q3", Question: "Describe a recent morning where everything went wrong.", Type: model.QuestionTypeOpen, Objective: "Identify pain points", ExpectedDurationMin: 3},
			{ID: "q4", Question: "What slows you down most between waking and leaving?", Type: model.QuestionTypeOpen, Objective: "Identify pain points", ExpectedDurationMin: 3},
			{ID: "q5", Question: "How do you decide whether a routine change is worth keeping?", Type: model.QuestionTypeOpen, Objective: "Understand decision criteria", ExpectedDurationMin: 3},
		},
	}
}

func testObjectives() []string {
	return []string{"Understand daily habits", "Identify pain points", "Understand decision criteria"}
}

func newTestFallback() *FallbackSimulator {
	return NewFallbackSimulator(NewAgentEvaluator(), NewBriefEvaluator(), zap.NewNop())
}

// assertTimestampsOrdered checks that transcript timestamps never go backwards
func assertTimestampsOrdered(t *testing.T, transcript []model.ConversationMessage) {
	t.Helper()
	for i := 1; i < len(transcript); i++ {
		assert.False(t, transcript[i].Timestamp.Before(transcript[i-1].Timestamp),
			"turn %d predates turn %d", i, i-1)
	}
}

func TestFallbackIdealPersonaCompletes(t *testing.T) {
	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaIdeal)
	require.NoError(t, err)

	result := newTestFallback().Run(persona, testGuide(), testObjectives(), rand.New(rand.NewSource(1)))

	assert.True(t, result.Completed)
	assert.Empty(t, result.DroppedAt)
	assert.Equal(t, model.PersonaIdeal, result.PersonaID)
	assert.NotEmpty(t, result.Transcript)
	assert.Greater(t, result.DurationMin, 0.0)

	last := result.Transcript[len(result.Transcript)-1]
	assert.Equal(t, model.RoleAgent, last.Role)
	assert.Contains(t, strings.ToLower(last.Content), "concludes our interview")

	// Every guide question got an agent turn, so coverage is full
	assert.Equal(t, 100.0, result.Metrics.Agent.CoverageRate)
	assert.Equal(t, 15.0, result.Metrics.Brief.LengthRealism.EstimatedMin)

	assertTimestampsOrdered(t, result.Transcript)
}

func TestFallbackDifficultPersonaOptsOut(t *testing.T) {
	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaDifficult)
	require.NoError(t, err)

	// Zero rng makes the 30% opt-out check fire on the first eligible question.
	// Low detail means two turns per question, so the transcript reaches six
	// turns after q3 and the walkout lands on q4.
	result := newTestFallback().Run(persona, testGuide(), testObjectives(), zeroRNG())

	assert.False(t, result.Completed)
	assert.Equal(t, "q4", result.DroppedAt)
	assert.Equal(t, "Participant opted out mid-interview", result.DropOffReason)

	last := result.Transcript[len(result.Transcript)-1]
	assert.Equal(t, model.RoleUser, last.Role)

	// Partial runs are still fully evaluated
	assert.Equal(t, 60.0, result.Metrics.Agent.CoverageRate)
	assert.NotZero(t, result.Metrics.Brief.ClarityIndex)

	assertTimestampsOrdered(t, result.Transcript)
}

func TestFallbackTalkativePersonaGetsProbes(t *testing.T) {
	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaIdeal)
	require.NoError(t, err)

	result := newTestFallback().Run(persona, testGuide(), testObjectives(), rand.New(rand.NewSource(7)))

	probes := 0
	for _, msg := range result.Transcript {
		if msg.Role == model.RoleAgent && msg.Metadata != nil && msg.Metadata.IsProbe {
			probes++
		}
	}
	assert.Equal(t, len(testGuide().Questions), probes)
	assert.Greater(t, result.Metrics.Agent.ProbingQuality, 5.0)
}

func TestFallbackTangentProneAnswersCarryTangents(t *testing.T) {
	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaTypical)
	require.NoError(t, err)

	result := newTestFallback().Run(persona, testGuide(), testObjectives(), rand.New(rand.NewSource(3)))

	tangents := 0
	for _, msg := range result.Transcript {
		if msg.Role == model.RoleUser && strings.Contains(strings.ToLower(msg.Content), "by the way") {
			tangents++
		}
	}
	assert.Greater(t, tangents, 0)
}
