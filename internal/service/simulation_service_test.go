package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"demosim/internal/config"
	"demosim/internal/model"
)

func geminiReply(text string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return string(data)
}

// scriptedGemini serves interviewer turns from the guide in order and gives
// every participant call a fixed cooperative answer
func scriptedGemini(t *testing.T, guide *model.InterviewGuide) *httptest.Server {
	t.Helper()
	greeted := false
	next := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")

		if strings.Contains(string(body), "role-playing") {
			fmt.Fprint(w, geminiReply("Sure, mornings are usually pretty hectic for me, lots of rushing around."))
			return
		}
		if !greeted {
			greeted = true
			fmt.Fprint(w, geminiReply("Welcome, and thanks for making the time today. Ready to begin?"))
			return
		}
		if next < len(guide.Questions) {
			q := guide.Questions[next].Question
			next++
			fmt.Fprint(w, geminiReply(q))
			return
		}
		fmt.Fprint(w, geminiReply("Thank you for your time, that's everything from me."))
	}))
}

func liveAIConfig(baseURL string) *config.AIConfig {
	return &config.AIConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Models:    config.GeminiModels{Interviewer: "interviewer-model", Participant: "participant-model"},
		TimeoutMS: 2000,
	}
}

func newLiveSimulation(t *testing.T, baseURL string) *SimulationService {
	t.Helper()
	logger := zap.NewNop()
	agentEval := NewAgentEvaluator()
	briefEval := NewBriefEvaluator()
	gemini := NewGeminiClient(liveAIConfig(baseURL), logger)
	fallback := NewFallbackSimulator(agentEval, briefEval, logger)
	return NewSimulationService(gemini, fallback, agentEval, briefEval, 40, 5, logger)
}

func TestLiveRunConcludesOnCoverage(t *testing.T) {
	guide := testGuide()
	srv := scriptedGemini(t, guide)
	defer srv.Close()

	sim := newLiveSimulation(t, srv.URL)
	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaIdeal)
	require.NoError(t, err)

	req := &model.DemoRunRequest{
		ProjectID:  "proj-a",
		Objectives: testObjectives(),
		Guide:      *guide,
	}
	result := sim.RunPersona(context.Background(), persona, req, rand.New(rand.NewSource(1)), nil)
	require.NotNil(t, result)

	assert.True(t, result.Completed)
	assert.Empty(t, result.DropOffReason)

	// The moderator's goodbye triggers the wrap-up handshake, so the final
	// turn is the participant's single farewell
	require.GreaterOrEqual(t, len(result.Transcript), 2)
	closing := result.Transcript[len(result.Transcript)-2]
	farewell := result.Transcript[len(result.Transcript)-1]
	assert.Equal(t, model.RoleAgent, closing.Role)
	assert.Contains(t, strings.ToLower(closing.Content), "thank you for your time")
	assert.Equal(t, model.RoleUser, farewell.Role)
	assert.NotContains(t, farewell.Content, "?")

	// The scripted moderator asked the guide verbatim
	assert.Equal(t, 100.0, result.Metrics.Agent.CoverageRate)

	assertTimestampsOrdered(t, result.Transcript)
}

func TestLiveRunForcedCompletionIsNotCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), "role-playing") {
			fmt.Fprint(w, geminiReply("Happy to keep going, there's plenty more I could say about that."))
			return
		}
		// The moderator rambles and never reaches the guide questions
		fmt.Fprint(w, geminiReply("Interesting, what else comes to mind when you sit with that?"))
	}))
	defer srv.Close()

	sim := newLiveSimulation(t, srv.URL)
	persona, err := NewPersonaCatalog().Get(model.PersonaIdeal)
	require.NoError(t, err)

	req := &model.DemoRunRequest{
		ProjectID:  "proj-a",
		Objectives: testObjectives(),
		Guide:      *testGuide(),
	}
	result := sim.RunPersona(context.Background(), persona, req, rand.New(rand.NewSource(1)), nil)
	require.NotNil(t, result)

	// The turn limit cut the session off, so the moderator closed with the
	// time-limit wording and the run does not count as completed
	last := result.Transcript[len(result.Transcript)-1]
	require.NotNil(t, last.Metadata)
	assert.True(t, last.Metadata.ForcedCompletion)
	assert.Equal(t, model.RoleAgent, last.Role)
	assert.Contains(t, strings.ToLower(last.Content), "time limit")
	assert.False(t, result.Completed)
	assert.Less(t, result.Metrics.Agent.CoverageRate, 70.0)

	assertTimestampsOrdered(t, result.Transcript)
}

func TestLiveRunFallsBackWhenGeminiFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sim := newLiveSimulation(t, srv.URL)
	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaIdeal)
	require.NoError(t, err)

	var notes []string
	req := &model.DemoRunRequest{
		ProjectID:  "proj-a",
		Objectives: testObjectives(),
		Guide:      *testGuide(),
	}
	result := sim.RunPersona(context.Background(), persona, req, rand.New(rand.NewSource(1)), func(_ int, msg string) {
		notes = append(notes, msg)
	})
	require.NotNil(t, result)

	// The deterministic restart produced a full run
	assert.True(t, result.Completed)
	assert.Equal(t, 100.0, result.Metrics.Agent.CoverageRate)

	restarted := false
	for _, note := range notes {
		if strings.Contains(note, "deterministic simulation") {
			restarted = true
		}
	}
	assert.True(t, restarted)
}

func TestDisabledGeminiGoesStraightToFallback(t *testing.T) {
	logger := zap.NewNop()
	agentEval := NewAgentEvaluator()
	briefEval := NewBriefEvaluator()
	cfg := liveAIConfig("http://unreachable.invalid")
	cfg.Disabled = true
	gemini := NewGeminiClient(cfg, logger)
	fallback := NewFallbackSimulator(agentEval, briefEval, logger)
	sim := NewSimulationService(gemini, fallback, agentEval, briefEval, 40, 5, logger)

	catalog := NewPersonaCatalog()
	persona, err := catalog.Get(model.PersonaTypical)
	require.NoError(t, err)

	req := &model.DemoRunRequest{
		ProjectID:  "proj-a",
		Objectives: testObjectives(),
		Guide:      *testGuide(),
	}
	result := sim.RunPersona(context.Background(), persona, req, rand.New(rand.NewSource(1)), nil)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Transcript)
	assert.Equal(t, model.PersonaTypical, result.PersonaID)
}
