package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"demosim/internal/cache"
	"demosim/internal/config"
	"demosim/internal/service"
	"demosim/internal/transport/ws"
)

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	agentEval := service.NewAgentEvaluator()
	briefEval := service.NewBriefEvaluator()
	fallback := service.NewFallbackSimulator(agentEval, briefEval, logger)
	sim := service.NewSimulationService(nil, fallback, agentEval, briefEval, 40, 5, logger)
	limiter := service.NewRateLimiter(cache.NewMemoryRateLimitStore(), config.RateLimitConfig{
		ProjectLimit:  10,
		ProjectWindow: 24 * time.Hour,
		GlobalLimit:   50,
		GlobalWindow:  time.Hour,
	}, time.Now, logger)
	demoSvc := service.NewDemoService(service.NewPersonaCatalog(), sim,
		service.NewRecommendationService(), limiter, nil, nil, logger)

	return NewRouter(&Container{
		DemoService: demoSvc,
		WSHub:       ws.NewHub(logger),
		CORSOrigins: "*",
		Logger:      logger,
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPersonaListEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/personas", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"id":"ideal"`)
	assert.Contains(t, body, `"id":"typical"`)
	assert.Contains(t, body, `"id":"difficult"`)
}

func TestDemoRunStreamsEvents(t *testing.T) {
	router := newTestRouter()

	reqBody := `{
		"projectId": "proj-a",
		"brief": "Validate the interview script",
		"objectives": ["Understand daily habits"],
		"guide": {
			"estimatedDuration": 10,
			"questions": [
				{"id": "q1", "question": "How would you describe your mornings?", "type": "open", "objective": "Understand daily habits"},
				{"id": "q2", "question": "What slows you down most before leaving?", "type": "open", "objective": "Understand daily habits"}
			]
		}
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/demos/run", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: init")
	assert.Contains(t, body, "event: persona_start")
	assert.Contains(t, body, "event: evaluating")
	assert.Contains(t, body, "event: complete")
	assert.NotContains(t, body, "event: error")
}

func TestDemoRunRejectsBadBody(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/demos/run", strings.NewReader("{not json"))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDemoRunEmptyGuideStreamsError(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/demos/run",
		strings.NewReader(`{"projectId":"p","objectives":["o"],"guide":{"questions":[]}}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error")
}

func TestProjectDemoHistoryEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/projects/proj-a/demos", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetUnknownDemoReturns404(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/demos/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/v1/personas", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
