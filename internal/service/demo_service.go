package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"demosim/internal/cache"
	"demosim/internal/model"
	"demosim/internal/repository"
)

// EmitFunc receives each progress event of a demo run, in order
type EmitFunc func(event model.ProgressEvent)

// projectHistoryLimit caps how many past demos the history listing returns
const projectHistoryLimit = 20

// DemoService runs complete demos: it validates the request, enforces the
// rate limits, drives each persona sequentially, aggregates the evaluation,
// and persists the finished demo.
type DemoService struct {
	catalog     *PersonaCatalog
	sim         *SimulationService
	recommender *RecommendationService
	limiter     *RateLimiter
	repo        repository.DemoRepo
	cache       cache.DemoCache
	broadcaster Broadcaster
	logger      *zap.Logger
	seed        func() int64
}

// NewDemoService creates the demo run service
func NewDemoService(catalog *PersonaCatalog, sim *SimulationService, recommender *RecommendationService, limiter *RateLimiter, repo repository.DemoRepo, demoCache cache.DemoCache, logger *zap.Logger) *DemoService {
	return &DemoService{
		catalog:     catalog,
		sim:         sim,
		recommender: recommender,
		limiter:     limiter,
		repo:        repo,
		cache:       demoCache,
		logger:      logger,
		seed:        func() int64 { return time.Now().UnixNano() },
	}
}

// SetBroadcaster wires the WebSocket hub after construction (avoids import cycle)
func (s *DemoService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetSeed overrides the per-persona RNG seeding, for reproducible runs
func (s *DemoService) SetSeed(seed func() int64) {
	s.seed = seed
}

// Run executes a full demo and pushes the ordered event stream to emit.
// The stream always terminates with a complete or error event. The returned
// id identifies the persisted demo; it is empty when the run was rejected.
func (s *DemoService) Run(ctx context.Context, req *model.DemoRunRequest, emit EmitFunc) (string, error) {
	if emit == nil {
		emit = func(model.ProgressEvent) {}
	}

	if err := validateRequest(req); err != nil {
		emit(model.ProgressEvent{Type: model.EventError, Payload: model.ErrorPayload{Message: err.Error()}})
		return "", err
	}

	status, err := s.limiter.Check(ctx, req.ProjectID)
	if err != nil {
		emit(model.ProgressEvent{Type: model.EventError, Payload: model.ErrorPayload{Message: "rate limit check failed"}})
		return "", err
	}
	if !status.Allowed {
		err := fmt.Errorf("%w: %s quota exhausted, resets at %s",
			ErrRateLimited, status.Scope, status.ResetAt.Format(time.RFC3339))
		emit(model.ProgressEvent{Type: model.EventError, Payload: model.ErrorPayload{Message: err.Error()}})
		return "", err
	}

	if err := s.limiter.Increment(ctx, req.ProjectID); err != nil {
		s.logger.Warn("rate limit increment failed", zap.Error(err))
	}

	demoID := uuid.NewString()
	send := func(event model.ProgressEvent) {
		emit(event)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToDemo(demoID, event)
		}
	}
	defer func() {
		if s.broadcaster != nil {
			s.broadcaster.CloseDemo(demoID)
		}
	}()

	personas := s.catalog.All()
	summaries := make([]model.PersonaSummary, len(personas))
	for i, p := range personas {
		summaries[i] = model.PersonaSummary{ID: p.ID, Name: p.Name}
	}
	send(model.ProgressEvent{Type: model.EventInit, Payload: model.InitPayload{DemoID: demoID, Personas: summaries}})

	s.logger.Info("demo run started",
		zap.String("demoId", demoID),
		zap.String("projectId", req.ProjectID),
		zap.Int("questions", len(req.Guide.Questions)))

	results := make([]model.SimulationResult, 0, len(personas))
	for i, persona := range personas {
		if ctx.Err() != nil {
			send(model.ProgressEvent{Type: model.EventPersonaError, Payload: model.PersonaErrorPayload{Index: i, Error: "run cancelled"}})
			send(model.ProgressEvent{Type: model.EventError, Payload: model.ErrorPayload{Message: "demo run cancelled"}})
			return "", ctx.Err()
		}

		send(model.ProgressEvent{Type: model.EventPersonaStart, Payload: model.PersonaStartPayload{
			Index:     i,
			PersonaID: persona.ID,
			Name:      persona.Name,
		}})

		rng := rand.New(rand.NewSource(s.seed()))
		result := s.sim.RunPersona(ctx, persona, req, rng, func(turn int, message string) {
			send(model.ProgressEvent{Type: model.EventPersonaProgress, Payload: model.PersonaProgressPayload{
				Index:   i,
				Turn:    turn,
				Message: message,
			}})
		})
		results = append(results, *result)

		send(model.ProgressEvent{Type: model.EventPersonaComplete, Payload: model.PersonaCompletePayload{
			Index:         i,
			DurationMin:   result.DurationMin,
			MessagesCount: len(result.Transcript),
		}})
	}

	send(model.ProgressEvent{Type: model.EventEvaluating})

	resultPtrs := make([]*model.SimulationResult, len(results))
	for i := range results {
		resultPtrs[i] = &results[i]
	}
	evaluation := s.recommender.Evaluate(resultPtrs, &req.Guide)

	demo := &model.Demo{
		ID:         demoID,
		ProjectID:  req.ProjectID,
		Brief:      req.Brief,
		Objectives: req.Objectives,
		Guide:      req.Guide,
		Results:    results,
		Evaluation: *evaluation,
		CreatedAt:  time.Now(),
	}
	s.persist(ctx, demo)

	send(model.ProgressEvent{Type: model.EventComplete, Payload: model.CompletePayload{
		Results:    results,
		Evaluation: *evaluation,
		DemoID:     demoID,
	}})

	s.logger.Info("demo run finished",
		zap.String("demoId", demoID),
		zap.Bool("readyToLaunch", evaluation.Overall.ReadyToLaunch),
		zap.Int("recommendations", len(evaluation.Recommendations)))

	return demoID, nil
}

// GetDemo fetches a finished demo, cache first
func (s *DemoService) GetDemo(ctx context.Context, id string) (*model.Demo, error) {
	if s.cache != nil {
		demo, err := s.cache.Get(ctx, id)
		if err == nil && demo != nil {
			return demo, nil
		}
		if err != nil {
			// Evict the unreadable entry so the next read goes to mongo cleanly
			s.logger.Warn("demo cache read failed, evicting entry", zap.String("demoId", id), zap.Error(err))
			if delErr := s.cache.Delete(ctx, id); delErr != nil {
				s.logger.Warn("demo cache evict failed", zap.String("demoId", id), zap.Error(delErr))
			}
		}
	}
	if s.repo == nil {
		return nil, ErrDemoNotFound
	}
	demo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if demo == nil {
		return nil, fmt.Errorf("%w: %s", ErrDemoNotFound, id)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, demo); err != nil {
			s.logger.Warn("demo cache set failed", zap.String("demoId", id), zap.Error(err))
		}
	}
	return demo, nil
}

// ListDemos returns a project's most recent finished demos, newest first
func (s *DemoService) ListDemos(ctx context.Context, projectID string) ([]model.Demo, error) {
	if s.repo == nil {
		return []model.Demo{}, nil
	}
	demos, err := s.repo.ListByProject(ctx, projectID, projectHistoryLimit)
	if err != nil {
		return nil, err
	}
	if demos == nil {
		demos = []model.Demo{}
	}
	return demos, nil
}

// Personas lists the catalog in run order
func (s *DemoService) Personas() []*model.Persona {
	return s.catalog.All()
}

func (s *DemoService) persist(ctx context.Context, demo *model.Demo) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, demo); err != nil {
			s.logger.Error("demo save failed", zap.String("demoId", demo.ID), zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, demo); err != nil {
			s.logger.Warn("demo cache set failed", zap.String("demoId", demo.ID), zap.Error(err))
		}
	}
}

func validateRequest(req *model.DemoRunRequest) error {
	if len(req.Guide.Questions) == 0 {
		return ErrMissingGuide
	}
	if len(req.Objectives) == 0 {
		return ErrNoObjectives
	}
	return nil
}
