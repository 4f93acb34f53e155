package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"demosim/internal/model"
	"demosim/internal/service"
)

// DemoHandler handles demo run and retrieval endpoints
type DemoHandler struct {
	demoSvc *service.DemoService
	logger  *zap.Logger
}

// NewDemoHandler creates a new demo handler
func NewDemoHandler(demoSvc *service.DemoService, logger *zap.Logger) *DemoHandler {
	return &DemoHandler{
		demoSvc: demoSvc,
		logger:  logger,
	}
}

// Run handles POST /v1/demos/run. The response is a Server-Sent Events stream
// of progress events, terminated by a complete or error event.
func (h *DemoHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req model.DemoRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(event model.ProgressEvent) {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			h.logger.Warn("event payload marshal failed", zap.String("type", string(event.Type)), zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: %s\n", event.Type)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	if _, err := h.demoSvc.Run(r.Context(), &req, emit); err != nil {
		// The failure already went out as an in-stream error event
		h.logger.Info("demo run rejected", zap.Error(err))
	}
}

// Get handles GET /v1/demos/{demoId}
func (h *DemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	demoID := mux.Vars(r)["demoId"]

	demo, err := h.demoSvc.GetDemo(r.Context(), demoID)
	if err != nil {
		if errors.Is(err, service.ErrDemoNotFound) {
			writeError(w, http.StatusNotFound, "demo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, demo)
}

// List handles GET /v1/projects/{projectId}/demos
func (h *DemoHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	demos, err := h.demoSvc.ListDemos(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, demos)
}
