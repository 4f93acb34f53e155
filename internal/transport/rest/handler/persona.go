package handler

import (
	"net/http"

	"demosim/internal/service"
)

// PersonaHandler exposes the persona catalog
type PersonaHandler struct {
	demoSvc *service.DemoService
}

// NewPersonaHandler creates a new persona handler
func NewPersonaHandler(demoSvc *service.DemoService) *PersonaHandler {
	return &PersonaHandler{demoSvc: demoSvc}
}

// List handles GET /v1/personas
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.demoSvc.Personas())
}
