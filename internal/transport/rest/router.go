package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"demosim/internal/service"
	"demosim/internal/transport/rest/handler"
	"demosim/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	DemoService *service.DemoService
	WSHub       *ws.Hub
	CORSOrigins string
	Logger      *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	demoHandler := handler.NewDemoHandler(c.DemoService, c.Logger)
	personaHandler := handler.NewPersonaHandler(c.DemoService)
	wsHandler := ws.NewHandler(c.WSHub, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/demos/run", demoHandler.Run).Methods("POST", "OPTIONS")
	v1.HandleFunc("/demos/{demoId}", demoHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/projects/{projectId}/demos", demoHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/personas", personaHandler.List).Methods("GET", "OPTIONS")

	// WebSocket progress mirror
	v1.HandleFunc("/ws/demos/{demoId}/watch", wsHandler.WatchWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(origins string) mux.MiddlewareFunc {
	if origins == "" {
		origins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
