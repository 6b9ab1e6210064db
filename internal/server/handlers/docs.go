package handlers

import (
	"net/http"
)

// EndpointDoc describes one route for the API index.
type EndpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// DocsResponse is the machine-readable API index served at /docs.
type DocsResponse struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Endpoints []EndpointDoc `json:"endpoints"`
}

// DocsHandler handles GET /docs with a JSON description of the API surface.
func DocsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DocsResponse{
		Service: serviceName,
		Version: AppVersion,
		Endpoints: []EndpointDoc{
			{Method: http.MethodPost, Path: "/send-email", Description: "Trigger an options report dispatch (cooldown gated)"},
			{Method: http.MethodPost, Path: "/webhook", Description: "Alias for /send-email (legacy webhook callers)"},
			{Method: http.MethodPost, Path: "/", Description: "Alias for /send-email (legacy root callers)"},
			{Method: http.MethodGet, Path: "/scheduler/status", Description: "Dispatch loop state"},
			{Method: http.MethodPost, Path: "/scheduler/start", Description: "Start the dispatch loop"},
			{Method: http.MethodPost, Path: "/scheduler/stop", Description: "Stop the dispatch loop"},
			{Method: http.MethodGet, Path: "/health", Description: "Aggregate health check"},
			{Method: http.MethodGet, Path: "/health/live", Description: "Liveness probe"},
			{Method: http.MethodGet, Path: "/health/ready", Description: "Readiness probe"},
			{Method: http.MethodGet, Path: "/health/startup", Description: "Startup probe"},
			{Method: http.MethodGet, Path: "/version", Description: "Build and runtime information"},
			{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
			{Method: http.MethodGet, Path: "/docs", Description: "This index"},
		},
	})
}
