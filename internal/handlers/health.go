package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"linguaflow/internal/contextutil"
	"linguaflow/internal/vectorstore"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	required           map[string]HealthCheck
	optional           map[string]HealthCheck
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a HealthHandler. Failing required checks make the
// service unhealthy, failing optional ones make it degraded.
func NewHealthHandler(required, optional map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		required:           required,
		optional:           optional,
		healthCheckTimeout: 5 * time.Second,
	}
}

// VectorStoreCheck reports an error when the store is unreachable or the
// collection is missing.
func VectorStoreCheck(store vectorstore.VectorStore, collection string) HealthCheck {
	return func(ctx context.Context) error {
		exists, err := store.CollectionExists(ctx, collection)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("collection %s does not exist", collection)
		}
		return nil
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
// Returns 200 OK if healthy, 503 Service Unavailable if degraded or unhealthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	run := func(group map[string]HealthCheck) bool {
		ok := true
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := group[name](checkCtx); err != nil {
				logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				checks[name] = "error"
				issues = append(issues, name+"_unavailable")
				ok = false
				continue
			}
			checks[name] = "ok"
		}
		return ok
	}

	requiredOK := run(h.required)
	optionalOK := run(h.optional)

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case !requiredOK:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case !optionalOK:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
