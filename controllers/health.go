package controllers

import (
	"context"
	"net/http"
	"time"

	"forever-ecommerce/utils"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	Checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{Checks: checks}
}

func (hc *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API Working"))
}

// Healthz pings every dependency and answers 503 if any is down.
func (hc *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(hc.Checks))
	for name, check := range hc.Checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	utils.WriteJSON(w, status, map[string]any{"success": status == http.StatusOK, "checks": results})
}
