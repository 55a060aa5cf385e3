package http

import (
	"net/http"
	"time"

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/KimDog-Studios/linkgate/pkg/httpx"
	"github.com/KimDog-Studios/linkgate/pkg/linksdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for the token
//	@Description	store and audit store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	linksdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	linksdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, auditStore audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"token_store": "ok",
		}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks["token_store"] = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if auditStore != nil {
			checks["audit_store"] = "ok"
			if err := auditStore.Ping(r.Context()); err != nil {
				checks["audit_store"] = "error: " + err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, linksdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
