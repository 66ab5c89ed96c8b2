package http

import (
	"net/http"
	"time"

	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/httpx"
	"github.com/growersgate/gate/pkg/jwtx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, gatesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database, the session state backend and the signing secret
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	gatesdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, secrets *jwtx.SecretSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &gatesdk.HealthChecks{
			Database:     "ok",
			SessionState: "ok",
			Signer:       "ok",
		}
		status, code := "ok", http.StatusOK
		degrade := func(field *string, msg string) {
			*field = "error: " + msg
			status, code = "degraded", http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			degrade(&checks.Database, err.Error())
		}
		if err := store.PingSessionState(r.Context(), st); err != nil {
			degrade(&checks.SessionState, err.Error())
		}
		if secrets == nil || secrets.Len() == 0 {
			degrade(&checks.Signer, "no signing secret loaded")
		}

		httpx.WriteJSON(w, code, gatesdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
