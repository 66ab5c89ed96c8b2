package http

import (
	"errors"
	"net/http"

	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/httpx"
	"github.com/growersgate/gate/pkg/slogx"
)

const bootstrapTokenHeader = "X-Bootstrap-Token"

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Create the first admin account
//	@Description	Only available while no admin exists and when a bootstrap token is configured.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		gatesdk.BootstrapRequest	true	"Admin account"
//	@Success		201					{object}	gatesdk.BootstrapResponse	"Admin created"
//	@Failure		400					{object}	gatesdk.ErrorResponse		"Validation failed"
//	@Failure		401					{object}	gatesdk.MessageResponse		"Missing or invalid bootstrap token"
//	@Failure		404					{object}	gatesdk.MessageResponse		"Bootstrap not enabled"
//	@Failure		409					{object}	gatesdk.MessageResponse		"Already bootstrapped or email taken"
//	@Router			/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	if h.BootstrapService.Token == "" {
		writeError(w, r, service.ErrBootstrapDisabled)
		return
	}

	token := r.Header.Get(bootstrapTokenHeader)
	if token == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	var req gatesdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.BootstrapService.Bootstrap(r.Context(), token, service.BootstrapInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			httpx.WriteMessage(w, http.StatusConflict, "User already exists")
			return
		}
		writeError(w, r, err)
		return
	}

	l.Info("bootstrap complete", "admin_id", admin.ID)
	httpx.WriteJSON(w, http.StatusCreated, gatesdk.BootstrapResponse{
		Message: "Admin account created",
		UserID:  admin.ID,
	})
}
