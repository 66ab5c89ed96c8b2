package http

import (
	"net/http"
	"strconv"

	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/httpx"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// TwoFactorHandler handles the 2FA management endpoints.
type TwoFactorHandler struct {
	TwoFactor *service.TwoFactorService
}

// HandleSetup handles GET /2fa/setup
//
//	@Summary		Show the 2FA enrollment data
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	gatesdk.TwoFactorSetupResponse	"Enrollment data"
//	@Failure		403	{object}	gatesdk.MessageResponse			"Invalid token"
//	@Router			/2fa/setup [get].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	setup, err := h.TwoFactor.Setup(r.Context(), c.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.TwoFactorSetupResponse{
		TwoFactorEnrollment: gatesdk.TwoFactorEnrollment{
			QRCodeURL: setup.Enrollment.URI,
			Secret:    setup.Enrollment.Secret,
		},
		Enabled: setup.Enabled,
	})
}

// HandleQRCode handles GET /2fa/qr
//
//	@Summary		Enrollment QR code
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		png
//	@Param			size	query		int						false	"Edge length in pixels (128-1024)"
//	@Success		200		{file}		binary					"PNG image"
//	@Failure		403		{object}	gatesdk.MessageResponse	"Invalid token"
//	@Router			/2fa/qr [get].
func (h *TwoFactorHandler) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	size := defaultQRSize
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		size = min(max(v, minQRSize), maxQRSize)
	}

	png, err := h.TwoFactor.QRCode(r.Context(), c.Subject, size)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleEnable handles POST /2fa/enable
//
//	@Summary		Enable 2FA
//	@Description	Verifies a code from the authenticator and turns 2FA on. Returns ten recovery codes which are shown only once.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		200		{object}	gatesdk.RecoveryCodesResponse	"Enabled"
//	@Failure		400		{object}	gatesdk.MessageResponse			"Already enabled"
//	@Failure		401		{object}	gatesdk.MessageResponse			"Invalid 2FA token"
//	@Router			/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}
	var req gatesdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	codes, err := h.TwoFactor.Enable(r.Context(), c.Subject, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.RecoveryCodesResponse{
		Message:       "2FA enabled successfully",
		RecoveryCodes: codes,
	})
}

// HandleDisable handles POST /2fa/disable
//
//	@Summary		Disable 2FA
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		200		{object}	gatesdk.MessageResponse			"Disabled"
//	@Failure		400		{object}	gatesdk.MessageResponse			"Not enabled"
//	@Failure		401		{object}	gatesdk.MessageResponse			"Invalid 2FA token"
//	@Router			/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}
	var req gatesdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.TwoFactor.Disable(r.Context(), c.Subject, req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "2FA disabled successfully")
}

// HandleRecoveryCodes handles POST /2fa/recovery-codes
//
//	@Summary		Regenerate recovery codes
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		200		{object}	gatesdk.RecoveryCodesResponse	"New codes"
//	@Failure		400		{object}	gatesdk.MessageResponse			"Not enabled"
//	@Failure		401		{object}	gatesdk.MessageResponse			"Invalid 2FA token"
//	@Router			/2fa/recovery-codes [post].
func (h *TwoFactorHandler) HandleRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}
	var req gatesdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	codes, err := h.TwoFactor.RegenerateRecoveryCodes(r.Context(), c.Subject, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.RecoveryCodesResponse{
		Message:       "Recovery codes regenerated",
		RecoveryCodes: codes,
	})
}
