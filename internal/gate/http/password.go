package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/httpx"
)

// PasswordHandler serves the forgotten and changed password routes.
type PasswordHandler struct {
	Passwords *service.PasswordService

	// HideUnknownEmail answers /forgot-password for unknown addresses with
	// the same 200 as for known ones, minus the token.
	HideUnknownEmail bool
}

// HandleForgot handles POST /forgot-password
//
//	@Summary		Request a password reset token
//	@Description	Issues a single use reset token valid for one hour. Earlier tokens for the account stop working. No mail is sent; the token is returned.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	gatesdk.ForgotPasswordResponse	"Token issued"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"Missing email"
//	@Failure		404		{object}	gatesdk.MessageResponse			"User not found"
//	@Router			/forgot-password [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		verr := &service.ValidationError{}
		verr.Add("email", "Valid email is required")
		writeError(w, r, verr)
		return
	}

	res, err := h.Passwords.RequestReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) && h.HideUnknownEmail {
			httpx.WriteJSON(w, http.StatusOK, gatesdk.ForgotPasswordResponse{
				Message: "If the account exists a reset token has been issued",
			})
			return
		}
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatesdk.ForgotPasswordResponse{
		Message:    "Password reset token issued",
		ResetToken: res.Token,
	})
}

// HandleReset handles POST /reset-password
//
//	@Summary		Reset a password
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.ResetPasswordRequest	true	"Reset token and new password"
//	@Success		200		{object}	gatesdk.MessageResponse			"Password reset"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"Invalid, expired or used token, or weak password"
//	@Router			/reset-password [post].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Passwords.CompleteReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Password has been reset successfully")
}

// HandleChange handles POST /change-password
//
//	@Summary		Change the password of the signed in user
//	@Tags			Password
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	gatesdk.MessageResponse			"Password changed"
//	@Failure		400		{object}	gatesdk.ErrorResponse			"Weak or unchanged password"
//	@Failure		401		{object}	gatesdk.MessageResponse			"Current password is incorrect"
//	@Failure		403		{object}	gatesdk.MessageResponse			"Invalid token"
//	@Router			/change-password [post].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	var req gatesdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Passwords.ChangePassword(r.Context(), c.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Password changed successfully")
}
