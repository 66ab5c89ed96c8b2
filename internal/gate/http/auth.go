package http

import (
	"net/http"

	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/httpx"
)

// AuthHandler serves registration, login and the session lifecycle.
type AuthHandler struct {
	Auth   *service.AuthService
	Tokens *service.TokenService
}

// HandleRegister handles POST /register
//
//	@Summary		Register a new account
//	@Description	Creates a farmer, customer or community account and returns a session token together with the TOTP enrollment data. 2FA stays disabled until /2fa/enable is called.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.RegisterRequest		true	"Account details"
//	@Success		201		{object}	gatesdk.RegisterResponse	"Account created"
//	@Failure		400		{object}	gatesdk.ErrorResponse		"Validation failed or user already exists"
//	@Failure		429		{object}	gatesdk.MessageResponse		"Rate limited"
//	@Router			/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Auth.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		UserType:  req.UserType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatesdk.RegisterResponse{
		Message:  "User registered successfully",
		UserID:   res.User.ID,
		Token:    res.Token,
		UserType: res.User.Role.String(),
		TwoFactorSetup: gatesdk.TwoFactorEnrollment{
			QRCodeURL: res.Enrollment.URI,
			Secret:    res.Enrollment.Secret,
		},
	})
}

// HandleLogin handles POST /login
//
//	@Summary		Log in with email and password
//	@Description	Returns a session token. Accounts with 2FA enabled get 202 and a challenge token unless twoFactorToken carries a valid code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	gatesdk.LoginResponse		"Logged in"
//	@Success		202		{object}	gatesdk.ChallengeResponse	"Second factor required"
//	@Failure		400		{object}	gatesdk.MessageResponse		"Malformed body"
//	@Failure		401		{object}	gatesdk.MessageResponse		"Invalid credentials or 2FA code"
//	@Failure		429		{object}	gatesdk.MessageResponse		"Too many login attempts"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Auth.Login(r.Context(), service.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		TwoFactorCode: req.TwoFactorToken,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if res.ChallengeRequired {
		httpx.WriteJSON(w, http.StatusAccepted, gatesdk.ChallengeResponse{
			Message:           "2FA verification required",
			TwoFactorRequired: true,
			Token:             res.Token,
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse("Login successful", res))
}

// HandleVerifyTwoFactor handles POST /verify-2fa
//
//	@Summary		Complete a login with a TOTP code
//	@Description	Exchanges a challenge token and a valid code for a session token with the 2fa claim set. Five wrong codes revoke the challenge.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		200		{object}	gatesdk.LoginResponse			"Verified"
//	@Failure		401		{object}	gatesdk.MessageResponse			"Invalid 2FA token"
//	@Failure		403		{object}	gatesdk.MessageResponse			"Invalid token"
//	@Failure		404		{object}	gatesdk.MessageResponse			"User not found"
//	@Router			/verify-2fa [post].
func (h *AuthHandler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	var req gatesdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Auth.VerifyTwoFactor(r.Context(), c, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse("2FA verified successfully", res))
}

// HandleVerifyRecovery handles POST /verify-2fa/recovery
//
//	@Summary		Complete a login with a recovery code
//	@Description	Like /verify-2fa but consumes one of the single use recovery codes. The email must match the token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.RecoveryRequest		true	"Email and recovery code"
//	@Success		200		{object}	gatesdk.RecoveryResponse	"Verified"
//	@Failure		401		{object}	gatesdk.MessageResponse		"Invalid recovery code"
//	@Failure		403		{object}	gatesdk.MessageResponse		"Invalid token"
//	@Failure		404		{object}	gatesdk.MessageResponse		"User not found"
//	@Router			/verify-2fa/recovery [post].
func (h *AuthHandler) HandleVerifyRecovery(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	var req gatesdk.RecoveryRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Auth.VerifyTwoFactorRecovery(r.Context(), c, req.Email, req.RecoveryCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.RecoveryResponse{
		LoginResponse:          loginResponse("Recovery code accepted", res.AuthResult),
		RemainingRecoveryCodes: res.RemainingCodes,
	})
}

// HandleLogout handles POST /logout
//
//	@Summary		Log out
//	@Description	Revokes the presented token until it would have expired.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	gatesdk.MessageResponse	"Logged out"
//	@Failure		401	{object}	gatesdk.MessageResponse	"Authorization header missing"
//	@Failure		403	{object}	gatesdk.MessageResponse	"Invalid token"
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}
	if err := h.Tokens.Revoke(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// HandleRefresh handles POST /refresh-token
//
//	@Summary		Refresh a session token
//	@Description	Returns the same token while more than the refresh threshold is left, otherwise a new token with the same identity. The old token is revoked.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	gatesdk.RefreshResponse	"Current token"
//	@Failure		401	{object}	gatesdk.MessageResponse	"Authorization header missing"
//	@Failure		403	{object}	gatesdk.MessageResponse	"Invalid token"
//	@Router			/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	res, err := h.Tokens.Refresh(r.Context(), httpx.TokenFromContext(r.Context()), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.RefreshResponse{
		Token:     res.Token,
		Refreshed: res.Refreshed,
		ExpiresAt: res.ExpiresAt.UTC(),
	})
}

// HandleDashboard handles GET /dashboard
//
//	@Summary		Role specific dashboard
//	@Tags			Dashboard
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	gatesdk.DashboardResponse	"Dashboard payload"
//	@Failure		401	{object}	gatesdk.MessageResponse		"Authorization header missing"
//	@Failure		403	{object}	gatesdk.MessageResponse		"Invalid token or access denied"
//	@Router			/dashboard [get].
func (h *AuthHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsOrForbid(w, r)
	if !ok {
		return
	}

	v, err := h.Auth.Dashboard(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.DashboardResponse{
		Message: v.Message,
		Role:    v.Role.String(),
		UserID:  v.UserID,
		Email:   v.Email,
		Widgets: v.Widgets,
	})
}

func loginResponse(msg string, res service.AuthResult) gatesdk.LoginResponse {
	return gatesdk.LoginResponse{
		Token:          res.Token,
		Message:        msg,
		UserType:       res.User.Role.String(),
		DashboardRoute: res.DashboardRoute,
	}
}
