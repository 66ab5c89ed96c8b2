package http

import (
	"errors"
	"net/http"

	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/httpx"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

const (
	msgValidation   = "Validation failed"
	msgBadJSON      = "Request body must be valid JSON"
	msgInvalidToken = "Invalid token"
	msgInternal     = "Internal server error"
)

// writeError maps a service error to its status and body. Unknown errors are
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fields := make([]gatesdk.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = gatesdk.FieldError{Field: f.Field, Msg: f.Msg}
		}
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{Message: msgValidation, Errors: fields})
		return
	}

	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}
	httpx.WriteMessage(w, status, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, httpx.ErrBadJSON):
		return http.StatusBadRequest, msgBadJSON
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, service.ErrTwoFactorEnabled):
		return http.StatusBadRequest, "2FA is already enabled"
	case errors.Is(err, service.ErrTwoFactorNotEnabled):
		return http.StatusBadRequest, "2FA is not enabled"

	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrInvalidTwoFactor):
		return http.StatusUnauthorized, "Invalid 2FA token"
	case errors.Is(err, service.ErrInvalidRecoveryCode):
		return http.StatusUnauthorized, "Invalid recovery code"
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusUnauthorized, "Too many failed 2FA attempts, please log in again"
	case errors.Is(err, service.ErrTooManyLoginAttempts):
		return http.StatusTooManyRequests, "Too many failed login attempts, please try again later"
	case errors.Is(err, service.ErrWrongCurrentPassword):
		return http.StatusUnauthorized, "Current password is incorrect"
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		return http.StatusUnauthorized, "Invalid bootstrap token"

	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden, msgInvalidToken

	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrBootstrapDisabled):
		return http.StatusNotFound, "Bootstrap endpoint is not enabled"

	case errors.Is(err, service.ErrBootstrapAlready):
		return http.StatusConflict, "System has already been bootstrapped"
	}
	return http.StatusInternalServerError, msgInternal
}

// claimsOrForbid fetches the claims placed by AuthnMiddleware.
func claimsOrForbid(w http.ResponseWriter, r *http.Request) (c jwtx.Claims, ok bool) {
	c, ok = httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusForbidden, msgInvalidToken)
	}
	return c, ok
}
