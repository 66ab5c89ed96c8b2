package gatesdk_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/growersgate/gate/pkg/gatesdk"
)

// signed returns an HS256 token expiring after ttl. The SDK never verifies
// signatures, so the key does not matter.
func signed(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}).SignedString([]byte("sdk-test-key-sdk-test-key-sdk-te"))
	require.NoError(t, err)
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_ChallengeRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gatesdk.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case r.URL.Path == "/login" && req.TwoFactorToken == "":
			writeJSON(w, http.StatusAccepted, gatesdk.ChallengeResponse{
				Message: "2FA verification required", TwoFactorRequired: true, Token: "challenge-token",
			})
		case r.URL.Path == "/login":
			writeJSON(w, http.StatusOK, gatesdk.LoginResponse{Token: "session-token", UserType: "farmer"})
		case r.URL.Path == "/verify-2fa":
			require.Equal(t, "Bearer challenge-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, gatesdk.LoginResponse{Token: "session-token", UserType: "farmer"})
		}
	}))
	defer srv.Close()

	client := gatesdk.NewSDKClient(srv.URL + "/")

	_, _, err := client.Login(t.Context(), "jane@ok.com", "pw", "")
	var challenge *gatesdk.ChallengeRequiredError
	require.True(t, errors.As(err, &challenge))
	require.Equal(t, "challenge-token", challenge.Token)

	session, resp, err := client.CompleteTwoFactor(t.Context(), challenge, "123456")
	require.NoError(t, err)
	require.Equal(t, "farmer", resp.UserType)
	require.Equal(t, "session-token", session.Token())
	require.True(t, session.ExpiresAt().IsZero(), "opaque tokens have no known expiry")

	session, _, err = client.Login(t.Context(), "jane@ok.com", "pw", "123456")
	require.NoError(t, err)
	require.Equal(t, "session-token", session.Token())
}

func TestAPIError_ValidationFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Message: "Validation failed",
			Errors: []gatesdk.FieldError{
				{Field: "password", Msg: "too short"},
				{Field: "password", Msg: "needs a digit"},
				{Field: "email", Msg: "Valid email is required"},
			},
		})
	}))
	defer srv.Close()

	_, _, err := gatesdk.NewSDKClient(srv.URL).Register(t.Context(), gatesdk.RegisterRequest{})
	require.True(t, gatesdk.IsStatus(err, http.StatusBadRequest))

	var apiErr *gatesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Validation failed", apiErr.Message)
	require.Equal(t, map[string][]string{
		"password": {"too short", "needs a digit"},
		"email":    {"Valid email is required"},
	}, apiErr.FieldMessages())
	require.Contains(t, apiErr.Error(), "email: Valid email is required")
}

func TestAPIError_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := gatesdk.NewSDKClient(srv.URL).GetLiveness(t.Context())
	var apiErr *gatesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "upstream down", apiErr.Message)
}

func TestSession_RefreshesBeforeExpiry(t *testing.T) {
	nearExpiry := signed(t, "user-1", 30*time.Second)
	fresh := signed(t, "user-1", time.Hour)
	var refreshes atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/refresh-token":
			require.Equal(t, "Bearer "+nearExpiry, r.Header.Get("Authorization"))
			refreshes.Add(1)
			writeJSON(w, http.StatusOK, gatesdk.RefreshResponse{
				Token: fresh, Refreshed: true, ExpiresAt: time.Now().Add(time.Hour),
			})
		case "/dashboard":
			require.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, gatesdk.DashboardResponse{Message: "Welcome", Role: "farmer", UserID: "user-1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	session := gatesdk.NewSDKClient(srv.URL).NewSession(nearExpiry)
	require.WithinDuration(t, time.Now().Add(30*time.Second), session.ExpiresAt(), 2*time.Second)

	for range 3 {
		dash, err := session.Dashboard(t.Context())
		require.NoError(t, err)
		require.Equal(t, "user-1", dash.UserID)
	}
	require.Equal(t, int32(1), refreshes.Load())
	require.Equal(t, fresh, session.Token())
}

func TestSession_Logout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logout", r.URL.Path)
		writeJSON(w, http.StatusOK, gatesdk.MessageResponse{Message: "Logged out successfully"})
	}))
	defer srv.Close()

	session := gatesdk.NewSDKClient(srv.URL).NewSession(signed(t, "user-1", time.Hour))
	require.NoError(t, session.Logout(t.Context()))
	require.Empty(t, session.Token())

	require.ErrorIs(t, session.Logout(t.Context()), gatesdk.ErrNoToken)
	_, err := session.Dashboard(t.Context())
	require.ErrorIs(t, err, gatesdk.ErrNoToken)
}

func TestBootstrap_SendsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bootstrap", r.URL.Path)
		if r.Header.Get("X-Bootstrap-Token") != "let-me-in" {
			writeJSON(w, http.StatusUnauthorized, gatesdk.ErrorResponse{Message: "Invalid bootstrap token"})
			return
		}
		writeJSON(w, http.StatusCreated, gatesdk.BootstrapResponse{Message: "Admin account created", UserID: "admin-1"})
	}))
	defer srv.Close()

	client := gatesdk.NewSDKClient(srv.URL)

	_, err := client.Bootstrap(t.Context(), "nope", gatesdk.BootstrapRequest{})
	require.True(t, gatesdk.IsStatus(err, http.StatusUnauthorized))

	resp, err := client.Bootstrap(t.Context(), "let-me-in", gatesdk.BootstrapRequest{})
	require.NoError(t, err)
	require.Equal(t, "admin-1", resp.UserID)
}
