package gate_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/growersgate/gate/pkg/gatesdk"
)

// TestRegisterAndLogin covers the plain password flow for each user type.
func TestRegisterAndLogin(t *testing.T) {
	baseURL, cleanup := setupGateContainer(t)
	defer cleanup()

	client := gatesdk.NewSDKClient(baseURL)

	routes := map[string]string{
		"farmer":    "/farmer-dashboard",
		"customer":  "/user-dashboard",
		"community": "/community-dashboard",
	}
	for userType, route := range routes {
		t.Run(userType, func(t *testing.T) {
			email := userType + "@growers.io"
			registerUser(t, client, email, userType)

			session, resp, err := client.Login(t.Context(), email, userPassword, "")
			require.NoError(t, err)
			require.Equal(t, userType, resp.UserType)
			require.Equal(t, route, resp.DashboardRoute)

			dash, err := session.Dashboard(t.Context())
			require.NoError(t, err)
			require.Equal(t, userType, dash.Role)
		})
	}
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	baseURL, cleanup := setupGateContainer(t)
	defer cleanup()

	client := gatesdk.NewSDKClient(baseURL)
	registerUser(t, client, "jane@growers.io", "farmer")

	_, _, err := client.Register(t.Context(), gatesdk.RegisterRequest{
		FirstName: "Jane", LastName: "Doe", Email: "JANE@growers.io",
		Password: userPassword, UserType: "farmer",
	})
	assertStatus(t, err, http.StatusBadRequest, "Duplicate email")

	_, _, err = client.Register(t.Context(), gatesdk.RegisterRequest{
		FirstName: "J4ne", LastName: "Doe", Email: "temp@mailinator.com",
		Password: "weak", UserType: "admin",
	})
	assertStatus(t, err, http.StatusBadRequest, "Invalid registration")

	var apiErr *gatesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	fields := apiErr.FieldMessages()
	require.Contains(t, fields, "firstName")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")
	require.Contains(t, fields, "userType")
}

func TestLoginFailures(t *testing.T) {
	baseURL, cleanup := setupGateContainer(t)
	defer cleanup()

	client := gatesdk.NewSDKClient(baseURL)
	registerUser(t, client, "jane@growers.io", "farmer")

	_, _, err := client.Login(t.Context(), "jane@growers.io", "Wr0ng!Password", "")
	assertStatus(t, err, http.StatusUnauthorized, "Wrong password")

	_, _, err = client.Login(t.Context(), "nobody@growers.io", userPassword, "")
	assertStatus(t, err, http.StatusUnauthorized, "Unknown email")
}

// TestLogoutRevokesToken verifies that a logged out token is refused.
func TestLogoutRevokesToken(t *testing.T) {
	baseURL, cleanup := setupGateContainer(t)
	defer cleanup()

	client := gatesdk.NewSDKClient(baseURL)
	session, _ := registerUser(t, client, "jane@growers.io", "customer")
	token := session.Token()

	require.NoError(t, session.Logout(t.Context()))
	require.ErrorIs(t, session.Logout(t.Context()), gatesdk.ErrNoToken)

	_, err := client.NewSession(token).Dashboard(t.Context())
	assertStatus(t, err, http.StatusForbidden, "Revoked token")
}

// TestRefreshKeepsLongLivedToken verifies that a fresh token is not re-issued.
func TestRefreshKeepsLongLivedToken(t *testing.T) {
	baseURL, cleanup := setupGateContainer(t)
	defer cleanup()

	client := gatesdk.NewSDKClient(baseURL)
	session, _ := registerUser(t, client, "jane@growers.io", "farmer")
	before := session.Token()

	resp, err := session.Refresh(t.Context())
	require.NoError(t, err)
	require.False(t, resp.Refreshed)
	require.Equal(t, before, resp.Token)
	require.Equal(t, before, session.Token())
}
