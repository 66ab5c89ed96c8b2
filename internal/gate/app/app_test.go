package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/growersgate/gate/pkg/gatesdk"
	"github.com/growersgate/gate/pkg/jwtx"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Issuer:               "growers-gate-test",
		JWTSecret:            strings.Repeat("s", jwtx.MinSecretBytes),
		JWTKeyID:             "test-1",
		TOTPIssuer:           "Growers Gate",
		DatabaseFile:         filepath.Join(dir, "gate.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		SessionState:         SessionStateSQLite,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func startApp(t *testing.T, cfg Config) (*Application, *gatesdk.SDKClient) {
	t.Helper()
	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.closeStores() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)
	return application, gatesdk.NewSDKClient(srv.URL)
}

func register(t *testing.T, client *gatesdk.SDKClient) *gatesdk.Session {
	t.Helper()
	sess, resp, err := client.Register(t.Context(), gatesdk.RegisterRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@ok.com",
		Password:  "Str0ng!Passw0rd",
		UserType:  "farmer",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.TwoFactorSetup.Secret)
	return sess
}

func TestApplication_SQLiteSessionState(t *testing.T) {
	_, client := startApp(t, testConfig(t))

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.SessionState)

	sess := register(t, client)
	dash, err := sess.Dashboard(t.Context())
	require.NoError(t, err)
	require.Equal(t, "farmer", dash.Role)

	stale := sess.Token()
	require.NoError(t, sess.Logout(t.Context()))

	_, err = client.NewSession(stale).Dashboard(t.Context())
	require.True(t, gatesdk.IsStatus(err, http.StatusForbidden), "got %v", err)
}

func TestApplication_RedisSessionState(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.SessionState = SessionStateRedis
	cfg.RedisAddr = mr.Addr()
	application, client := startApp(t, cfg)
	require.NotNil(t, application.state)

	sess := register(t, client)
	stale := sess.Token()
	require.NoError(t, sess.Logout(t.Context()))

	var revoked []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "gate:revoked:") {
			revoked = append(revoked, k)
		}
	}
	require.Len(t, revoked, 1)

	_, err := client.NewSession(stale).Dashboard(t.Context())
	require.True(t, gatesdk.IsStatus(err, http.StatusForbidden), "got %v", err)

	// readiness follows the redis connection
	mr.SetError("LOADING redis is loading the dataset in memory")
	_, err = client.GetReadiness(t.Context())
	require.True(t, gatesdk.IsStatus(err, http.StatusServiceUnavailable), "got %v", err)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	t.Run("redis without address", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SessionState = SessionStateRedis
		_, err := New(cfg)
		require.ErrorContains(t, err, "REDIS_ADDR")
	})

	t.Run("unknown session state", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SessionState = "memcached"
		_, err := New(cfg)
		require.ErrorContains(t, err, "memcached")
	})

	t.Run("weak secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.JWTSecret = "short"
		_, err := New(cfg)
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})

	t.Run("unparsable trusted proxy", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.TrustedProxies = []string{"10.0.0.0/8", "lb.internal"}
		_, err := New(cfg)
		require.ErrorContains(t, err, "TRUSTED_PROXIES")
	})
}
