package service_test

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/growersgate/gate/internal/gate/service"
)

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestTOTP_GenerateSecret(t *testing.T) {
	engine := &service.TOTP{Issuer: "Growers Gate"}
	enr, err := engine.GenerateSecret("jane@ok.com")
	require.NoError(t, err)

	// 20 bytes of base32 without padding
	require.Len(t, enr.Secret, 32)
	require.True(t, strings.HasPrefix(enr.URI, "otpauth://totp/"))
	require.Contains(t, enr.URI, "secret="+enr.Secret)

	other, err := engine.GenerateSecret("jane@ok.com")
	require.NoError(t, err)
	require.NotEqual(t, enr.Secret, other.Secret)
}

func TestTOTP_VerifyDriftWindow(t *testing.T) {
	engine := &service.TOTP{Issuer: "Growers Gate"}
	enr, err := engine.GenerateSecret("jane@ok.com")
	require.NoError(t, err)

	// 5s into a step so neighbouring steps are unambiguous
	at := time.Unix(1_700_000_010, 0)
	code := codeAt(t, enr.Secret, at)

	require.True(t, engine.Verify(enr.Secret, code, at))
	require.True(t, engine.Verify(enr.Secret, code, at.Add(30*time.Second)))
	require.True(t, engine.Verify(enr.Secret, code, at.Add(-30*time.Second)))
	require.False(t, engine.Verify(enr.Secret, code, at.Add(90*time.Second)))
	require.False(t, engine.Verify(enr.Secret, code, at.Add(-90*time.Second)))
}

func TestTOTP_RejectsMalformedCodes(t *testing.T) {
	engine := &service.TOTP{Issuer: "Growers Gate"}
	enr, err := engine.GenerateSecret("jane@ok.com")
	require.NoError(t, err)

	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
		require.False(t, engine.Verify(enr.Secret, code, now), code)
	}
	// surrounding whitespace is tolerated
	require.True(t, engine.Verify(enr.Secret, " "+codeAt(t, enr.Secret, now)+" ", now))
}

func TestTOTP_EnrollmentURIAndQRCode(t *testing.T) {
	engine := &service.TOTP{Issuer: "Growers Gate"}
	enr, err := engine.GenerateSecret("jane@ok.com")
	require.NoError(t, err)

	key, err := otp.NewKeyFromURL(engine.EnrollmentURI(enr.Secret, "jane@ok.com"))
	require.NoError(t, err)
	require.Equal(t, enr.Secret, key.Secret())
	require.Equal(t, "Growers Gate", key.Issuer())
	require.Equal(t, "jane@ok.com", key.AccountName())

	img, err := engine.QRCode(enr.Secret, "jane@ok.com", 200)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(img))
	require.NoError(t, err)
	require.Equal(t, 200, decoded.Bounds().Dx())
}
