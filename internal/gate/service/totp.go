package service

import (
	"bytes"
	"fmt"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/growersgate/gate/internal/gate/domain"
)

const (
	totpPeriod     = 30
	totpSkew       = 1
	totpSecretSize = 20 // 160 bits
	totpDigits     = otp.DigitsSix
)

var totpAlgorithm = otp.AlgorithmSHA1

// TOTP generates and checks RFC 6238 codes.
type TOTP struct {
	Issuer string // shown in authenticator apps
}

// GenerateSecret creates a new secret for account.
func (t *TOTP) GenerateSecret(account string) (domain.Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.Issuer,
		AccountName: account,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      totpDigits,
		Algorithm:   totpAlgorithm,
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("generate totp secret: %w", err)
	}
	return domain.Enrollment{Secret: key.Secret(), URI: key.URL()}, nil
}

// EnrollmentURI rebuilds the otpauth URI for a stored secret.
func (t *TOTP) EnrollmentURI(secret, account string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", t.Issuer)
	v.Set("algorithm", totpAlgorithm.String())
	v.Set("digits", totpDigits.String())
	v.Set("period", fmt.Sprint(totpPeriod))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + t.Issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// Verify accepts the code for the step containing at and one step either side.
func (t *TOTP) Verify(secret, code string, at time.Time) bool {
	code = strings.TrimSpace(code)
	if len(code) != totpDigits.Length() || strings.Trim(code, "0123456789") != "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    totpDigits,
		Algorithm: totpAlgorithm,
	})
	return err == nil && ok
}

// QRCode renders the enrollment URI as a size x size PNG.
func (t *TOTP) QRCode(secret, account string, size int) ([]byte, error) {
	key, err := otp.NewKeyFromURL(t.EnrollmentURI(secret, account))
	if err != nil {
		return nil, fmt.Errorf("parse otpauth uri: %w", err)
	}
	img, err := key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
