package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const signaturePrefix = "sha256="

var (
	ErrMissingSignature   = errors.New("missing X-Hub-Signature-256 header")
	ErrMalformedSignature = errors.New("invalid signature format, expected 'sha256=<hash>'")
	ErrSignatureMismatch  = errors.New("signature does not match payload")
)

// Verify checks an X-Hub-Signature-256 header against the HMAC-SHA256 of
// payload keyed with secret, in constant time.
func Verify(payload []byte, header, secret string) error {
	if header == "" {
		return ErrMissingSignature
	}
	received, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return ErrMalformedSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(received), []byte(expected)) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign returns the header value GitHub would send for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
