package payment

import (
	"crypto/sha256"
	"crypto/subtle"
)

// SignatureHeader carries the shared webhook secret on gateway deliveries.
const SignatureHeader = "verif-hash"

// Authenticate checks a webhook signature against the configured secret.
// An empty secret accepts every delivery.
func Authenticate(signature, secret string) bool {
	if secret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	// Comparing digests keeps the compare length-independent.
	got := sha256.Sum256([]byte(signature))
	want := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(got[:], want[:]) == 1
}
