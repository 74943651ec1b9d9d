package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerToken extracts the token from an Authorization header, or "" when
// the header is absent or malformed.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// FacilitatorKey extracts the facilitator key header.
func FacilitatorKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Facilitator-Key"))
}

// Equal compares two secrets in constant time.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
