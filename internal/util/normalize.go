package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail canonicalizes a login email before it is sent to the auth
// endpoint: Unicode NFKC normalization, trimmed whitespace, lower case.
// The backend matches emails case-insensitively; normalizing on the client
// keeps retries and logged identifiers stable.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
