package validation

import (
	"regexp"
	"strings"
)

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
// - Excludes semicolon and whitespace explicitly.
//
// Examples valid: profile, profile:read, exchange:perform, a_b-c.d:scope2
// Examples invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName returns true if the provided scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidAudience accepts non-empty values without whitespace. Audiences are
// usually URIs or client ids; we do not force a URI parse so plain
// identifiers keep working.
func ValidAudience(aud string) bool {
	if aud == "" || len(aud) > 512 {
		return false
	}
	return !strings.ContainsAny(aud, " \t\r\n")
}

// ValidTokenTypeURI accepts RFC 8693 token type identifiers: absolute URNs
// or URLs, no whitespace.
func ValidTokenTypeURI(tt string) bool {
	if tt == "" || len(tt) > 256 || strings.ContainsAny(tt, " \t\r\n") {
		return false
	}
	return strings.HasPrefix(tt, "urn:") || strings.Contains(tt, "://")
}
