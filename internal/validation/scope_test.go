package validation

import "testing"

func TestValidScopeName_Valid(t *testing.T) {
	valids := []string{
		"a",
		"ab",
		"profile",
		"profile:read",
		"exchange:perform",
		"a_b-c.d:scope2",
		// 64 chars (start/end alnum)
		mkLen("a", 62) + "b",
	}
	for _, v := range valids {
		if !ValidScopeName(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidScopeName_Invalid(t *testing.T) {
	invalids := []string{
		"",               // empty
		":lead",          // starts with non-alnum
		"trail:",         // ends with non-alnum
		"bad space",      // space
		"UPPER",          // uppercase
		"semicolon;hack", // semicolon
		mkLen("a", 65),   // > 64
	}
	for _, v := range invalids {
		if ValidScopeName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidTokenTypeURI(t *testing.T) {
	if !ValidTokenTypeURI("urn:ietf:params:oauth:token-type:access_token") {
		t.Fatal("urn form should be valid")
	}
	if !ValidTokenTypeURI("https://example.com/token-type") {
		t.Fatal("url form should be valid")
	}
	for _, v := range []string{"", "access_token", "urn with space"} {
		if ValidTokenTypeURI(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidAudience(t *testing.T) {
	if !ValidAudience("https://api.example.com") || !ValidAudience("billing-api") {
		t.Fatal("expected valid audiences")
	}
	if ValidAudience("") || ValidAudience("two words") {
		t.Fatal("expected invalid audiences")
	}
}

// mkLen builds a string of exactly n characters starting with prefix,
// padded with 'a'.
func mkLen(prefix string, total int) string {
	if total <= len(prefix) {
		return prefix[:total]
	}
	out := make([]byte, total)
	copy(out, []byte(prefix))
	for i := len(prefix); i < total; i++ {
		out[i] = 'a'
	}
	return string(out)
}
