package exchange

import "strings"

// splitScopes parte un scope string space-delimited en sus nombres,
// descartando duplicados y preservando el orden de aparición.
func splitScopes(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, sc := range strings.Fields(s) {
		if !seen[sc] {
			seen[sc] = true
			out = append(out, sc)
		}
	}
	return out
}

// scopesOutside retorna los scopes de requested que no están en allowed.
func scopesOutside(requested, allowed []string) []string {
	set := map[string]bool{}
	for _, sc := range allowed {
		set[sc] = true
	}
	var out []string
	for _, sc := range requested {
		if !set[sc] {
			out = append(out, sc)
		}
	}
	return out
}

// scopesIntersect retorna los scopes de requested que sí están en allowed,
// en el orden de requested.
func scopesIntersect(requested, allowed []string) []string {
	set := map[string]bool{}
	for _, sc := range allowed {
		set[sc] = true
	}
	var out []string
	for _, sc := range requested {
		if set[sc] {
			out = append(out, sc)
		}
	}
	return out
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}
