package validation

import (
	"fmt"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// PolicyInput valida un input de policy de exchange antes de persistirlo.
// El wildcard "*" se acepta solo como entrada única de una lista.
func PolicyInput(in repository.ExchangePolicyInput) error {
	if in.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if in.Priority < 0 {
		return fmt.Errorf("priority must be >= 0")
	}
	if err := wildcardOrEach(in.Audiences, "audiences", ValidAudience); err != nil {
		return err
	}
	if err := wildcardOrEach(in.Scopes, "scopes", ValidScopeName); err != nil {
		return err
	}
	if err := wildcardOrEach(in.SubjectTokenTypes, "subject_token_types", ValidTokenTypeURI); err != nil {
		return err
	}
	return nil
}

func wildcardOrEach(values []string, field string, valid func(string) bool) error {
	for _, v := range values {
		if v == repository.Wildcard {
			if len(values) > 1 {
				return fmt.Errorf("%s: wildcard must be the only entry", field)
			}
			continue
		}
		if !valid(v) {
			return fmt.Errorf("%s: invalid value %q", field, v)
		}
	}
	return nil
}
