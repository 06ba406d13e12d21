package exchange

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

func TestSplitScopes(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"read", []string{"read"}},
		{"read write", []string{"read", "write"}},
		{"read  write\tread", []string{"read", "write"}},
	}
	for _, tc := range cases {
		if got := splitScopes(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitScopes(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNarrowScopes(t *testing.T) {
	policy := func(scopes ...string) *repository.ExchangePolicy {
		return &repository.ExchangePolicy{Scopes: scopes}
	}

	cases := []struct {
		name         string
		scopeParam   string
		subjectScope string
		policy       *repository.ExchangePolicy
		want         []string
		wantOffender []string
	}{
		{
			name:         "absent scope inherits subject scopes",
			subjectScope: "read write",
			policy:       policy(),
			want:         []string{"read", "write"},
		},
		{
			name:         "absent scope silently filtered by allow-list",
			subjectScope: "read write admin",
			policy:       policy("read", "write"),
			want:         []string{"read", "write"},
		},
		{
			name:         "absent scope fully filtered yields empty grant",
			subjectScope: "admin",
			policy:       policy("read"),
			want:         nil,
		},
		{
			name:         "explicit subset passes",
			scopeParam:   "read",
			subjectScope: "read write",
			policy:       policy("read", "write"),
			want:         []string{"read"},
		},
		{
			name:         "explicit beyond subject is hard error",
			scopeParam:   "read admin",
			subjectScope: "read write",
			policy:       policy(),
			wantOffender: []string{"admin"},
		},
		{
			name:         "explicit beyond allow-list is hard error",
			scopeParam:   "read write",
			subjectScope: "read write",
			policy:       policy("read"),
			wantOffender: []string{"write"},
		},
		{
			name:         "wildcard allow-list does not restrict",
			scopeParam:   "read write",
			subjectScope: "read write",
			policy:       policy(repository.Wildcard),
			want:         []string{"read", "write"},
		},
		{
			name:         "subject check runs before allow-list check",
			scopeParam:   "admin",
			subjectScope: "read",
			policy:       policy("admin"),
			wantOffender: []string{"admin"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := narrowScopes(tc.scopeParam, tc.subjectScope, tc.policy)
			if tc.wantOffender != nil {
				var se *ScopeError
				if !errors.As(err, &se) {
					t.Fatalf("want ScopeError, got %v", err)
				}
				if !reflect.DeepEqual(se.Scopes, tc.wantOffender) {
					t.Fatalf("offending scopes = %v, want %v", se.Scopes, tc.wantOffender)
				}
				if !errors.Is(err, ErrInvalidScope) {
					t.Fatal("ScopeError must unwrap to ErrInvalidScope")
				}
				return
			}
			if err != nil {
				t.Fatalf("narrowScopes: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("granted = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrInvalidRequest, "invalid_request"},
		{ErrInvalidClient, "invalid_client"},
		{ErrInvalidGrant, "invalid_grant"},
		{ErrInvalidTarget, "invalid_target"},
		{&ScopeError{Scopes: []string{"admin"}}, "invalid_scope"},
		{errors.New("boom"), "server_error"},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
