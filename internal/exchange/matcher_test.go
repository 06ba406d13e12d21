package exchange_test

import (
	"context"
	"testing"
	"time"

	memcache "github.com/dropDatabas3/tokenbridge/internal/cache/memory"
	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/exchange"
)

// fakePolicyRepo sirve una lista fija ya ordenada (como haría el store:
// priority DESC, created_at ASC) y cuenta las lecturas.
type fakePolicyRepo struct {
	repository.PolicyRepository
	policies []repository.ExchangePolicy
	calls    int
}

func (f *fakePolicyRepo) ListEnabledByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	f.calls++
	var out []repository.ExchangePolicy
	for _, p := range f.policies {
		if p.ClientID == clientID && p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	repo := &fakePolicyRepo{policies: []repository.ExchangePolicy{
		{ID: "p-high", ClientID: "c1", Priority: 10, Audiences: []string{"api-a"}, Enabled: true},
		{ID: "p-low", ClientID: "c1", Priority: 1, Enabled: true},
	}}
	m := exchange.NewMatcher(repo, nil, time.Second)

	got, err := m.FindApplicable(context.Background(), exchange.MatchRequest{
		ClientID: "c1", Audience: "api-a", SubjectTokenType: "urn:x",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != "p-high" {
		t.Fatalf("matched %+v, want p-high", got)
	}

	// Audiencia que solo matchea la policy genérica de menor prioridad.
	got, err = m.FindApplicable(context.Background(), exchange.MatchRequest{
		ClientID: "c1", Audience: "api-b", SubjectTokenType: "urn:x",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != "p-low" {
		t.Fatalf("matched %+v, want p-low", got)
	}
}

func TestMatcher_NoMatchReturnsNil(t *testing.T) {
	repo := &fakePolicyRepo{policies: []repository.ExchangePolicy{
		{ID: "p1", ClientID: "c1", Priority: 1, Audiences: []string{"api-a"}, Enabled: true},
	}}
	m := exchange.NewMatcher(repo, nil, time.Second)

	got, err := m.FindApplicable(context.Background(), exchange.MatchRequest{
		ClientID: "c1", Audience: "api-z",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil match, got %+v", got)
	}
}

func TestMatcher_Predicates(t *testing.T) {
	base := repository.ExchangePolicy{ID: "p", ClientID: "c1", Enabled: true}

	cases := []struct {
		name  string
		tweak func(*repository.ExchangePolicy)
		req   exchange.MatchRequest
		match bool
	}{
		{
			name:  "fixed subject requires equality",
			tweak: func(p *repository.ExchangePolicy) { p.Subject = "user-1" },
			req:   exchange.MatchRequest{ClientID: "c1", Subject: "user-2"},
			match: false,
		},
		{
			name:  "fixed subject never matches empty subject",
			tweak: func(p *repository.ExchangePolicy) { p.Subject = "user-1" },
			req:   exchange.MatchRequest{ClientID: "c1"},
			match: false,
		},
		{
			name:  "wildcard subject matches anyone",
			tweak: func(p *repository.ExchangePolicy) { p.Subject = repository.Wildcard },
			req:   exchange.MatchRequest{ClientID: "c1", Subject: "user-9"},
			match: true,
		},
		{
			name:  "token type list restricts",
			tweak: func(p *repository.ExchangePolicy) { p.SubjectTokenTypes = []string{"urn:a"} },
			req:   exchange.MatchRequest{ClientID: "c1", SubjectTokenType: "urn:b"},
			match: false,
		},
		{
			name:  "token type wildcard accepts any",
			tweak: func(p *repository.ExchangePolicy) { p.SubjectTokenTypes = []string{repository.Wildcard} },
			req:   exchange.MatchRequest{ClientID: "c1", SubjectTokenType: "urn:b"},
			match: true,
		},
		{
			name:  "actor required rejects absent actor",
			tweak: func(p *repository.ExchangePolicy) { p.ActorTokenRequired = true },
			req:   exchange.MatchRequest{ClientID: "c1"},
			match: false,
		},
		{
			name:  "actor required passes with actor",
			tweak: func(p *repository.ExchangePolicy) { p.ActorTokenRequired = true },
			req:   exchange.MatchRequest{ClientID: "c1", ActorPresent: true},
			match: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.tweak(&p)
			m := exchange.NewMatcher(&fakePolicyRepo{policies: []repository.ExchangePolicy{p}}, nil, time.Second)
			got, err := m.FindApplicable(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if (got != nil) != tc.match {
				t.Fatalf("match = %v, want %v", got != nil, tc.match)
			}
		})
	}
}

func TestMatcher_CacheAndInvalidate(t *testing.T) {
	repo := &fakePolicyRepo{policies: []repository.ExchangePolicy{
		{ID: "p1", ClientID: "c1", Priority: 1, Enabled: true},
	}}
	m := exchange.NewMatcher(repo, memcache.New(time.Minute), time.Minute)
	req := exchange.MatchRequest{ClientID: "c1"}

	for i := 0; i < 3; i++ {
		if _, err := m.FindApplicable(context.Background(), req); err != nil {
			t.Fatalf("find: %v", err)
		}
	}
	if repo.calls != 1 {
		t.Fatalf("repo hit %d times, want 1 (cached)", repo.calls)
	}

	m.Invalidate("c1")
	if _, err := m.FindApplicable(context.Background(), req); err != nil {
		t.Fatalf("find after invalidate: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("repo hit %d times after invalidate, want 2", repo.calls)
	}
}
