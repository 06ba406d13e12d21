package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/tokenbridge/internal/cache"
	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// MatchRequest describe un exchange a autorizar.
type MatchRequest struct {
	ClientID         string
	Subject          string // account id del subject token; vacío si no se determinó
	SubjectTokenType string
	Audience         string
	ActorPresent     bool
}

// Matcher encuentra la policy habilitada de mayor prioridad que autoriza
// un exchange. Es un scan lineal con short-circuit; la especificidad la
// expresa el administrador solo vía priority (más el desempate por
// created_at ascendente), no hay scoring.
type Matcher struct {
	policies repository.PolicyRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewMatcher crea el matcher. cache puede ser nil (sin caching).
func NewMatcher(policies repository.PolicyRepository, c cache.Cache, ttl time.Duration) *Matcher {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Matcher{policies: policies, cache: c, cacheTTL: ttl}
}

// FindApplicable retorna la primera policy (en orden de evaluación) cuyos
// cuatro predicados pasan, o nil si ninguna matchea.
func (m *Matcher) FindApplicable(ctx context.Context, req MatchRequest) (*repository.ExchangePolicy, error) {
	policies, err := m.enabledPolicies(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	for i := range policies {
		p := &policies[i]
		if matchSubject(p, req.Subject) &&
			matchTokenType(p, req.SubjectTokenType) &&
			matchAudience(p, req.Audience) &&
			matchActor(p, req.ActorPresent) {
			return p, nil
		}
	}
	return nil, nil
}

// Invalidate descarta la lista cacheada de un cliente. Debe llamarse en
// cada mutación administrativa de policies.
func (m *Matcher) Invalidate(clientID string) {
	if m.cache != nil {
		m.cache.Delete(policyCacheKey(clientID))
	}
}

func (m *Matcher) enabledPolicies(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	if m.cache != nil {
		if b, ok := m.cache.Get(policyCacheKey(clientID)); ok {
			var cached []repository.ExchangePolicy
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		}
	}

	policies, err := m.policies.ListEnabledByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if b, err := json.Marshal(policies); err == nil {
			m.cache.Set(policyCacheKey(clientID), b, m.cacheTTL)
		}
	}
	return policies, nil
}

func policyCacheKey(clientID string) string { return "xpolicy:" + clientID }

// ─── Predicados ───

// matchSubject: la policy acepta cualquier sujeto, o exige igualdad exacta.
// Una policy con sujeto fijo nunca matchea un request sin sujeto presentado.
func matchSubject(p *repository.ExchangePolicy, subject string) bool {
	if p.Subject == "" || p.Subject == repository.Wildcard {
		return true
	}
	return subject != "" && p.Subject == subject
}

// matchTokenType: lista vacía o con wildcard acepta cualquiera.
func matchTokenType(p *repository.ExchangePolicy, tokenType string) bool {
	if len(p.SubjectTokenTypes) == 0 || contains(p.SubjectTokenTypes, repository.Wildcard) {
		return true
	}
	return contains(p.SubjectTokenTypes, tokenType)
}

// matchAudience: lista vacía o con wildcard acepta cualquiera.
func matchAudience(p *repository.ExchangePolicy, audience string) bool {
	if len(p.Audiences) == 0 || contains(p.Audiences, repository.Wildcard) {
		return true
	}
	return contains(p.Audiences, audience)
}

// matchActor: si la policy exige actor token, debe haber uno presente.
// Si no lo exige, la presencia es irrelevante.
func matchActor(p *repository.ExchangePolicy, actorPresent bool) bool {
	return !p.ActorTokenRequired || actorPresent
}
