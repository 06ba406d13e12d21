package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/metrics"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
)

// HandlerDeps contiene las dependencias del grant handler.
type HandlerDeps struct {
	Reader  oidc.TokenReader
	Issuer  oidc.TokenIssuer
	Matcher *Matcher
	Events  repository.EventRepository
}

// Handler implementa el grant de token exchange (delegación/impersonación):
// acepta un subject_token y opcionalmente un actor_token, y emite un
// access_token nuevo de scope igual o más angosto. Se registra en el
// runtime como grant type adicional; no guarda estado propio más allá del
// audit event.
type Handler struct {
	reader  oidc.TokenReader
	issuer  oidc.TokenIssuer
	matcher *Matcher
	events  repository.EventRepository
}

// NewHandler crea el grant handler.
func NewHandler(d HandlerDeps) *Handler {
	return &Handler{
		reader:  d.Reader,
		issuer:  d.Issuer,
		matcher: d.Matcher,
		events:  d.Events,
	}
}

// GrantType retorna el identificador RFC 8693 del grant.
func (h *Handler) GrantType() string { return oidc.GrantTypeTokenExchange }

// Params retorna los parámetros de request que el handler acepta.
func (h *Handler) Params() []string {
	return []string{
		"subject_token", "subject_token_type",
		"actor_token", "actor_token_type",
		"requested_token_type", "audience", "resource", "scope",
	}
}

// Handle procesa un token request de exchange. En todos los casos (éxito o
// fallo) escribe exactamente un audit event después de resuelto el intento;
// un fallo al escribirlo se loguea y se traga, nunca altera el resultado.
// El mint ocurre antes del event: un token emitido sin evento no es un
// estado aceptable, un evento de un intento abandonado sí.
func (h *Handler) Handle(ctx context.Context, req oidc.GrantRequest) (oidc.GrantResponse, error) {
	start := time.Now()
	ev := &repository.ExchangeEvent{
		ID:        uuid.NewString(),
		ClientID:  req.ClientID,
		CreatedAt: time.Now(),
	}

	resp, err := h.exchange(ctx, req, ev)
	if err != nil {
		ev.Success = false
		ev.Error = err.Error()
		metrics.ExchangeAttempts.WithLabelValues(ErrorCode(err)).Inc()
	} else {
		ev.Success = true
		metrics.ExchangeAttempts.WithLabelValues("success").Inc()
	}
	metrics.ExchangeLatency.Observe(float64(time.Since(start).Milliseconds()))

	h.record(ctx, ev)
	return resp, err
}

// exchange corre la validación ordenada del request. Cada paso falla rápido
// con su error propio; no hay efectos parciales antes del primer check
// fallido. Va completando ev con los campos que determina.
func (h *Handler) exchange(ctx context.Context, req oidc.GrantRequest, ev *repository.ExchangeEvent) (oidc.GrantResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("exchange.grant"), logger.ClientID(req.ClientID))

	// 1. Caller autenticado
	if req.ClientID == "" {
		return nil, fmt.Errorf("%w: client authentication required", ErrInvalidClient)
	}

	// 2. requested_token_type, si viene, debe ser el único tipo emitible
	if v := req.Form.Get("requested_token_type"); v != "" && v != oidc.TokenTypeAccessToken {
		return nil, fmt.Errorf("%w: unsupported requested_token_type", ErrInvalidRequest)
	}

	// 3. subject_token_type obligatorio y soportado
	subjectTokenType := req.Form.Get("subject_token_type")
	ev.SubjectTokenType = subjectTokenType
	if subjectTokenType != oidc.TokenTypeAccessToken {
		return nil, fmt.Errorf("%w: unsupported subject_token_type", ErrInvalidRequest)
	}

	// 4. subject_token debe resolver a un access token vivo del caller
	subjectToken := req.Form.Get("subject_token")
	if subjectToken == "" {
		return nil, fmt.Errorf("%w: subject_token is required", ErrInvalidRequest)
	}
	subject, err := h.resolveAccessToken(ctx, subjectToken, req.ClientID)
	if err != nil {
		log.Warn("subject token rejected", logger.Err(err))
		return nil, fmt.Errorf("%w: subject_token is not a valid access token for this client", ErrInvalidGrant)
	}
	ev.Subject = subject.Subject
	ev.SubjectTokenID = subject.JTI

	// 5. audience (o resource) debe resolver a exactamente un valor
	audience, err := resolveAudience(req)
	if err != nil {
		return nil, err
	}
	ev.RequestedAudience = audience

	// 6. actor_token opcional, con tipo obligatorio igual al del subject
	var actor *oidc.TokenInfo
	if actorToken := req.Form.Get("actor_token"); actorToken != "" {
		if req.Form.Get("actor_token_type") != subjectTokenType {
			return nil, fmt.Errorf("%w: actor_token_type must match subject_token_type", ErrInvalidRequest)
		}
		actor, err = h.resolveAccessToken(ctx, actorToken, req.ClientID)
		if err != nil {
			log.Warn("actor token rejected", logger.Err(err))
			return nil, fmt.Errorf("%w: actor_token is not a valid access token for this client", ErrInvalidGrant)
		}
		ev.ActorSubject = &actor.Subject
	}

	// 7. Decisión de autorización: policy habilitada de mayor prioridad
	policy, err := h.matcher.FindApplicable(ctx, MatchRequest{
		ClientID:         req.ClientID,
		Subject:          subject.Subject,
		SubjectTokenType: subjectTokenType,
		Audience:         audience,
		ActorPresent:     actor != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: policy lookup failed", ErrServerError)
	}
	if policy == nil {
		log.Warn("no policy authorizes exchange", logger.Audience(audience), logger.Subject(subject.Subject))
		return nil, fmt.Errorf("%w: token exchange not authorized", ErrInvalidGrant)
	}
	ev.PolicyID = &policy.ID

	// 8. Narrowing de scopes. Lo pedido queda registrado antes de decidir:
	// un rechazo por overreach también audita qué se pidió.
	ev.RequestedScopes = requestedScopes(req.Form.Get("scope"), subject.Scope)
	granted, err := narrowScopes(req.Form.Get("scope"), subject.Scope, policy)
	if err != nil {
		return nil, err
	}
	ev.GrantedScopes = granted

	// Mint: mismo account y consent grant que el subject token, etiquetado
	// con el grant type de exchange, con claims de delegación si hubo actor.
	claims := delegationClaims(subject, actor)
	issued, err := h.issuer.IssueAccessToken(ctx, oidc.IssueTokenInput{
		AccountID: subject.Subject,
		ClientID:  req.ClientID,
		GrantID:   subject.GrantID,
		Scope:     strings.Join(granted, " "),
		Audience:  audience,
		GrantType: oidc.GrantTypeTokenExchange,
		Claims:    claims,
	})
	if err != nil {
		log.Error("failed to issue exchanged token", logger.Err(err))
		return nil, fmt.Errorf("%w: token issuance failed", ErrServerError)
	}
	ev.GrantedAudience = audience
	ev.IssuedTokenID = &issued.JTI

	log.Info("token exchanged",
		logger.Subject(subject.Subject),
		logger.PolicyID(policy.ID),
		logger.Audience(audience),
		logger.Scope(strings.Join(granted, " ")),
		logger.JTI(issued.JTI),
	)

	return oidc.GrantResponse{
		"access_token":      issued.Value,
		"issued_token_type": oidc.TokenTypeAccessToken,
		"token_type":        issued.Type,
		"expires_in":        issued.ExpiresIn,
		"scope":             strings.Join(granted, " "),
	}, nil
}

// resolveAccessToken resuelve un token presentado y exige que sea un access
// token vivo emitido al cliente autenticado.
func (h *Handler) resolveAccessToken(ctx context.Context, token, clientID string) (*oidc.TokenInfo, error) {
	info, err := h.reader.ReadAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Kind != oidc.KindAccessToken {
		return nil, fmt.Errorf("token is not an access token")
	}
	if !info.Active {
		return nil, fmt.Errorf("token is not active")
	}
	if info.ClientID != clientID {
		return nil, fmt.Errorf("token belongs to another client")
	}
	return info, nil
}

// resolveAudience exige exactamente un audience (o resource como fallback).
// El exchange multi-audiencia no está soportado.
func resolveAudience(req oidc.GrantRequest) (string, error) {
	values := req.Form["audience"]
	if len(values) == 0 {
		values = req.Form["resource"]
	}
	switch len(values) {
	case 0:
		return "", fmt.Errorf("%w: audience is required", ErrInvalidTarget)
	case 1:
		if values[0] == "" {
			return "", fmt.Errorf("%w: audience is required", ErrInvalidTarget)
		}
		return values[0], nil
	default:
		return "", fmt.Errorf("%w: multiple audiences are not supported", ErrInvalidTarget)
	}
}

// requestedScopes reconstruye qué se pidió: el parámetro scope explícito,
// o los scopes propios del subject token cuando se omitió.
func requestedScopes(scopeParam, subjectScope string) []string {
	if strings.TrimSpace(scopeParam) != "" {
		return splitScopes(scopeParam)
	}
	return splitScopes(subjectScope)
}

// narrowScopes computa el scope otorgado. La asimetría es deliberada:
// un scope ausente se defaultea a los scopes del subject token y se filtra
// en silencio por la allow-list de la policy; un scope explícito fuera de
// los scopes del subject o de la allow-list es un rechazo duro que nombra
// los ofensores.
func narrowScopes(scopeParam, subjectScope string, policy *repository.ExchangePolicy) ([]string, error) {
	subjectScopes := splitScopes(subjectScope)
	explicit := strings.TrimSpace(scopeParam) != ""

	requested := subjectScopes
	if explicit {
		requested = splitScopes(scopeParam)
		if outside := scopesOutside(requested, subjectScopes); len(outside) > 0 {
			return nil, &ScopeError{Scopes: outside}
		}
	}

	// Allow-list de la policy: vacía hereda sin filtrar, wildcard no restringe.
	if len(policy.Scopes) == 0 || contains(policy.Scopes, repository.Wildcard) {
		return requested, nil
	}
	if explicit {
		if outside := scopesOutside(requested, policy.Scopes); len(outside) > 0 {
			return nil, &ScopeError{Scopes: outside}
		}
		return requested, nil
	}
	return scopesIntersect(requested, policy.Scopes), nil
}

// delegationClaims arma los claims extra del token emitido: los que el
// subject token ya arrastraba más, si hubo actor, el claim act y la
// relación may_act cuando actor y sujeto difieren.
func delegationClaims(subject, actor *oidc.TokenInfo) map[string]any {
	claims := map[string]any{}
	for k, v := range subject.Extra {
		claims[k] = v
	}
	if actor != nil {
		claims["act"] = map[string]any{"sub": actor.Subject}
		if actor.Subject != subject.Subject {
			claims["may_act"] = map[string]any{"sub": subject.Subject}
		}
	}
	return claims
}

// record escribe el audit event. Nunca falla hacia el caller.
func (h *Handler) record(ctx context.Context, ev *repository.ExchangeEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.Create(ctx, ev); err != nil {
		logger.From(ctx).Warn("failed to write exchange event",
			logger.Err(err), logger.ID(ev.ID), logger.ClientID(ev.ClientID))
	}
}
