package oidc

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// Options configura un Provider.
type Options struct {
	// Records es el repositorio subyacente del token record store (requerido).
	Records repository.RecordRepository

	// Reader resuelve subject/actor tokens (requerido para grant handlers).
	Reader TokenReader

	// Issuer acuña access tokens nuevos (requerido para grant handlers).
	Issuer TokenIssuer

	// Logger opcional; default logger.Named("oidc").
	Logger *zap.Logger
}

// Provider es el handle explícito hacia el runtime OAuth/OIDC embebido:
// agrupa la fábrica de adapters de persistencia, las capacidades de
// lectura/emisión de tokens y el registro de grant handlers adicionales.
//
// Los callers reciben el *Provider por inyección de dependencias; no hay
// estado global mutable más allá del get-or-create de Init/Default.
type Provider struct {
	adapters *AdapterFactory
	reader   TokenReader
	issuer   TokenIssuer
	log      *zap.Logger

	mu     sync.RWMutex
	grants map[string]GrantHandler
}

// New construye un Provider independiente.
func New(opts Options) (*Provider, error) {
	if opts.Records == nil {
		return nil, fmt.Errorf("oidc: Records is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("oidc")
	}
	return &Provider{
		adapters: NewAdapterFactory(opts.Records, log),
		reader:   opts.Reader,
		issuer:   opts.Issuer,
		log:      log,
		grants:   map[string]GrantHandler{},
	}, nil
}

// Adapter retorna el adapter de persistencia para un kind. El runtime
// construye uno por kind; instancias repetidas para el mismo kind son
// equivalentes entre sí.
func (p *Provider) Adapter(kind string) *Adapter {
	return p.adapters.For(kind)
}

// Reader retorna la capacidad de resolución de tokens.
func (p *Provider) Reader() TokenReader { return p.reader }

// Issuer retorna la capacidad de emisión de tokens.
func (p *Provider) Issuer() TokenIssuer { return p.issuer }

// RegisterGrant registra un grant handler adicional. Un grant type
// duplicado reemplaza al handler anterior.
func (p *Provider) RegisterGrant(h GrantHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants[h.GrantType()] = h
	p.log.Info("grant handler registered", logger.String("grant_type", h.GrantType()))
}

// Grant retorna el handler registrado para un grant type.
func (p *Provider) Grant(grantType string) (GrantHandler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.grants[grantType]
	return h, ok
}

var (
	defaultMu       sync.Mutex
	defaultProvider *Provider
)

// Init inicializa el Provider compartido del proceso. Idempotente:
// la primera llamada construye la instancia, las siguientes la retornan
// ignorando opts. Para instancias independientes (tests) usar New.
func Init(opts Options) (*Provider, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultProvider != nil {
		return defaultProvider, nil
	}
	p, err := New(opts)
	if err != nil {
		return nil, err
	}
	defaultProvider = p
	return p, nil
}

// Default retorna el Provider compartido, o nil si Init no fue llamado.
func Default() *Provider {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultProvider
}
