// Package store provee el registry de adaptadores de almacenamiento.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// Adapter representa un adaptador de almacenamiento capaz de crear repositorios.
type Adapter interface {
	// Name retorna el nombre del adapter (ej: "postgres", "memory").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection representa una conexión activa.
// Provee acceso a los repositorios implementados por el adapter.
type AdapterConnection interface {
	// Name retorna el nombre del adapter.
	Name() string

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error

	// ─── Repositorios ───

	Records() repository.RecordRepository
	Policies() repository.PolicyRepository
	Events() repository.EventRepository
	Clients() repository.ClientRepository
}

// AdapterConfig configuración de conexión.
type AdapterConfig struct {
	// DSN cadena de conexión (requerido para postgres).
	DSN string

	// Pool tuning (solo postgres).
	MaxOpenConns int
	MaxIdleConns int
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Adapter{}
)

// RegisterAdapter registra un adapter. Llamado desde init() de cada driver.
// Un nombre duplicado reemplaza al anterior (último gana, útil en tests).
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[a.Name()] = a
}

// GetAdapter retorna el adapter registrado con ese nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[name]
	return a, ok
}

// Open conecta usando el adapter del driver indicado.
func Open(ctx context.Context, driver string, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(driver)
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
	return a.Connect(ctx, cfg)
}
