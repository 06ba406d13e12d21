// Package cache define la abstracción de cache usada por el policy matcher.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing y single-node)
//   - Redis (distribuido, para producción multi-réplica)
package cache

import "time"

// Cache define las operaciones mínimas de cache de bytes con TTL.
type Cache interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
