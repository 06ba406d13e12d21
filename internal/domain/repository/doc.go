// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente (PostgreSQL, memoria, etc.).
//
// Las implementaciones concretas viven en internal/store/.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
//   - Los repositorios no reintentan: un fallo de storage se propaga al caller
package repository
