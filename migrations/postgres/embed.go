// Package migrations embebe las migraciones SQL en el binario.
package migrations

import "embed"

// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql)

//go:embed *.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "."
