package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// ClientID crea un campo para el ID del cliente OAuth.
func ClientID(v string) zap.Field {
	return zap.String("client_id", v)
}

// Subject crea un campo para el account id del sujeto.
func Subject(v string) zap.Field {
	return zap.String("subject", v)
}

// Kind crea un campo para el tipo de entidad del token record store.
func Kind(v string) zap.Field {
	return zap.String("kind", v)
}

// RecordID crea un campo para el id de un token record.
func RecordID(v string) zap.Field {
	return zap.String("record_id", v)
}

// GrantID crea un campo para el id del consent grant.
func GrantID(v string) zap.Field {
	return zap.String("grant_id", v)
}

// PolicyID crea un campo para el id de una exchange policy.
func PolicyID(v string) zap.Field {
	return zap.String("policy_id", v)
}

// Audience crea un campo para la audiencia solicitada.
func Audience(v string) zap.Field {
	return zap.String("audience", v)
}

// Scope crea un campo para el scope (space-delimited).
func Scope(v string) zap.Field {
	return zap.String("scope", v)
}

// JTI crea un campo para el id interno del token emitido.
func JTI(v string) zap.Field {
	return zap.String("jti", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, repository).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DATOS
// =================================================================================

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// ID crea un campo genérico para un ID.
func ID(v string) zap.Field {
	return zap.String("id", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
