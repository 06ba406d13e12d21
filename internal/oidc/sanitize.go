package oidc

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// numericClaims son los campos del payload que deben volver como número
// aunque el storage los haya serializado como texto.
var numericClaims = []string{"exp", "iat", "nbf", "auth_time"}

// sanitizePayload prepara el payload de un registro para entregarlo al
// runtime: coerciona los claims numéricos conocidos y, si el registro fue
// consumido, inyecta el campo consumed como timestamp Unix en segundos.
func sanitizePayload(rec *repository.TokenRecord) map[string]any {
	payload := rec.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}

	for _, claim := range numericClaims {
		if v, ok := out[claim]; ok {
			out[claim] = coerceNumeric(v)
		}
	}

	if rec.ConsumedAt != nil {
		out["consumed"] = rec.ConsumedAt.Unix()
	}
	return out
}

// coerceNumeric intenta convertir v a un número. Un valor que no coerciona
// se retorna sin cambios, nunca se descarta.
func coerceNumeric(v any) any {
	switch n := v.(type) {
	case int64, int, int32, float32:
		return n
	case float64:
		// JSON deserializa todo número como float64; los claims temporales
		// son enteros, así que se normalizan cuando no pierden precisión.
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n)
		}
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
		return n
	default:
		return v
	}
}
