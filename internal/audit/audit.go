package audit

import (
	"context"

	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// Log escribe un evento de auditoría administrativa (mutaciones de policies
// y clients) al log estructurado. Los intentos de exchange NO pasan por acá:
// tienen su propio registro persistente en exchange_event.
func Log(ctx context.Context, event string, fields map[string]any) {
	log := logger.From(ctx).Named("audit")
	zf := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		zf = append(zf, k, v)
	}
	log.Sugar().Infow(event, zf...)
}
