// log — маленький помощник для прокидывания request/flow-scoped логгера
// через context.Context. Используется слушателем колбэков, обработчиком
// deep link'ов и контроллером сессии.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// WithFlow возвращает контекст, логгер которого помечен именем потока
// обработки (например, "deeplink" или "auth_event").
func WithFlow(ctx context.Context, flow string) context.Context {
	return Into(ctx, From(ctx).With(slog.String("flow", flow)))
}
