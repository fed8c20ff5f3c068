package httpcb

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/kurusapp/kurus-mobile/internal/pkg/log"
)

// Middleware — общий тип цепочки.
type Middleware func(next http.Handler) http.Handler

// Recover перехватывает panic в обработчиках колбэков. Детали паники
// наружу не отдаются — браузеру уходит нейтральный 500.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic",
						slog.String("path", r.URL.Path),
						slog.Any("reason", rec),
					)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок, если есть;
//  2. иначе генерирует криптографически стойкий hex id (32 символа);
//  3. кладёт id в Response Header и Request Header.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = genID()
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			next.ServeHTTP(w, r)
		})
	}
}

func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// Logging кладёт request-scoped логгер в контекст и логирует запрос.
// Query string намеренно не логируется: в ней приходят одноразовые токены.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := r.Header.Get("X-Request-Id"); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(logctx.Into(r.Context(), reqLogger))

			start := time.Now()
			next.ServeHTTP(w, r)

			logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelInfo, "callback",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}
