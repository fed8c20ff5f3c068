// httpcb — loopback-слушатель auth-колбэков.
//
// Identity-провайдер редиректит письма на зарегистрированный callback
// URL; в headless-оболочке доставку deep link'а операционной системой
// моделирует этот слушатель: каждый входящий запрос пересобирается в
// ссылку активной схемы приложения и скармливается общему обработчику.
// Это "смонтированная" точка входа; ранний перехват (аргумент процесса)
// живёт в cmd и проходит через тот же обработчик — повторная доставка
// одной ссылки безопасна, обработка идемпотентна.
package httpcb

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kurusapp/kurus-mobile/internal/deeplink"
	logctx "github.com/kurusapp/kurus-mobile/internal/pkg/log"
)

// Options — параметры сборки роутера.
type Options struct {
	Logger *slog.Logger
	// Scheme — активная схема deep link'ов (например, "kurusapp" или "exp").
	Scheme string
	// DevHost — хост dev-схемы; непустой Host означает формат exp://host/--/path.
	DevHost string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware.
func NewRouter(h *deeplink.Handler, p *deeplink.Parser, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		Recover(),            // безопасно ловим паники
		RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)

	root.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	cb := &callback{handler: h, parser: p, scheme: opts.Scheme, devHost: opts.DevHost}
	root.Get("/*", cb.serve)

	return root
}

type callback struct {
	handler *deeplink.Handler
	parser  *deeplink.Parser
	scheme  string
	devHost string
}

// serve пересобирает входящий запрос в deep link активной схемы и
// обрабатывает его. Не-auth ссылки игнорируются (обычная навигация
// сюда не приходит).
func (c *callback) serve(w http.ResponseWriter, r *http.Request) {
	link := c.rebuild(r)

	if !c.parser.IsAuthLink(link) {
		logctx.From(r.Context()).Debug("callback_not_auth_link", slog.String("path", r.URL.Path))
		http.NotFound(w, r)
		return
	}

	res := c.handler.Handle(r.Context(), link)
	if !res.OK {
		logctx.From(r.Context()).Debug("callback_failed", slog.String("err", res.Err))
	}

	// Независимо от исхода — пользователю одна и та же страница:
	// детали провайдера в браузер не утекают.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "<html><body><p>Kuruş uygulamasına dönebilirsin.</p></body></html>")
}

// rebuild восстанавливает ссылку схемы приложения из HTTP-запроса.
func (c *callback) rebuild(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/")

	var link string
	if c.devHost != "" {
		link = fmt.Sprintf("%s://%s/--/%s", c.scheme, c.devHost, path)
	} else {
		link = fmt.Sprintf("%s://%s", c.scheme, path)
	}

	if r.URL.RawQuery != "" {
		link += "?" + r.URL.RawQuery
	}

	return link
}
