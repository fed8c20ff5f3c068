package deeplink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurusapp/kurus-mobile/internal/identity"
	"github.com/kurusapp/kurus-mobile/internal/models"
	"github.com/kurusapp/kurus-mobile/internal/nav"
	logctx "github.com/kurusapp/kurus-mobile/internal/pkg/log"
	"github.com/kurusapp/kurus-mobile/internal/recovery"
)

// Сообщения результата обработки. Пользователю как alert не показываются
// (ошибка deep link'а — это тихий редирект на sign-in), но возвращаются
// вызывающему и попадают в dev-логи.
const (
	errInvalidScheme   = "Invalid URL scheme"
	errParseFailed     = "Failed to parse URL"
	errSessionFailed   = "Failed to create session"
	errNoTokens        = "No authentication tokens found"
	genericDescription = "Authentication failed"
)

// Result — итог обработки auth deep link'а.
type Result struct {
	OK   bool
	Type models.AuthLinkType
	Err  string
}

// Handler разбирает auth-колбэки, восстанавливает сессию через
// identity-провайдера и выполняет навигацию.
type Handler struct {
	parser *Parser
	client identity.Client
	flag   *recovery.Flag
	nav    nav.Navigator
}

// NewHandler создаёт обработчик deep link'ов.
func NewHandler(parser *Parser, client identity.Client, flag *recovery.Flag, navigator nav.Navigator) *Handler {
	return &Handler{
		parser: parser,
		client: client,
		flag:   flag,
		nav:    navigator,
	}
}

// Handle обрабатывает входящий deep link.
//
// Порядок шагов жёсткий. Ключевой момент — durable-флаг recovery
// взводится ДО вызова установки сессии: установка сессии синхронно
// рассылает auth-событие, и контроллер сессии может увидеть его раньше,
// чем Handle вернётся; без уже взведённого флага recovery-сессия была бы
// принята за обычный вход.
//
// Паника любого шага гасится на границе: безопасный редирект на sign-in,
// для вызывающего неотличимо от невалидного входа.
func (h *Handler) Handle(ctx context.Context, raw string) (res Result) {
	ctx = logctx.WithFlow(ctx, "deeplink")
	log := logctx.From(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("deeplink_panic", slog.Any("panic", r))
			h.nav.Replace(nav.RouteSignIn)
			res = Result{OK: false, Err: errParseFailed}
		}
	}()

	// 1. Схема.
	if !h.parser.validScheme(raw) {
		log.Debug("deeplink_invalid_scheme", slog.String("url", raw))
		return Result{OK: false, Err: errInvalidScheme}
	}

	// 2. Параметры.
	link, err := h.parser.Parse(raw)
	if err != nil {
		log.Debug("deeplink_parse_failed", slog.String("err", err.Error()))
		return Result{OK: false, Err: errParseFailed}
	}

	// 3. Ошибка провайдера в ссылке (например, otp_expired).
	if link.HasError() {
		desc := link.ErrorDescription
		if desc == "" {
			desc = genericDescription
		}

		log.Debug("deeplink_provider_error",
			slog.String("code", link.ErrorCode),
			slog.String("description", desc),
		)

		h.nav.Replace(nav.RouteSignIn)
		return Result{OK: false, Err: fmt.Sprintf("%s: %s", link.ErrorCode, desc)}
	}

	// 4. Тип ссылки (закрытое перечисление; иное — unspecified).
	authType, _ := models.KnownAuthLinkType(link.Type)

	// 5. Recovery-флаг — durable и ДО установки сессии (см. комментарий
	// к Handle). Ошибка записи не фатальна: recovery-состояние текущего
	// процесса живёт и в памяти.
	if authType == models.LinkRecovery {
		if err := h.flag.Set(ctx); err != nil {
			log.Warn("recovery_flag_set_failed", slog.String("err", err.Error()))
		}
	}

	// 6. Пара токенов -> установка сессии.
	if link.AccessToken != "" && link.RefreshToken != "" {
		if _, err := h.client.SetSession(ctx, link.AccessToken, link.RefreshToken); err != nil {
			log.Debug("deeplink_set_session_failed", slog.String("err", err.Error()))

			// Откат шага 5.
			if authType == models.LinkRecovery {
				if cerr := h.flag.Clear(ctx); cerr != nil {
					log.Warn("recovery_flag_clear_failed", slog.String("err", cerr.Error()))
				}
			}

			return Result{OK: false, Err: errSessionFailed}
		}

		h.navigate(ctx, authType)
		return Result{OK: true, Type: authType}
	}

	// 7. token_hash -> OTP-верификация.
	if link.TokenHash != "" && link.Type != "" {
		if err := h.client.VerifyOTP(ctx, link.TokenHash, identity.OTPType(link.Type)); err != nil {
			log.Debug("deeplink_verify_otp_failed", slog.String("err", err.Error()))

			if authType == models.LinkRecovery {
				if cerr := h.flag.Clear(ctx); cerr != nil {
					log.Warn("recovery_flag_clear_failed", slog.String("err", cerr.Error()))
				}
			}

			return Result{OK: false, Err: err.Error()}
		}

		h.navigate(ctx, authType)
		return Result{OK: true, Type: authType}
	}

	// 8. Ни токенов, ни хэша.
	log.Debug("deeplink_no_tokens")
	return Result{OK: false, Err: errNoTokens}
}

// navigate выполняет переход после успешной верификации:
// recovery — на экран смены пароля, всё остальное — в основное приложение.
func (h *Handler) navigate(ctx context.Context, authType models.AuthLinkType) {
	log := logctx.From(ctx)

	switch authType {
	case models.LinkRecovery:
		log.Debug("deeplink_navigate", slog.String("route", string(nav.RouteResetPassword)))
		h.nav.Replace(nav.RouteResetPassword)
	default:
		log.Debug("deeplink_navigate", slog.String("route", string(nav.RouteMainApp)))
		h.nav.Replace(nav.RouteMainApp)
	}
}
