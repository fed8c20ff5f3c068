// gotrue — HTTP-клиент hosted identity-провайдера (GoTrue-совместимый
// REST API). Реализует identity.Client.
//
// Клиент держит текущую сессию в памяти, персистит её в локальном
// key-value хранилище (чтобы вход переживал перезапуск процесса) и
// синхронно рассылает события подписчикам при каждом изменении
// auth-состояния.
//
// Маппинг ошибок провайдера:
//   - 400 на password-grant -> identity.ErrInvalidCredentials;
//   - 400/401/403 на verify/refresh -> identity.ErrInvalidToken
//     (токены из deep link'ов одноразовые, повторное использование
//     провайдер отвергает);
//   - 401 на /user без сессии -> identity.ErrNoSession;
//   - прочее -> identity.ErrProvider с безопасной обёрткой.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kurusapp/kurus-mobile/internal/identity"
	"github.com/kurusapp/kurus-mobile/internal/models"
	logctx "github.com/kurusapp/kurus-mobile/internal/pkg/log"
	"github.com/kurusapp/kurus-mobile/internal/storage"
)

// sessionKey — ключ персистентной сессии в локальном хранилище.
const sessionKey = "kurusapp_auth_session"

// Client — HTTP-клиент identity-провайдера.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client

	store storage.Store

	mu      sync.Mutex
	session *models.Session
	subs    map[uuid.UUID]identity.EventFunc
}

// New создаёт клиент. store используется для персистенции сессии;
// сохранённая ранее сессия восстанавливается сразу (без сети).
func New(baseURL, anonKey string, timeout time.Duration, store storage.Store) *Client {
	c := &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		store:   store,
		subs:    make(map[uuid.UUID]identity.EventFunc),
	}

	c.restoreSession()
	return c
}

// restoreSession поднимает персистентную сессию из хранилища.
// Повреждённая запись молча отбрасывается.
func (c *Client) restoreSession() {
	raw, err := c.store.Get(context.Background(), sessionKey)
	if err != nil {
		return
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		_ = c.store.Remove(context.Background(), sessionKey)
		return
	}

	c.session = &s
}

// CurrentSession возвращает текущую сессию или nil.
func (c *Client) CurrentSession(_ context.Context) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session, nil
}

// OnAuthStateChange регистрирует колбэк; события доставляются синхронно
// в горутине, вызвавшей операцию-источник.
func (c *Client) OnAuthStateChange(fn identity.EventFunc) identity.Unsubscriber {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New()
	c.subs[id] = fn
	return &subscription{c: c, id: id}
}

type subscription struct {
	c  *Client
	id uuid.UUID
}

func (s *subscription) Unsubscribe() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	delete(s.c.subs, s.id)
}

// emit рассылает событие всем подписчикам. Снимок списка берётся под
// мьютексом, сами колбэки зовутся без него.
func (c *Client) emit(ev models.AuthEvent) {
	c.mu.Lock()
	fns := make([]identity.EventFunc, 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// adoptSession делает s текущей сессией, персистит её и шлёт событие kind.
func (c *Client) adoptSession(ctx context.Context, s *models.Session, kind models.AuthEventKind) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if raw, err := json.Marshal(s); err == nil {
		if err := c.store.Set(ctx, sessionKey, string(raw)); err != nil {
			logctx.From(ctx).Warn("session_persist_failed", slog.String("err", err.Error()))
		}
	}

	c.emit(models.AuthEvent{Kind: kind, Session: s})
}

// dropSession сбрасывает текущую сессию и шлёт SIGNED_OUT.
func (c *Client) dropSession(ctx context.Context) {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if err := c.store.Remove(ctx, sessionKey); err != nil {
		logctx.From(ctx).Warn("session_remove_failed", slog.String("err", err.Error()))
	}

	c.emit(models.AuthEvent{Kind: models.EventSignedOut})
}

// SignInWithPassword выполняет password-grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	const op = "identity.gotrue.SignInWithPassword"

	body := map[string]any{"email": email, "password": password}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, "", &resp); err != nil {
		if errors.Is(err, errBadRequest) || errors.Is(err, errUnauthorized) {
			return fmt.Errorf("%s: %w", op, identity.ErrInvalidCredentials)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	c.adoptSession(ctx, resp.toSession(), models.EventSignedIn)
	return nil
}

// SignUp регистрирует пользователя; сессия не создаётся — провайдер
// шлёт письмо подтверждения на opts.CallbackURL.
func (c *Client) SignUp(ctx context.Context, email, password string, opts identity.SignUpOptions) error {
	const op = "identity.gotrue.SignUp"

	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"full_name": opts.FullName},
	}

	path := "/auth/v1/signup"
	if opts.CallbackURL != "" {
		path += "?redirect_to=" + url.QueryEscape(opts.CallbackURL)
	}

	if err := c.do(ctx, http.MethodPost, path, body, "", nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SignOut инвалидирует сессию. Локальное состояние сбрасывается даже
// если удалённый вызов не удался: устройство в любом случае "вышло".
func (c *Client) SignOut(ctx context.Context, scope identity.SignOutScope) error {
	const op = "identity.gotrue.SignOut"

	c.mu.Lock()
	bearer := ""
	if c.session != nil {
		bearer = c.session.AccessToken
	}
	c.mu.Unlock()

	var remoteErr error
	if bearer != "" {
		if scope == "" {
			scope = identity.ScopeLocal
		}

		path := "/auth/v1/logout?scope=" + url.QueryEscape(string(scope))
		if err := c.do(ctx, http.MethodPost, path, nil, bearer, nil); err != nil {
			remoteErr = fmt.Errorf("%s: %w", op, err)
		}
	}

	c.dropSession(ctx)
	return remoteErr
}

// ResetPasswordForEmail инициирует recovery-письмо.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email string, opts identity.ResetOptions) error {
	const op = "identity.gotrue.ResetPasswordForEmail"

	path := "/auth/v1/recover"
	if opts.CallbackURL != "" {
		path += "?redirect_to=" + url.QueryEscape(opts.CallbackURL)
	}

	if err := c.do(ctx, http.MethodPost, path, map[string]any{"email": email}, "", nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateUser изменяет атрибуты текущего пользователя. Требует сессии.
func (c *Client) UpdateUser(ctx context.Context, attrs identity.UserAttributes) error {
	const op = "identity.gotrue.UpdateUser"

	c.mu.Lock()
	bearer := ""
	if c.session != nil {
		bearer = c.session.AccessToken
	}
	c.mu.Unlock()

	if bearer == "" {
		return fmt.Errorf("%s: %w", op, identity.ErrNoSession)
	}

	body := map[string]any{}
	if attrs.Password != "" {
		body["password"] = attrs.Password
	}

	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", body, bearer, nil); err != nil {
		if errors.Is(err, errUnauthorized) {
			return fmt.Errorf("%s: %w", op, identity.ErrNoSession)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	c.emit(models.AuthEvent{Kind: models.EventUserUpdated, Session: c.currentLocked()})
	return nil
}

// SetSession восстанавливает сессию из пары токенов deep link'а.
//
// Access-токен — JWT; клиент декодирует claims (sub, email, exp) без
// проверки подписи: верификатор — провайдер, клиенту подпись проверять
// нечем. Просроченный access-токен сразу обменивается по refresh-grant
// (refresh-токен одноразовый, повторный вызов упадёт на провайдере).
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	const op = "identity.gotrue.SetSession"

	if accessToken == "" || refreshToken == "" {
		return nil, fmt.Errorf("%s: %w", op, identity.ErrInvalidToken)
	}

	claims, err := decodeClaims(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, identity.ErrInvalidToken)
	}

	if !claims.ExpiresAt.IsZero() && !time.Now().Before(claims.ExpiresAt) {
		// Access уже истёк — обновляем пару через refresh-grant.
		var resp sessionResponse
		body := map[string]any{"refresh_token": refreshToken}
		if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body, "", &resp); err != nil {
			if errors.Is(err, errBadRequest) || errors.Is(err, errUnauthorized) {
				return nil, fmt.Errorf("%s: %w", op, identity.ErrInvalidToken)
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s := resp.toSession()
		c.adoptSession(ctx, s, models.EventSignedIn)
		return s, nil
	}

	s := &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    claims.ExpiresAt,
		User: models.User{
			ID:       claims.UserID,
			Email:    claims.Email,
			FullName: claims.FullName,
		},
	}

	c.adoptSession(ctx, s, models.EventSignedIn)
	return s, nil
}

// VerifyOTP обменивает token_hash на верифицированную сессию.
// Для типа recovery подписчикам уходит PASSWORD_RECOVERY, иначе SIGNED_IN.
func (c *Client) VerifyOTP(ctx context.Context, tokenHash string, otpType identity.OTPType) error {
	const op = "identity.gotrue.VerifyOTP"

	body := map[string]any{"token_hash": tokenHash, "type": string(otpType)}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/verify", body, "", &resp); err != nil {
		if errors.Is(err, errBadRequest) || errors.Is(err, errUnauthorized) || errors.Is(err, errForbidden) {
			return fmt.Errorf("%s: %w", op, identity.ErrInvalidToken)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	kind := models.EventSignedIn
	if otpType == identity.OTPRecovery {
		kind = models.EventPasswordRecovery
	}

	c.adoptSession(ctx, resp.toSession(), kind)
	return nil
}

func (c *Client) currentLocked() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

// --- транспорт ---

// Классы HTTP-ошибок для маппинга на доменные sentinel'ы.
var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
)

// providerError — тело ошибки GoTrue. Token-эндпоинты отвечают в формате
// OAuth (error/error_description), остальные — msg/code.
type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e providerError) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Error != "":
		return e.Error
	}

	return "request failed"
}

// do выполняет запрос к провайдеру и декодирует ответ в out (если не nil).
func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", identity.ErrProvider, err)
		}

		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%w: %v", identity.ErrProvider, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", identity.ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", identity.ErrProvider, err)
	}

	if resp.StatusCode >= 400 {
		var pe providerError
		_ = json.Unmarshal(raw, &pe)

		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s", errBadRequest, pe.message())
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", errUnauthorized, pe.message())
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", errForbidden, pe.message())
		}

		return fmt.Errorf("%w: status %d: %s", identity.ErrProvider, resp.StatusCode, pe.message())
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", identity.ErrProvider, err)
		}
	}

	return nil
}

// --- маппинг ответов ---

// sessionResponse — тело ответа token/verify эндпоинтов.
type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	CreatedAt    time.Time         `json:"created_at"`
	UserMetadata map[string]string `json:"user_metadata"`
}

func (r sessionResponse) toSession() *models.Session {
	uid, _ := uuid.Parse(r.User.ID)

	return &models.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(r.ExpiresIn) * time.Second),
		User: models.User{
			ID:        uid,
			Email:     r.User.Email,
			FullName:  r.User.UserMetadata["full_name"],
			CreatedAt: r.User.CreatedAt,
		},
	}
}

// tokenClaims — интересующие клиента claims access-токена.
type tokenClaims struct {
	UserID    uuid.UUID
	Email     string
	FullName  string
	ExpiresAt time.Time
}

// decodeClaims декодирует JWT без проверки подписи.
func decodeClaims(accessToken string) (tokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return tokenClaims{}, err
	}

	out := tokenClaims{}

	if sub, err := claims.GetSubject(); err == nil {
		out.UserID, _ = uuid.Parse(sub)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}

	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		if name, ok := meta["full_name"].(string); ok {
			out.FullName = name
		}
	}

	return out, nil
}
