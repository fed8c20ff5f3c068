// session — контроллер auth-состояния приложения.
//
// Контроллер владеет единственным экземпляром State на процесс:
// мутации происходят только в его инициализации и в обработчике событий
// identity-провайдера; читатели (навигационный guard, экраны) получают
// снапшоты через State() или подписку Subscribe.
//
// Согласование двух источников правды:
//   - бутстрап (durable-флаг + текущая сессия провайдера);
//   - поток событий подписки (вход, выход, recovery).
//
// Пока бутстрап не завершён, события обновляют состояние, но навигации
// не делают — первое навигационное решение принадлежит входному маршруту
// (nav.Decide), иначе пользователь увидел бы двойной редирект.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kurusapp/kurus-mobile/internal/identity"
	"github.com/kurusapp/kurus-mobile/internal/models"
	"github.com/kurusapp/kurus-mobile/internal/nav"
	logctx "github.com/kurusapp/kurus-mobile/internal/pkg/log"
	"github.com/kurusapp/kurus-mobile/internal/recovery"
)

// State — auth-состояние приложения.
type State struct {
	// Session — текущая сессия или nil.
	Session *models.Session
	// IsLoading истинно только во время начального бутстрапа.
	IsLoading bool
	// IsRecoveryMode истинно, пока пользователь в потоке сброса пароля.
	IsRecoveryMode bool
}

// IsAuthenticated — производное: сессия есть И мы не в recovery.
// Recovery всегда перекрывает аутентификацию: сессия в этом режиме
// существует только чтобы авторизовать смену пароля.
func (s State) IsAuthenticated() bool {
	return s.Session != nil && !s.IsRecoveryMode
}

// Callbacks — зарегистрированные у провайдера deep link'и писем.
// Колбэк recovery-письма отличается от колбэка подтверждения регистрации.
type Callbacks struct {
	SignUp        string
	PasswordReset string
}

// Controller — процесс-wide контроллер auth-состояния.
type Controller struct {
	client    identity.Client
	flag      *recovery.Flag
	nav       nav.Navigator
	callbacks Callbacks
	log       *slog.Logger

	mu          sync.Mutex
	state       State
	initialDone bool
	sub         identity.Unsubscriber
	observers   map[int]func(State)
	nextObsID   int
}

// New создаёт контроллер. До вызова Start состояние — "идёт загрузка".
// navigator может быть nil на момент создания (оболочка строится поверх
// контроллера) — тогда его нужно установить через SetNavigator до Start.
func New(client identity.Client, flag *recovery.Flag, navigator nav.Navigator, callbacks Callbacks, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}

	return &Controller{
		client:    client,
		flag:      flag,
		nav:       navigator,
		callbacks: callbacks,
		log:       log,
		state:     State{IsLoading: true},
		observers: make(map[int]func(State)),
	}
}

// SetNavigator устанавливает навигатор. Вызывается до Start.
func (c *Controller) SetNavigator(n nav.Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nav = n
}

// Start подписывается на события провайдера и выполняет бутстрап:
//  1. durable-флаг recovery -> IsRecoveryMode;
//  2. текущая сессия провайдера -> Session;
//  3. IsLoading=false;
//  4. и только после применения этих записей — снятие начального гейта
//     (явный boolean, взводится под тем же мьютексом, что и состояние;
//     никакой зависимости от порядка flush планировщика).
//
// Подписка ставится до бутстрапа: событие, успевшее прийти в этот
// промежуток, обновит состояние, но навигацию не вызовет.
func (c *Controller) Start(ctx context.Context) error {
	const op = "session.Controller.Start"

	c.sub = c.client.OnAuthStateChange(c.handleEvent)

	recoveryActive := c.flag.Active(ctx)

	sess, err := c.client.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	if recoveryActive {
		c.state.IsRecoveryMode = true
	}
	c.state.Session = sess
	c.state.IsLoading = false
	c.initialDone = true
	snapshot := c.state
	c.mu.Unlock()

	c.log.Debug("auth_initialized",
		slog.Bool("has_session", sess != nil),
		slog.Bool("recovery_mode", recoveryActive),
	)

	c.notify(snapshot)
	return nil
}

// Close отменяет подписку на события провайдера.
func (c *Controller) Close() {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
}

// State возвращает снапшот текущего состояния.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Subscribe регистрирует наблюдателя изменений состояния.
// Возвращает функцию отмены подписки.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// notify рассылает снапшот наблюдателям (вне мьютекса).
func (c *Controller) notify(s State) {
	c.mu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// handleEvent — обработчик событий подписки.
//
// Состояние (Session, IsLoading) обновляется безусловно; навигационная
// политика применяется только после снятия начального гейта:
//   - PASSWORD_RECOVERY с сессией -> recovery on, персист флага, экран смены пароля;
//   - SIGNED_IN с сессией -> основное приложение; но если durable-флаг
//     recovery уже взведён (обработчик deep link'а ставит его ДО установки
//     сессии), вход классифицируется как recovery, не как обычный sign-in;
//   - SIGNED_OUT -> экран входа;
//   - остальные события навигации не делают.
func (c *Controller) handleEvent(ev models.AuthEvent) {
	ctx := logctx.Into(context.Background(), c.log.With(slog.String("flow", "auth_event")))

	c.mu.Lock()
	c.state.Session = ev.Session
	c.state.IsLoading = false

	gate := c.initialDone

	var route nav.Route
	persistFlag := false

	switch {
	case ev.Kind == models.EventPasswordRecovery && ev.Session != nil:
		c.state.IsRecoveryMode = true
		persistFlag = true
		route = nav.RouteResetPassword

	case ev.Kind == models.EventSignedIn && ev.Session != nil:
		route = nav.RouteMainApp

	case ev.Kind == models.EventSignedOut:
		route = nav.RouteSignIn
	}

	snapshot := c.state
	c.mu.Unlock()

	if ev.Kind == models.EventSignedIn && ev.Session != nil {
		// Гонка из deep link'а: флаг взводится до установки сессии,
		// поэтому здесь он уже виден, если это recovery-вход.
		inRecovery := snapshot.IsRecoveryMode
		if !inRecovery && c.flag.Active(ctx) {
			c.mu.Lock()
			c.state.IsRecoveryMode = true
			snapshot = c.state
			c.mu.Unlock()

			inRecovery = true
		}

		if inRecovery {
			route = nav.RouteResetPassword
		}
	}

	if persistFlag {
		if err := c.flag.Set(ctx); err != nil {
			c.log.Warn("recovery_flag_persist_failed", slog.String("err", err.Error()))
		}
	}

	c.log.Debug("auth_event",
		slog.String("kind", string(ev.Kind)),
		slog.Bool("has_session", ev.Session != nil),
		slog.Bool("gate_open", gate),
	)

	c.notify(snapshot)

	// До завершения бутстрапа навигация подавлена: первое решение
	// принимает входной маршрут.
	if !gate || route == "" {
		return
	}

	c.mu.Lock()
	navigator := c.nav
	c.mu.Unlock()

	if navigator != nil {
		navigator.Replace(route)
	}
}
