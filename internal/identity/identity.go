// identity описывает контракт удалённого identity-провайдера.
//
// Провайдер — внешний сервис: хранение учётных данных, выпуск токенов,
// доставка писем и генерация OTP происходят на его стороне. Приложение
// потребляет ровно те операции, что перечислены в интерфейсе Client,
// плюс подписку на события изменения auth-состояния.
package identity

import (
	"context"
	"errors"

	"github.com/kurusapp/kurus-mobile/internal/models"
)

var (
	// ErrInvalidCredentials — пара e-mail/пароль отвергнута провайдером.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен/хэш некорректен, просрочен или уже использован
	// (токены из deep link'ов одноразовые).
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNoSession — операция требует активной сессии, а её нет.
	ErrNoSession = errors.New("no active session")

	// ErrProvider — прочие ошибки провайдера (сеть, 5xx). Детали — в обёртке.
	ErrProvider = errors.New("identity provider error")
)

// SignOutScope — область действия sign-out.
type SignOutScope string

const (
	// ScopeLocal инвалидирует сессию только на этом устройстве.
	ScopeLocal SignOutScope = "local"
	// ScopeGlobal инвалидирует сессии на всех устройствах.
	ScopeGlobal SignOutScope = "global"
)

// OTPType — тип верификации по token_hash.
type OTPType string

const (
	OTPRecovery  OTPType = "recovery"
	OTPSignup    OTPType = "signup"
	OTPMagicLink OTPType = "magiclink"
	OTPInvite    OTPType = "invite"
	OTPEmail     OTPType = "email"
)

// SignUpOptions — метаданные регистрации.
type SignUpOptions struct {
	// FullName прикрепляется к профилю как user_metadata.
	FullName string
	// CallbackURL — зарегистрированный deep link для письма подтверждения.
	CallbackURL string
}

// ResetOptions — параметры запроса сброса пароля.
type ResetOptions struct {
	// CallbackURL — зарегистрированный deep link recovery-письма.
	// Отличается от колбэка регистрации.
	CallbackURL string
}

// UserAttributes — изменяемые атрибуты текущего пользователя.
type UserAttributes struct {
	Password string
}

// EventFunc — колбэк подписки на изменения auth-состояния.
type EventFunc func(models.AuthEvent)

// Unsubscriber отменяет подписку на события.
type Unsubscriber interface {
	Unsubscribe()
}

// Client — операции identity-провайдера, потребляемые приложением.
type Client interface {
	// CurrentSession возвращает текущую сессию или nil.
	CurrentSession(ctx context.Context) (*models.Session, error)
	// OnAuthStateChange регистрирует колбэк на события auth-состояния.
	OnAuthStateChange(fn EventFunc) Unsubscriber
	// SignInWithPassword выполняет вход по e-mail и паролю.
	SignInWithPassword(ctx context.Context, email, password string) error
	// SignUp регистрирует пользователя и инициирует письмо подтверждения.
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) error
	// SignOut инвалидирует сессию в заданной области.
	SignOut(ctx context.Context, scope SignOutScope) error
	// ResetPasswordForEmail инициирует recovery-письмо.
	ResetPasswordForEmail(ctx context.Context, email string, opts ResetOptions) error
	// UpdateUser изменяет атрибуты текущего пользователя (требует сессии).
	UpdateUser(ctx context.Context, attrs UserAttributes) error
	// SetSession восстанавливает сессию из пары токенов deep link'а.
	SetSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error)
	// VerifyOTP обменивает token_hash на верифицированную сессию.
	VerifyOTP(ctx context.Context, tokenHash string, otpType OTPType) error
}
