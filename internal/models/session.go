package models

import (
	"time"

	"github.com/google/uuid"
)

// User — профиль пользователя, каким его отдаёт identity-провайдер.
// FullName приходит в user_metadata (заполняется при регистрации).
type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Session — аутентифицированная сессия, выданная identity-провайдером.
//
// Ядро приложения не интерпретирует содержимое токенов: наличие
// сессии (non-nil) означает "аутентифицирован", а пара
// AccessToken/RefreshToken нужна только чтобы восстановить сессию
// из deep link или продлить её на стороне провайдера.
type Session struct {
	// AccessToken — JWT для авторизации запросов к провайдеру.
	AccessToken string
	// RefreshToken — одноразовый секрет для продления сессии.
	RefreshToken string
	// ExpiresAt — момент истечения access-токена (UTC).
	ExpiresAt time.Time
	// User — владелец сессии.
	User User
}

// Expired сообщает, истёк ли access-токен на момент now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthEventKind — тип события из подписки на изменения auth-состояния.
type AuthEventKind string

const (
	EventSignedIn         AuthEventKind = "SIGNED_IN"
	EventSignedOut        AuthEventKind = "SIGNED_OUT"
	EventPasswordRecovery AuthEventKind = "PASSWORD_RECOVERY"
	EventTokenRefreshed   AuthEventKind = "TOKEN_REFRESHED"
	EventUserUpdated      AuthEventKind = "USER_UPDATED"
)

// AuthEvent — событие изменения auth-состояния у identity-провайдера.
// Session может быть nil (например, для SIGNED_OUT).
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}
