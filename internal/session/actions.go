package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurusapp/kurus-mobile/internal/identity"
)

// Действия — тонкие асинхронные вызовы identity-провайдера.
// Ошибка провайдера возвращается вызывающему без изменений, ретраев нет.
// Навигация по итогу прямого действия — ответственность экрана;
// контроллер навигирует только по событиям подписки.

// SignIn выполняет вход по e-mail и паролю.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	const op = "session.Controller.SignIn"

	if err := c.client.SignInWithPassword(ctx, email, password); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SignUp регистрирует пользователя. FullName прикрепляется к профилю
// как метаданные; письму подтверждения сообщается зарегистрированный
// callback URL.
func (c *Controller) SignUp(ctx context.Context, email, password, fullName string) error {
	const op = "session.Controller.SignUp"

	err := c.client.SignUp(ctx, email, password, identity.SignUpOptions{
		FullName:    fullName,
		CallbackURL: c.callbacks.SignUp,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SignOut выходит из аккаунта на этом устройстве.
//
// Recovery-режим (память и durable-флаг) сбрасывается ДО удалённого
// вызова: UI должен сразу отразить "не в recovery", даже если сеть
// медленная. Область инвалидации — local: сессии на других устройствах
// остаются валидными намеренно.
func (c *Controller) SignOut(ctx context.Context) error {
	const op = "session.Controller.SignOut"

	c.mu.Lock()
	c.state.IsRecoveryMode = false
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)

	if err := c.flag.Clear(ctx); err != nil {
		c.log.Warn("recovery_flag_clear_failed", slog.String("err", err.Error()))
	}

	if err := c.client.SignOut(ctx, identity.ScopeLocal); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ResetPassword запрашивает recovery-письмо.
//
// Если сессия существует, сперва выполняется локальный sign-out: иначе
// пользователь, переоткрыв приложение до завершения сброса, оказался бы
// молча аутентифицирован старой сессией.
func (c *Controller) ResetPassword(ctx context.Context, email string) error {
	const op = "session.Controller.ResetPassword"

	sess, err := c.client.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if sess != nil {
		if err := c.client.SignOut(ctx, identity.ScopeLocal); err != nil {
			c.log.Warn("pre_reset_signout_failed", slog.String("err", err.Error()))
		}
	}

	err = c.client.ResetPasswordForEmail(ctx, email, identity.ResetOptions{
		CallbackURL: c.callbacks.PasswordReset,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdatePassword устанавливает новый пароль. Успех завершает
// recovery-поток: сбрасываются и память, и durable-флаг.
func (c *Controller) UpdatePassword(ctx context.Context, newPassword string) error {
	const op = "session.Controller.UpdatePassword"

	if err := c.client.UpdateUser(ctx, identity.UserAttributes{Password: newPassword}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.state.IsRecoveryMode = false
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)

	if err := c.flag.Clear(ctx); err != nil {
		c.log.Warn("recovery_flag_clear_failed", slog.String("err", err.Error()))
	}

	return nil
}
