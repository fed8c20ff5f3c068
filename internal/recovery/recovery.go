// recovery — durable-флаг "идёт сброс пароля".
//
// Флаг персистится, чтобы режим recovery переживал холодный старт:
// приложение могло быть убито между получением recovery-письма и
// повторным открытием. Ключ и формат фиксированы — их разделяют
// обработчик deep link'ов и контроллер сессии, расхождение дало бы
// split-brain состояние.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	logctx "github.com/kurusapp/kurus-mobile/internal/pkg/log"
	"github.com/kurusapp/kurus-mobile/internal/storage"
)

// Key — фиксированный ключ флага в локальном хранилище.
const Key = "kurusapp_recovery_mode"

// Flag управляет durable-флагом recovery-режима.
type Flag struct {
	store storage.Store
}

// NewFlag создаёт обёртку над хранилищем store.
func NewFlag(store storage.Store) *Flag {
	return &Flag{store: store}
}

// Set взводит флаг. Ошибка записи не фатальна для вызывающего:
// recovery-состояние текущего процесса живёт и в памяти контроллера.
func (f *Flag) Set(ctx context.Context) error {
	const op = "recovery.Flag.Set"

	if err := f.store.Set(ctx, Key, "true"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Debug("recovery_flag_set")
	return nil
}

// Clear снимает флаг (после смены пароля или при ошибке recovery-потока).
func (f *Flag) Clear(ctx context.Context) error {
	const op = "recovery.Flag.Clear"

	if err := f.store.Remove(ctx, Key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Debug("recovery_flag_cleared")
	return nil
}

// Active читает флаг. Любая ошибка чтения (включая отсутствие ключа)
// деградирует к false: безопасное значение — "не в recovery".
func (f *Flag) Active(ctx context.Context) bool {
	v, err := f.store.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logctx.From(ctx).Warn("recovery_flag_read_failed", slog.String("err", err.Error()))
		}

		return false
	}

	return v == "true"
}
