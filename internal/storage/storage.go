// storage задаёт контракт локального key-value хранилища приложения —
// аналог durable-стора мобильной платформы. Значения — непрозрачные строки.
//
// Реализации: file (устройство, переживает перезапуск процесса),
// memory (тесты и эфемерные запуски), redis (hosted/dev-оболочка).
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound — ключ отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable — хранилище недоступно (ошибка I/O или соединения).
	// Читающие вызовы деградируют к значению по умолчанию, пишущие —
	// не фатальны для вызывающего (см. recovery.Flag).
	ErrUnavailable = errors.New("storage unavailable")
)

// Store выполняет операции над парами ключ-значение.
type Store interface {
	// Get возвращает значение по ключу (ErrNotFound, если ключа нет).
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение по ключу, перезаписывая существующее.
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ; отсутствие ключа ошибкой не считается.
	Remove(ctx context.Context, key string) error
	// Close освобождает ресурсы хранилища.
	Close() error
}
