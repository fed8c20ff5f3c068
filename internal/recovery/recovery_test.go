package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kurusapp/kurus-mobile/internal/storage"
	"github.com/kurusapp/kurus-mobile/internal/storage/memory"
	"github.com/kurusapp/kurus-mobile/mocks"
)

func TestFlag_SetClearActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFlag(memory.New())

	require.False(t, f.Active(ctx))

	require.NoError(t, f.Set(ctx))
	require.True(t, f.Active(ctx))

	require.NoError(t, f.Clear(ctx))
	require.False(t, f.Active(ctx))
}

func TestFlag_FixedKey(t *testing.T) {
	t.Parallel()

	// Ключ разделяют обработчик deep link'ов и контроллер сессии.
	require.Equal(t, "kurusapp_recovery_mode", Key)

	ctx := context.Background()
	store := memory.New()
	f := NewFlag(store)

	require.NoError(t, f.Set(ctx))

	v, err := store.Get(ctx, Key)
	require.NoError(t, err)
	require.Equal(t, "true", v)
}

func TestFlag_ActiveDegradesOnReadError(t *testing.T) {
	t.Parallel()

	mc := gomock.NewController(t)
	defer mc.Finish()

	store := mocks.NewMockStore(mc)
	store.EXPECT().
		Get(gomock.Any(), Key).
		Return("", errors.New("disk on fire"))

	f := NewFlag(store)
	// Безопасное значение при сбое чтения — "не в recovery".
	require.False(t, f.Active(context.Background()))
}

func TestFlag_ActiveIgnoresGarbageValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, Key, "yes"))

	f := NewFlag(store)
	require.False(t, f.Active(ctx))
}

func TestFlag_SetWrapsStoreError(t *testing.T) {
	t.Parallel()

	mc := gomock.NewController(t)
	defer mc.Finish()

	store := mocks.NewMockStore(mc)
	store.EXPECT().
		Set(gomock.Any(), Key, "true").
		Return(storage.ErrUnavailable)

	f := NewFlag(store)
	err := f.Set(context.Background())
	require.ErrorIs(t, err, storage.ErrUnavailable)
}
