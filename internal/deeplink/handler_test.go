package deeplink

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kurusapp/kurus-mobile/internal/identity"
	"github.com/kurusapp/kurus-mobile/internal/models"
	"github.com/kurusapp/kurus-mobile/internal/nav"
	"github.com/kurusapp/kurus-mobile/internal/recovery"
	"github.com/kurusapp/kurus-mobile/internal/storage/memory"
	"github.com/kurusapp/kurus-mobile/mocks"
)

func testSession() *models.Session {
	return &models.Session{
		AccessToken:  "abc",
		RefreshToken: "def",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestHandle_RecoveryLink(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	ctx := context.Background()

	// Флаг взводится до установки сессии: к моменту вызова SetSession
	// durable-состояние уже должно быть recovery.
	client.EXPECT().
		SetSession(gomock.Any(), "abc", "def").
		DoAndReturn(func(ctx context.Context, _, _ string) (*models.Session, error) {
			require.True(t, flag.Active(ctx))
			return testSession(), nil
		})
	navigator.EXPECT().Replace(nav.RouteResetPassword)

	res := h.Handle(ctx, "kurusapp://reset-password?access_token=abc&refresh_token=def&type=recovery")
	require.True(t, res.OK)
	require.Equal(t, models.LinkRecovery, res.Type)
	require.Empty(t, res.Err)
	require.True(t, flag.Active(ctx))
}

func TestHandle_SignupLink(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	ctx := context.Background()

	client.EXPECT().SetSession(gomock.Any(), "abc", "def").Return(testSession(), nil)
	navigator.EXPECT().Replace(nav.RouteMainApp)

	res := h.Handle(ctx, "kurusapp://auth/callback?access_token=abc&refresh_token=def&type=signup")
	require.True(t, res.OK)
	require.Equal(t, models.LinkSignup, res.Type)
	// Не recovery — durable-флаг не трогаем.
	require.False(t, flag.Active(ctx))
}

func TestHandle_InvalidScheme(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	h := NewHandler(NewParser("kurusapp"), client, recovery.NewFlag(memory.New()), navigator)

	// Ни вызовов провайдера, ни навигации.
	res := h.Handle(context.Background(), "https://evil.example/?access_token=abc&refresh_token=def")
	require.False(t, res.OK)
	require.Equal(t, "Invalid URL scheme", res.Err)
}

func TestHandle_ProviderError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	navigator.EXPECT().Replace(nav.RouteSignIn)

	res := h.Handle(context.Background(),
		"kurusapp://auth/callback?error=access_denied&error_code=otp_expired&error_description=Email+link+expired")
	require.False(t, res.OK)
	require.Equal(t, "otp_expired: Email link expired", res.Err)
	require.False(t, flag.Active(context.Background()))
}

func TestHandle_ProviderError_NoDescription(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	h := NewHandler(NewParser("kurusapp"), client, recovery.NewFlag(memory.New()), navigator)

	navigator.EXPECT().Replace(nav.RouteSignIn)

	res := h.Handle(context.Background(), "kurusapp://auth/callback?error=access_denied")
	require.False(t, res.OK)
	require.Equal(t, "access_denied: Authentication failed", res.Err)
}

func TestHandle_SessionFailure_UndoesRecoveryFlag(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	ctx := context.Background()

	client.EXPECT().
		SetSession(gomock.Any(), "abc", "def").
		Return(nil, identity.ErrInvalidToken)

	res := h.Handle(ctx, "kurusapp://reset-password?access_token=abc&refresh_token=def&type=recovery")
	require.False(t, res.OK)
	require.Equal(t, "Failed to create session", res.Err)
	// Откат шага взведения флага: неуспех не оставляет durable-recovery.
	require.False(t, flag.Active(ctx))
}

func TestHandle_VerifyOTP_Recovery(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	ctx := context.Background()

	client.EXPECT().
		VerifyOTP(gomock.Any(), "deadbeef", identity.OTPRecovery).
		Return(nil)
	navigator.EXPECT().Replace(nav.RouteResetPassword)

	res := h.Handle(ctx, "kurusapp://verify?token_hash=deadbeef&type=recovery")
	require.True(t, res.OK)
	require.Equal(t, models.LinkRecovery, res.Type)
	require.True(t, flag.Active(ctx))
}

func TestHandle_VerifyOTP_Failure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	ctx := context.Background()

	client.EXPECT().
		VerifyOTP(gomock.Any(), "deadbeef", identity.OTPRecovery).
		Return(identity.ErrInvalidToken)

	res := h.Handle(ctx, "kurusapp://verify?token_hash=deadbeef&type=recovery")
	require.False(t, res.OK)
	require.False(t, flag.Active(ctx))
}

func TestHandle_NoTokens(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	h := NewHandler(NewParser("kurusapp"), client, recovery.NewFlag(memory.New()), navigator)

	// Распознанный auth-параметр есть, но ни пары токенов, ни хэша.
	res := h.Handle(context.Background(), "kurusapp://auth/callback?type=recovery")
	require.False(t, res.OK)
	require.Equal(t, "No authentication tokens found", res.Err)
}

func TestHandle_PanicRecovered(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	navigator := mocks.NewMockNavigator(ctrl)
	h := NewHandler(NewParser("kurusapp"), client, recovery.NewFlag(memory.New()), navigator)

	client.EXPECT().
		SetSession(gomock.Any(), "abc", "def").
		DoAndReturn(func(context.Context, string, string) (*models.Session, error) {
			panic("boom")
		})
	navigator.EXPECT().Replace(nav.RouteSignIn)

	res := h.Handle(context.Background(), "kurusapp://auth/callback?access_token=abc&refresh_token=def")
	require.False(t, res.OK)
	require.Equal(t, "Failed to parse URL", res.Err)
}

// singleUseClient имитирует одноразовость токенов: первый SetSession
// потребляет пару, все последующие отвергаются.
type singleUseClient struct {
	identity.Client

	used atomic.Bool
}

func (c *singleUseClient) SetSession(_ context.Context, _, _ string) (*models.Session, error) {
	if c.used.Swap(true) {
		return nil, identity.ErrInvalidToken
	}

	return testSession(), nil
}

// recordingNav потокобезопасно копит переходы.
type recordingNav struct {
	mu     sync.Mutex
	routes []nav.Route
}

func (n *recordingNav) Replace(route nav.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.routes = append(n.routes, route)
}

// Ссылка доставляется дважды (ранний перехват и слушатель оболочки),
// возможно конкурентно. Ровно один прогон потребляет токены и
// навигирует; второй деградирует к неуспеху без навигации.
func TestHandle_DuplicateDelivery(t *testing.T) {
	t.Parallel()

	const raw = "kurusapp://reset-password?access_token=abc&refresh_token=def&type=recovery"

	client := &singleUseClient{}
	navigator := &recordingNav{}
	flag := recovery.NewFlag(memory.New())
	h := NewHandler(NewParser("kurusapp"), client, flag, navigator)

	ctx := context.Background()

	results := make([]Result, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.Handle(ctx, raw)
		}(i)
	}
	wg.Wait()

	var okCount int
	for _, res := range results {
		if res.OK {
			okCount++
			require.Equal(t, models.LinkRecovery, res.Type)
		} else {
			require.Equal(t, "Failed to create session", res.Err)
		}
	}
	require.Equal(t, 1, okCount)

	navigator.mu.Lock()
	defer navigator.mu.Unlock()
	require.Equal(t, []nav.Route{nav.RouteResetPassword}, navigator.routes)
}
