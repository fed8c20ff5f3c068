package httpcb

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kurusapp/kurus-mobile/internal/deeplink"
	"github.com/kurusapp/kurus-mobile/internal/models"
	"github.com/kurusapp/kurus-mobile/internal/nav"
	"github.com/kurusapp/kurus-mobile/internal/recovery"
	"github.com/kurusapp/kurus-mobile/internal/storage/memory"
	"github.com/kurusapp/kurus-mobile/mocks"
)

type routerFixture struct {
	client    *mocks.MockClient
	navigator *mocks.MockNavigator
	flag      *recovery.Flag
	srv       http.Handler
}

func newRouterFixture(t *testing.T, opts Options) *routerFixture {
	t.Helper()

	mc := gomock.NewController(t)
	t.Cleanup(mc.Finish)

	f := &routerFixture{
		client:    mocks.NewMockClient(mc),
		navigator: mocks.NewMockNavigator(mc),
		flag:      recovery.NewFlag(memory.New()),
	}

	if opts.Scheme == "" {
		opts.Scheme = "kurusapp"
	}

	parser := deeplink.NewParser(opts.Scheme)
	handler := deeplink.NewHandler(parser, f.client, f.flag, f.navigator)
	f.srv = NewRouter(handler, parser, opts)

	return f
}

func TestRouter_Livez(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{})

	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestRouter_AuthCallback(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{})

	f.client.EXPECT().
		SetSession(gomock.Any(), "abc", "def").
		Return(&models.Session{AccessToken: "abc", RefreshToken: "def"}, nil)
	f.navigator.EXPECT().Replace(nav.RouteResetPassword)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/reset-password?access_token=abc&refresh_token=def&type=recovery", nil)
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Kuruş uygulamasına dönebilirsin")
	require.True(t, f.flag.Active(req.Context()))
}

func TestRouter_ProviderErrorSamePage(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{})

	f.navigator.EXPECT().Replace(nav.RouteSignIn)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback?error=access_denied&error_code=otp_expired&error_description=Email+link+expired", nil)
	f.srv.ServeHTTP(rec, req)

	// Детали провайдера в браузер не утекают: та же нейтральная страница.
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Kuruş uygulamasına dönebilirsin")
	require.NotContains(t, rec.Body.String(), "otp_expired")
}

func TestRouter_NonAuthPathIgnored(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{})

	// Ни вызовов провайдера, ни навигации.
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile?tab=settings", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DevHostRebuild(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{Scheme: "exp", DevHost: "127.0.0.1:8081"})

	f.client.EXPECT().
		SetSession(gomock.Any(), "abc", "def").
		Return(&models.Session{AccessToken: "abc", RefreshToken: "def"}, nil)
	f.navigator.EXPECT().Replace(nav.RouteMainApp)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback?access_token=abc&refresh_token=def&type=signup", nil)
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{})

	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	id := rec.Header().Get("X-Request-Id")
	require.Len(t, id, 32)
}

func TestRequestID_Propagated(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, Options{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	t.Parallel()

	mw := Recover()
	h := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}
