package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kurusapp/kurus-mobile/internal/config"
	"github.com/kurusapp/kurus-mobile/internal/deeplink"
	"github.com/kurusapp/kurus-mobile/internal/identity/gotrue"
	"github.com/kurusapp/kurus-mobile/internal/recovery"
	"github.com/kurusapp/kurus-mobile/internal/session"
	"github.com/kurusapp/kurus-mobile/internal/storage"
	filestore "github.com/kurusapp/kurus-mobile/internal/storage/file"
	"github.com/kurusapp/kurus-mobile/internal/storage/redisstore"
	"github.com/kurusapp/kurus-mobile/internal/transport/httpcb"
	"github.com/kurusapp/kurus-mobile/internal/ui"
	"github.com/kurusapp/kurus-mobile/internal/validate"
)

func main() {
	var configPath, initialURL string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&initialURL, "url", "", "deep link delivered at launch (early intercept)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Локальное key-value хранилище: Redis для hosted-запусков,
	// файл — для устройства.
	var (
		store storage.Store
		err   error
	)
	if cfg.Storage.RedisURL != "" {
		store, err = redisstore.New(cfg.Storage.RedisURL, "")
	} else {
		store, err = filestore.New(cfg.Storage.Path)
	}
	if err != nil {
		log.Error("storage_open_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage_ready")

	flagStore := recovery.NewFlag(store)

	// Identity-провайдер.
	client := gotrue.New(cfg.Identity.URL, cfg.Identity.AnonKey, cfg.Identity.Timeout, store)

	// Контроллер сессии и оболочка.
	ctrl := session.New(client, flagStore, nil, session.Callbacks{
		SignUp:        cfg.RedirectURI(cfg.App.CallbackPath),
		PasswordReset: cfg.RedirectURI(cfg.App.ResetPath),
	}, log)

	validator := validate.New(cfg.Auth.MinPasswordLength, cfg.Auth.MinNameLength)
	shell := ui.NewShell(ctrl, validator, os.Stdout, log)
	ctrl.SetNavigator(shell)

	if err := ctrl.Start(rootCtx); err != nil {
		log.Error("auth_bootstrap_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer ctrl.Close()

	unmount := shell.Mount()
	defer unmount()

	// Обработчик deep link'ов; схема валидна ровно одна на процесс.
	parser := deeplink.NewParser(cfg.ActiveScheme())
	handler := deeplink.NewHandler(parser, client, flagStore, shell)

	// Ранний перехват: ссылка, с которой процесс был запущен,
	// обрабатывается до старта слушателя.
	if initialURL != "" && parser.IsAuthLink(initialURL) {
		res := handler.Handle(rootCtx, initialURL)
		log.Debug("initial_deeplink_handled",
			slog.Bool("ok", res.OK),
			slog.String("type", string(res.Type)),
		)
	}

	// Loopback-слушатель колбэков ("смонтированная" точка входа).
	devHost := ""
	if cfg.Env == config.EnvLocal {
		devHost = cfg.App.DevHost
	}

	router := httpcb.NewRouter(handler, parser, httpcb.Options{
		Logger:  log,
		Scheme:  cfg.ActiveScheme(),
		DevHost: devHost,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Listener.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("callback_listen_start", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	// Ожидание сигнала завершения или фатальной ошибки слушателя.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("callback_serve_failed", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	log.Info("application_stopped")
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvDev:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
