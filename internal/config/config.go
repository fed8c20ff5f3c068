// config предоставляет структуру конфигурации приложения и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения исполнения.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config — корневая конфигурация приложения.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	App      AppConfig      `yaml:"app"`
	Identity IdentityConfig `yaml:"identity"`
	Storage  StorageConfig  `yaml:"storage"`
	Listener ListenerConfig `yaml:"listener"`
	Auth     AuthConfig     `yaml:"auth"`
}

// AppConfig — схемы deep link'ов и пути колбэков.
//
// В одном запущенном экземпляре валидна ровно одна схема: в local-окружении
// ссылки приходят через dev-хост (exp://<dev_host>/--/<path>), в остальных —
// через продакшен-схему приложения (kurusapp://<path>).
type AppConfig struct {
	Scheme       string `yaml:"scheme" env:"APP_SCHEME" env-default:"kurusapp"`
	DevScheme    string `yaml:"dev_scheme" env:"APP_DEV_SCHEME" env-default:"exp"`
	DevHost      string `yaml:"dev_host" env:"APP_DEV_HOST" env-default:"127.0.0.1:8081"`
	CallbackPath string `yaml:"callback_path" env:"APP_CALLBACK_PATH" env-default:"auth/callback"`
	ResetPath    string `yaml:"reset_path" env:"APP_RESET_PATH" env-default:"reset-password"`
}

// IdentityConfig — параметры доступа к identity-провайдеру.
type IdentityConfig struct {
	URL     string        `yaml:"url" env:"IDENTITY_URL" env-required:"true"`
	AnonKey string        `yaml:"anon_key" env:"IDENTITY_ANON_KEY" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env:"IDENTITY_TIMEOUT" env-default:"10s"`
}

// StorageConfig — параметры локального key-value хранилища.
// Если RedisURL задан, используется Redis-бэкенд; иначе — файловый
// стор по пути Path.
type StorageConfig struct {
	Path     string `yaml:"path" env:"STORAGE_PATH" env-default:"kurus-store.json"`
	RedisURL string `yaml:"redis_url" env:"STORAGE_REDIS_URL"`
}

// ListenerConfig — сетевые настройки loopback-слушателя колбэков.
type ListenerConfig struct {
	Host string `yaml:"host" env:"LISTENER_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"LISTENER_PORT" env-default:"8081"`
}

// Addr возвращает адрес в формате host:port.
func (l ListenerConfig) Addr() string {
	return net.JoinHostPort(l.Host, l.Port)
}

// AuthConfig — политики валидации форм.
type AuthConfig struct {
	MinPasswordLength int `yaml:"min_password_length" env:"MIN_PASSWORD_LENGTH" env-default:"6"`
	MinNameLength     int `yaml:"min_name_length" env:"MIN_NAME_LENGTH" env-default:"2"`
}

// ActiveScheme возвращает единственную валидную схему deep link'ов
// для текущего окружения.
func (c *Config) ActiveScheme() string {
	if c.Env == EnvLocal {
		return c.App.DevScheme
	}

	return c.App.Scheme
}

// RedirectURI собирает зарегистрированный callback URL для пути path.
// Формат повторяет то, что провайдеру сообщается при регистрации:
//   - local: exp://<dev_host>/--/<path>;
//   - dev/prod: kurusapp://<path>.
func (c *Config) RedirectURI(path string) string {
	if c.Env == EnvLocal {
		return fmt.Sprintf("%s://%s/--/%s", c.App.DevScheme, c.App.DevHost, path)
	}

	return fmt.Sprintf("%s://%s", c.App.Scheme, path)
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
