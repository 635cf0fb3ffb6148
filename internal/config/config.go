// config — источник загрузки конфигурации клиента Vensa.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	API         APIConfig         `yaml:"api"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

// APIConfig — параметры доступа к REST-бэкенду.
type APIConfig struct {
	// BaseURL — корень API, например "https://api.vensa.example/api".
	BaseURL string `yaml:"base_url" env:"VENSA_API_URL" env-default:"http://localhost:8000/api"`
	// Timeout — дедлайн одного исходящего запроса.
	Timeout time.Duration `yaml:"timeout" env:"VENSA_API_TIMEOUT" env-default:"15s"`
	// AppName — отображаемое имя приложения; уходит в User-Agent.
	AppName string `yaml:"app_name" env:"VENSA_APP_NAME" env-default:"Vensa"`
}

// CredentialsConfig — размещение файла с токенами.
type CredentialsConfig struct {
	// Path — путь к файлу; пустой — дефолт в пользовательском конфиг-каталоге.
	Path string `yaml:"path" env:"VENSA_CREDENTIALS_PATH" env-default:""`
}

// ResolvePath возвращает путь к файлу токенов: заданный явно
// или <user-config-dir>/vensa/credentials.json.
func (c CredentialsConfig) ResolvePath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve credentials path: %w", err)
	}

	return filepath.Join(dir, "vensa", "credentials.json"), nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

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

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
