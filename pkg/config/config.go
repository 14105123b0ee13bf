package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	StorageDriver string        `env:"MART_STORAGE_DRIVER" envDefault:"file"`
	StorageDir    string        `env:"MART_STORAGE_DIR"`
	CartKey       string        `env:"MART_CART_KEY" envDefault:"cart"`
	WatchInterval time.Duration `env:"MART_WATCH_INTERVAL" envDefault:"500ms"`

	BackendURL     string        `env:"MART_BACKEND_URL" envDefault:"http://localhost:5000"`
	BackendTimeout time.Duration `env:"MART_BACKEND_TIMEOUT" envDefault:"10s"`

	PlaceholderImage string          `env:"MART_PLACEHOLDER_IMAGE" envDefault:"https://via.placeholder.com/80"`
	CurrencySymbol   string          `env:"MART_CURRENCY_SYMBOL" envDefault:"₹"`
	ShippingFee      decimal.Decimal `env:"MART_SHIPPING_FEE" envDefault:"0"`
}

// Load reads the configuration from the environment and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case "file", "sqlite", "bolt", "memory":
	default:
		return Config{}, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if strings.TrimSpace(cfg.CartKey) == "" {
		return Config{}, errors.New("cart key must not be empty")
	}
	if cfg.ShippingFee.IsNegative() {
		return Config{}, errors.New("shipping fee must not be negative")
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.StorageDir) == "" {
		cfg.StorageDir = defaultStorageDir()
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return cfg, nil
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".collegemart"
	}
	return filepath.Join(home, ".collegemart")
}
