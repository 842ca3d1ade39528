package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config is the back-office API configuration.
type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Attar"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"attar"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Secret is shared with every terminal.
		Secret string `envconfig:"TERMINAL_SECRET" required:"true"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Catalog struct {
		DefaultTaxRate decimal.Decimal `envconfig:"DEFAULT_TAX_RATE" default:"5"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// TerminalConfig is the configuration of one point-of-sale terminal.
type TerminalConfig struct {
	Terminal struct {
		ID           string `envconfig:"TERMINAL_ID" required:"true"`
		StoreName    string `envconfig:"STORE_NAME" default:"Attar"`
		StoreNameAr  string `envconfig:"STORE_NAME_AR" default:"عطار"`
		Currency     string `envconfig:"CURRENCY" default:"AED"`
		ReceiptWidth int    `envconfig:"RECEIPT_WIDTH" default:"40"`
		Timezone     string `envconfig:"TIMEZONE" default:"Local"`

		// Printer is a device path for raw ESC/POS output, e.g. /dev/usb/lp0.
		Printer string `envconfig:"PRINTER_DEVICE"`
		LogFile string `envconfig:"LOG_FILE" default:"attar-pos.log"`
	}

	Local struct {
		DBPath string `envconfig:"LOCAL_DB_PATH" default:"attar-pos.db"`
	}

	Remote struct {
		// URL is empty when the terminal runs fully offline.
		URL      string        `envconfig:"REMOTE_URL"`
		Secret   string        `envconfig:"TERMINAL_SECRET"`
		TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"5m"`
	}

	Sync struct {
		Interval        time.Duration `envconfig:"SYNC_INTERVAL" default:"30s"`
		ProbeInterval   time.Duration `envconfig:"PROBE_INTERVAL" default:"10s"`
		PushesPerSecond float64       `envconfig:"SYNC_RATE" default:"5"`
		Batch           int           `envconfig:"SYNC_BATCH" default:"100"`
	}

	Catalog struct {
		CSV            string          `envconfig:"CATALOG_CSV"`
		Charset        string          `envconfig:"CATALOG_CHARSET"`
		DefaultTaxRate decimal.Decimal `envconfig:"DEFAULT_TAX_RATE" default:"5"`
	}
}

// Location resolves Terminal.Timezone.
func (c *TerminalConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Terminal.Timezone)
}

func LoadTerminal() (*TerminalConfig, error) {
	var cfg TerminalConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Terminal.ID == "" {
		return nil, fmt.Errorf("failed to process config: TERMINAL_ID is empty")
	}

	if cfg.Remote.URL != "" && cfg.Remote.Secret == "" {
		return nil, fmt.Errorf("failed to process config: TERMINAL_SECRET is required with REMOTE_URL")
	}

	return &cfg, nil
}
