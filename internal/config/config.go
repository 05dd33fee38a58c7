package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

const (
	defaultAddress           = ":8080"
	defaultDatabaseDriver    = "postgres"
	defaultGatewayAPIAddress = "https://api-merchant.payos.vn"
	defaultSignatureMode     = "enforce"
	defaultLogLevel          = "info"
	defaultEnvFile           = ".env"
)

type Config struct {
	Address           string `env:"RUN_ADDRESS"`
	DatabaseURI       string `env:"DATABASE_URI"`
	DatabaseDriver    string `env:"DATABASE_DRIVER"`
	ChecksumKey       string `env:"PAYOS_CHECKSUM_KEY"`
	ClientID          string `env:"PAYOS_CLIENT_ID"`
	APIKey            string `env:"PAYOS_API_KEY"`
	GatewayAPIAddress string `env:"PAYOS_API_ADDRESS"`
	WebhookURL        string `env:"WEBHOOK_URL"`
	SignatureMode     string `env:"SIGNATURE_MODE"`
	JWTSecret         string `env:"JWT_SECRET"`
	LogLevel          string `env:"LOG_LEVEL"`
}

func NewConfig() (Config, error) {
	return newConfig(os.Args[1:])
}

func newConfig(args []string) (Config, error) {
	config := Config{
		Address:           defaultAddress,
		DatabaseDriver:    defaultDatabaseDriver,
		GatewayAPIAddress: defaultGatewayAPIAddress,
		SignatureMode:     defaultSignatureMode,
		LogLevel:          defaultLogLevel,
	}

	if err := loadEnvFile(defaultEnvFile); err != nil {
		return Config{}, err
	}

	if err := config.parseFlags(args); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	if err := config.validateConfig(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// loadEnvFile fills unset variables from path; real environment wins.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error load env file: %w", err)
	}

	return nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("paywebhook", flag.ContinueOnError)

	fs.StringVar(&c.Address, "a", c.Address, "Service address")
	fs.StringVar(&c.DatabaseURI, "d", c.DatabaseURI, "Database URI")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "Database driver: postgres or sqlite")
	fs.StringVar(&c.ChecksumKey, "k", c.ChecksumKey, "Payment gateway checksum key")
	fs.StringVar(&c.WebhookURL, "w", c.WebhookURL, "Public webhook URL to register with the gateway")
	fs.StringVar(&c.SignatureMode, "signature-mode", c.SignatureMode, "Signature policy: enforce or report")

	return fs.Parse(args)
}

func (c *Config) validateConfig() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}

	if _, err := url.ParseRequestURI(c.GatewayAPIAddress); err != nil {
		return fmt.Errorf("invalid gateway address: %w", err)
	}

	if c.WebhookURL != "" {
		if _, err := url.ParseRequestURI(c.WebhookURL); err != nil {
			return fmt.Errorf("invalid webhook url: %w", err)
		}
	}

	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	switch c.SignatureMode {
	case "enforce", "report":
	default:
		return fmt.Errorf("unsupported signature mode %q", c.SignatureMode)
	}

	for name, value := range map[string]string{
		"DATABASE_URI":       c.DatabaseURI,
		"PAYOS_CHECKSUM_KEY": c.ChecksumKey,
		"JWT_SECRET":         c.JWTSecret,
	} {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	return nil
}
