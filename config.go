package imagehost

import (
	"context"
	"fmt"
	"time"

	configLoader "github.com/bitmark-inc/config-loader"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const ConfigEnvPrefix = "IMAGE_HOST"

type ServerConfig struct {
	Port           string        `mapstructure:"port" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StoreConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=mongodb postgres sqlite"`
	DBURI    string `mapstructure:"db_uri" validate:"required_if=Driver mongodb"`
	DBName   string `mapstructure:"db_name" validate:"required_if=Driver mongodb"`
	DSN      string `mapstructure:"dsn" validate:"required_unless=Driver mongodb"`
	LogLevel int    `mapstructure:"log_level"`
}

type CloudflareConfig struct {
	AccountID   string `mapstructure:"account_id" validate:"required"`
	AccountHash string `mapstructure:"account_hash" validate:"required"`
	APIToken    string `mapstructure:"api_token" validate:"required_without=APITokenParameter"`
	// APITokenParameter names an SSM parameter holding the api token
	APITokenParameter string `mapstructure:"api_token_parameter"`
}

type Config struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`

	Metrics struct {
		Prefix string `mapstructure:"prefix"`
	} `mapstructure:"metrics"`

	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
}

func setConfigDefaults() {
	viper.SetDefault("environment", DevelopmentEnvironment)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.port", ":8080")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("store.driver", StoreDriverMongodb)
	viper.SetDefault("store.db_name", "image_host")
	viper.SetDefault("metrics.prefix", "image_host")

	// keys without a default are invisible to Unmarshal when only set by env
	viper.SetDefault("debug", false)
	viper.SetDefault("store.log_level", 1)
	for _, key := range []string{
		"sentry.dsn", "store.db_uri", "store.dsn",
		"cloudflare.account_id", "cloudflare.account_hash",
		"cloudflare.api_token", "cloudflare.api_token_parameter",
	} {
		viper.SetDefault(key, "")
	}
}

// LoadConfig reads a local .env, then the config file and environment variables
// through the config loader, and decodes the result into Config.
func LoadConfig() (Config, error) {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	setConfigDefaults()
	configLoader.LoadConfig(ConfigEnvPrefix)

	return DecodeConfig()
}

// DecodeConfig decodes and validates the current viper settings
func DecodeConfig() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParameterStore reads secrets which are kept out of the config file
type ParameterStore interface {
	GetParameterValue(ctx context.Context, name string) (string, error)
}

// ResolveSecrets fills the cloudflare api token from the parameter store when
// an api token parameter is configured
func (c *Config) ResolveSecrets(ctx context.Context, store ParameterStore) error {
	if c.Cloudflare.APITokenParameter == "" {
		return nil
	}

	token, err := store.GetParameterValue(ctx, c.Cloudflare.APITokenParameter)
	if err != nil {
		return fmt.Errorf("read cloudflare api token parameter: %w", err)
	}

	c.Cloudflare.APIToken = token
	return nil
}
