package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cozy-creator/tf-adapter/internal/utils/pathutil"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TFADAPTER"

const (
	EnvironmentDev  = "dev"
	EnvironmentTest = "test"
	EnvironmentProd = "prod"
)

type Config struct {
	Host         string         `mapstructure:"host"`
	Port         int            `mapstructure:"port"`
	Environment  string         `mapstructure:"environment"`
	MaxBodyBytes int64          `mapstructure:"max_body_bytes"`
	Backend      *BackendConfig `mapstructure:"backend"`
}

// BackendConfig points at the TensorFlow Serving REST API.
type BackendConfig struct {
	URL       string        `mapstructure:"url"`
	ModelName string        `mapstructure:"model_name"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers every known key so that env-only overrides are
// picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("environment", EnvironmentDev)
	v.SetDefault("max_body_bytes", DefaultMaxBodyBytes)
	v.SetDefault("backend.url", DefaultBackendURL)
	v.SetDefault("backend.model_name", DefaultModelName)
	v.SetDefault("backend.timeout", DefaultBackendTimeout)
}

// ConfigureEnv maps keys to TFADAPTER_* variables.
// Example: backend.model_name -> TFADAPTER_BACKEND_MODEL_NAME
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(
		`-`, `_`, // convert hyphens to underscores
		`.`, `_`, // convert dots to underscores
	))
	v.AutomaticEnv()
}

// LoadEnvAndConfigFiles loads the files named by the env_file and
// config_file keys. Both are optional.
func LoadEnvAndConfigFiles(v *viper.Viper) error {
	if envFile := v.GetString("env_file"); envFile != "" {
		envFile, err := pathutil.ExpandPath(envFile)
		if err != nil {
			return fmt.Errorf("failed to expand env file path: %w", err)
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if configFile := v.GetString("config_file"); configFile != "" {
		configFile, err := pathutil.ExpandPath(configFile)
		if err != nil {
			return fmt.Errorf("failed to expand config file path: %w", err)
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	return nil
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(v *viper.Viper) *Config {
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPort, c.Port))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMaxBody, c.MaxBodyBytes))
	}

	if c.Backend == nil {
		errs = append(errs, ErrBackendNotSet)
		return errors.Join(errs...)
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBackendURL, c.Backend.URL))
	}
	if c.Backend.ModelName == "" {
		errs = append(errs, ErrModelNameNotSet)
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Backend.Timeout))
	}

	return errors.Join(errs...)
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
