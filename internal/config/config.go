// Package config loads depthkeeper's YAML configuration, substituting
// ${NAME}-style placeholders from the process environment before decoding.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Env is the deployment environment. It gates behavior such as whether the
// postgres sink recreates its schema on boot.
type Env string

const (
	EnvDev  Env = "DEV"
	EnvProd Env = "PROD"
)

// Settings is the root configuration document.
type Settings struct {
	Env       Env             `yaml:"env"`
	Loader    LoaderConfig    `yaml:"loader"`
	Exchanges ExchangesConfig `yaml:"exchanges"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	NATS      NATSConfig      `yaml:"nats"`
	DataDir   string          `yaml:"data_dir"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// LoaderConfig drives cmd/loader: which symbols to replicate and at what
// exchange-side cadence/depth.
type LoaderConfig struct {
	Symbols    []string `yaml:"symbols"`
	WSSpeed    int      `yaml:"ws_speed"`    // 100 | 250 | 500 (ms)
	DepthLimit int      `yaml:"depth_limit"` // 5 | 10 | 20 | 50 | 100 | 500 | 1000
}

// ExchangesConfig holds per-exchange credentials. Credentials are unused by
// the public endpoints this service calls today, but are carried so a
// future signed endpoint doesn't require a config schema break.
type ExchangesConfig struct {
	BinancePerp BinancePerpConfig `yaml:"binanceperp"`
}

type BinancePerpConfig struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Echo     bool   `yaml:"echo"`
}

// DSN renders the postgres connection string gorm's driver expects.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode,
	)
}

type NATSConfig struct {
	URLs    string `yaml:"urls"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var envTokenPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads the YAML file at path, substitutes ${NAME} tokens from the
// process environment and decodes the result into Settings. An unset
// referenced variable is a fatal configuration error.
func Load(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded, err := substituteEnv(string(raw))
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := yaml.Unmarshal([]byte(expanded), &settings); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func substituteEnv(data string) (string, error) {
	var missing []string
	expanded := envTokenPattern.ReplaceAllStringFunc(data, func(token string) string {
		name := envTokenPattern.FindStringSubmatch(token)[1]
		value, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return token
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("config: unset environment variable(s): %v", missing)
	}
	return expanded, nil
}

func (s Settings) validate() error {
	switch s.Env {
	case EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: env must be DEV or PROD, got %q", s.Env)
	}
	if len(s.Loader.Symbols) == 0 {
		return fmt.Errorf("config: loader.symbols must not be empty")
	}
	if s.Loader.DepthLimit <= 0 {
		return fmt.Errorf("config: loader.depth_limit must be positive")
	}
	if s.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	return nil
}
