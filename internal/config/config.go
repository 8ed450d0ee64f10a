package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLength = 32
)

// Config is built once at startup and handed to every component that needs
// it. Nothing reads the environment after Load returns.
type Config struct {
	Env                string   `yaml:"env"`
	Port               int      `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	BcryptCost         int      `yaml:"bcrypt_cost"`

	DB  DBConfig    `yaml:"db"`
	JWT TokenConfig `yaml:"jwt"`
}

type DBConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Schema     string `yaml:"schema"`
	SQLitePath string `yaml:"sqlite_path"`
	LogLevel   string `yaml:"log_level"`
}

// TokenConfig holds the signing secret and the claim values every issued
// token carries.
type TokenConfig struct {
	Key      string        `yaml:"key"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	TTL      time.Duration `yaml:"ttl"`
	Leeway   time.Duration `yaml:"leeway"`
}

// Default returns the configuration used before any file or environment
// overrides are applied. It deliberately has no signing key.
func Default() *Config {
	return &Config{
		Env:                EnvProduction,
		Port:               8080,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		BcryptCost:         12,
		DB: DBConfig{
			Driver:     DriverPostgres,
			Port:       "5432",
			SQLitePath: "taskapi.db",
			LogLevel:   "warn",
		},
		JWT: TokenConfig{
			Issuer:   "TaskApi",
			Audience: "TaskApiClient",
			TTL:      12 * time.Hour,
			Leeway:   2 * time.Minute,
		},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then the process environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.JWT.Key == "" && cfg.IsDevelopment() {
		key, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generating development signing key: %w", err)
		}
		log.Println("WARNING: JWT_KEY not set, using a random per-process signing key (development only)")
		cfg.JWT.Key = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}
	if c.JWT.Key == "" {
		errs = append(errs, errors.New("JWT_KEY is required"))
	} else if len(c.JWT.Key) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_KEY must be at least %d bytes", minSecretLength))
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		errs = append(errs, errors.New("JWT issuer and audience must not be empty"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.JWT.Leeway < 0 {
		errs = append(errs, errors.New("JWT_LEEWAY must not be negative"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range [4,31]", c.BcryptCost))
	}
	return errors.Join(errs...)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	setString(&c.Env, "APP_ENV")
	if err := setInt(&c.Port, "PORT"); err != nil {
		errs = append(errs, err)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	if err := setInt(&c.BcryptCost, "BCRYPT_COST"); err != nil {
		errs = append(errs, err)
	}

	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.Host, "BLUEPRINT_DB_HOST")
	setString(&c.DB.Port, "BLUEPRINT_DB_PORT")
	setString(&c.DB.Username, "BLUEPRINT_DB_USERNAME")
	setString(&c.DB.Password, "BLUEPRINT_DB_PASSWORD")
	setString(&c.DB.Database, "BLUEPRINT_DB_DATABASE")
	setString(&c.DB.Schema, "BLUEPRINT_DB_SCHEMA")
	setString(&c.DB.SQLitePath, "SQLITE_PATH")
	setString(&c.DB.LogLevel, "DB_LOG_LEVEL")

	setString(&c.JWT.Key, "JWT_KEY")
	setString(&c.JWT.Issuer, "JWT_ISSUER")
	setString(&c.JWT.Audience, "JWT_AUDIENCE")
	if err := setDuration(&c.JWT.TTL, "JWT_TTL"); err != nil {
		errs = append(errs, err)
	}
	if err := setDuration(&c.JWT.Leeway, "JWT_LEEWAY"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, minSecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
