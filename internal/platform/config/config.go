package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ASSETRACK-backend/internal/platform/db"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DefaultPath = "config/config.yaml"

	envDBPassword = "ASSETS_DB_PASSWORD"
	envJWTSecret  = "ASSETS_JWT_SECRET"
)

type Server struct {
	Addr string `yaml:"addr"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type Config struct {
	Version     string            `yaml:"version"`
	Mode        string            `yaml:"mode"`
	Server      Server            `yaml:"server"`
	DB          db.DatabaseConfig `yaml:"database"`
	Certificate Certs             `yaml:"certificate"`
	Auth        Auth              `yaml:"auth"`
	CORS        CORS              `yaml:"cors"`
}

// Load は YAML を読み、.env と環境変数で上書きする
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(buf)
	if err != nil {
		return nil, err
	}

	// .env は任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse は YAML を解釈して既定値を補う（環境変数は見ない）
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8443"
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = db.DriverMySQL
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{"http://localhost:3000"}
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envDBPassword); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv(envJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.DB.Driver != db.DriverMySQL && c.DB.Driver != db.DriverSQLite {
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}
	if c.DB.Driver == db.DriverSQLite && c.DB.Path == "" {
		return errors.New("database.path is required for sqlite")
	}
	if c.Mode == ModeRelease && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in release mode")
	}
	return nil
}

// TLSFiles: モードに応じた証明書パス。未設定なら空文字
func (c *Config) TLSFiles() (certFile, keyFile string) {
	if c.Certificate.Cert == "" || c.Certificate.Key == "" {
		return "", ""
	}
	dir := "config/tls/release"
	if c.Mode == ModeDev {
		dir = "config/tls/dev"
	}
	return fmt.Sprintf("%s/%s", dir, c.Certificate.Cert), fmt.Sprintf("%s/%s", dir, c.Certificate.Key)
}
