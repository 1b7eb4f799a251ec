package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ASSETRACK-backend/internal/platform/db"
)

const sample = `
version: "2.0"
mode: release
server:
  addr: ":9000"
database:
  driver: mysql
  host: 127.0.0.1
  port: 3306
  user: assets
  password: from-yaml
  dbname: assets
certificate:
  cert: server.crt
  key: server.key
auth:
  jwt_secret: yaml-secret
  token_ttl: 2h
cors:
  allow_origins: ["https://assets.example.org"]
`

func TestParse_Fields(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, db.DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://assets.example.org"}, cfg.CORS.AllowOrigins)
	require.NoError(t, cfg.Validate())
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("mode: dev\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, db.DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("mode: [dev"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		cfg Config
		ok  bool
	}{
		"dev without secret":     {Config{Mode: ModeDev, DB: db.DatabaseConfig{Driver: db.DriverMySQL}}, true},
		"release without secret": {Config{Mode: ModeRelease, DB: db.DatabaseConfig{Driver: db.DriverMySQL}}, false},
		"unknown mode":           {Config{Mode: "prod", DB: db.DatabaseConfig{Driver: db.DriverMySQL}}, false},
		"unknown driver":         {Config{Mode: ModeDev, DB: db.DatabaseConfig{Driver: "postgres"}}, false},
		"sqlite without path":    {Config{Mode: ModeDev, DB: db.DatabaseConfig{Driver: db.DriverSQLite}}, false},
		"sqlite with path":       {Config{Mode: ModeDev, DB: db.DatabaseConfig{Driver: db.DriverSQLite, Path: "a.db"}}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	t.Setenv(envDBPassword, "from-env")
	t.Setenv(envJWTSecret, "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DB.Password)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestTLSFiles(t *testing.T) {
	cfg := &Config{Mode: ModeDev, Certificate: Certs{Cert: "a.crt", Key: "a.key"}}
	c, k := cfg.TLSFiles()
	assert.Equal(t, "config/tls/dev/a.crt", c)
	assert.Equal(t, "config/tls/dev/a.key", k)

	cfg.Mode = ModeRelease
	c, _ = cfg.TLSFiles()
	assert.Equal(t, "config/tls/release/a.crt", c)

	cfg.Certificate = Certs{}
	c, k = cfg.TLSFiles()
	assert.Empty(t, c)
	assert.Empty(t, k)
}
