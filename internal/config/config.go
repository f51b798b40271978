// Package config carga la configuración de warden: YAML + overrides por
// variables de entorno, con defaults y validación.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Env     string `yaml:"env"` // dev|prod
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver          string `yaml:"driver"` // postgres|memory
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr"`
		DB       int    `yaml:"db"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	JWT struct {
		Issuer             string `yaml:"issuer"`
		Audience           string `yaml:"audience"`
		TTL                string `yaml:"ttl"`
		Algorithm          string `yaml:"algorithm"`
		PrivateKeyPath     string `yaml:"private_key_path"`
		PrivateKeyPassword string `yaml:"private_key_password"`
		PublicKeyPath      string `yaml:"public_key_path"`
		HashSalt           string `yaml:"hash_salt"`
		HashMinLength      int    `yaml:"hash_min_length"`
	} `yaml:"jwt"`

	Auth struct {
		Header            string   `yaml:"header"`
		RelaxedRoutes     []string `yaml:"relaxed_routes"`
		Rules             []string `yaml:"rules"`
		SecurityAdminRole string   `yaml:"security_admin_role"`
	} `yaml:"auth"`

	Locale struct {
		Default string `yaml:"default"`
	} `yaml:"locale"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Backend string `yaml:"backend"` // memory|redis
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee path (si no es vacío), aplica defaults y luego variables de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "warden"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "warden:rl:"
	}
	if c.JWT.TTL == "" {
		c.JWT.TTL = "15m"
	}
	if c.JWT.Algorithm == "" {
		c.JWT.Algorithm = "RS512"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "warden"
	}
	if c.JWT.HashMinLength == 0 {
		c.JWT.HashMinLength = 8
	}
	if c.Auth.Header == "" {
		c.Auth.Header = "Authorization"
	}
	if c.Auth.Rules == nil {
		c.Auth.Rules = []string{"security_admin"}
	}
	if c.Auth.SecurityAdminRole == "" {
		c.Auth.SecurityAdminRole = "role.security.admin"
	}
	if c.Locale.Default == "" {
		c.Locale.Default = "en"
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_OPEN_CONNS"); ok {
		c.Storage.MaxOpenConns = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_AUDIENCE"); ok {
		c.JWT.Audience = v
	}
	if v, ok := getEnvStr("JWT_TTL"); ok {
		c.JWT.TTL = v
	}
	if v, ok := getEnvStr("JWT_ALGORITHM"); ok {
		c.JWT.Algorithm = v
	}
	if v, ok := getEnvStr("JWT_PRIVATE_KEY_PATH"); ok {
		c.JWT.PrivateKeyPath = v
	}
	if v, ok := getEnvStr("JWT_PRIVATE_KEY_PASSWORD"); ok {
		c.JWT.PrivateKeyPassword = v
	}
	if v, ok := getEnvStr("JWT_PUBLIC_KEY_PATH"); ok {
		c.JWT.PublicKeyPath = v
	}
	if v, ok := getEnvStr("JWT_HASH_SALT"); ok {
		c.JWT.HashSalt = v
	}
	if v, ok := getEnvInt("JWT_HASH_MIN_LENGTH"); ok {
		c.JWT.HashMinLength = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_HEADER"); ok {
		c.Auth.Header = v
	}
	if v, ok := getEnvCSV("AUTH_RELAXED_ROUTES"); ok {
		c.Auth.RelaxedRoutes = v
	}
	if v, ok := getEnvCSV("AUTH_RULES"); ok {
		c.Auth.Rules = v
	}
	if v, ok := getEnvStr("AUTH_SECURITY_ADMIN_ROLE"); ok {
		c.Auth.SecurityAdminRole = v
	}

	// LOCALE
	if v, ok := getEnvStr("LOCALE_DEFAULT"); ok {
		c.Locale.Default = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate revisa valores críticos; devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"jwt.ttl":                 c.JWT.TTL,
		"rate.login.window":       c.Rate.Login.Window,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, v))
		}
	}
	if c.Storage.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.ConnMaxLifetime); err != nil {
			errs = append(errs, fmt.Errorf("storage.conn_max_lifetime: %w", err))
		}
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unsupported %q", c.Storage.Driver))
	}
	if c.JWT.PrivateKeyPath == "" {
		errs = append(errs, errors.New("jwt.private_key_path is required"))
	}
	if c.JWT.HashSalt == "" {
		errs = append(errs, errors.New("jwt.hash_salt is required"))
	}
	if c.Rate.Enabled {
		switch c.Rate.Backend {
		case "memory":
		case "redis":
			if c.Redis.Addr == "" {
				errs = append(errs, errors.New("redis.addr is required for rate.backend=redis"))
			}
		default:
			errs = append(errs, fmt.Errorf("rate.backend: unsupported %q", c.Rate.Backend))
		}
	}
	return errors.Join(errs...)
}

func mustDur(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func (c *Config) JWTTTL() time.Duration       { return mustDur(c.JWT.TTL, 15*time.Minute) }
func (c *Config) ReadTimeout() time.Duration  { return mustDur(c.Server.ReadTimeout, 10*time.Second) }
func (c *Config) WriteTimeout() time.Duration { return mustDur(c.Server.WriteTimeout, 30*time.Second) }
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDur(c.Server.ShutdownTimeout, 15*time.Second)
}
func (c *Config) LoginRateWindow() time.Duration { return mustDur(c.Rate.Login.Window, time.Minute) }
func (c *Config) ConnMaxLifetime() time.Duration { return mustDur(c.Storage.ConnMaxLifetime, 0) }
