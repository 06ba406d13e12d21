package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		// Token estático para la API admin (env-only en prod).
		AdminToken string `yaml:"admin_token"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer    string `yaml:"issuer"`
		AccessTTL string `yaml:"access_ttl"`
		KID       string `yaml:"kid"`
	} `yaml:"jwt"`

	Exchange struct {
		// TTL del cache de policies por cliente.
		PolicyCacheTTL string `yaml:"policy_cache_ttl"`
	} `yaml:"exchange"`

	Sweep struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval"`
	} `yaml:"sweep"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`

		// Límite específico del token endpoint.
		Token struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"token"`
	} `yaml:"rate"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.KID == "" {
		c.JWT.KID = "active"
	}
	if c.Exchange.PolicyCacheTTL == "" {
		c.Exchange.PolicyCacheTTL = "30s"
	}
	if c.Sweep.Interval == "" {
		c.Sweep.Interval = "5m"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Token.Limit == 0 {
		c.Rate.Token.Limit = 30
	}
	if c.Rate.Token.Window == "" {
		c.Rate.Token.Window = "1m"
	}

	// validate string durations
	for _, d := range []string{
		c.Storage.Postgres.ConnMaxLifetime,
		c.JWT.AccessTTL,
		c.Exchange.PolicyCacheTTL,
		c.Sweep.Interval,
		c.Rate.Window,
		c.Rate.Token.Window,
		c.Cache.Memory.DefaultTTL,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}

	// Overrides por env + salvaguarda prod
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate chequea coherencia mínima para arrancar.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn is required for postgres")
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return fmt.Errorf("config: cache.redis.addr is required")
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		return fmt.Errorf("config: jwt.issuer is required")
	}
	// En prod el admin token no puede quedar vacío.
	if strings.EqualFold(c.App.Env, "prod") && strings.TrimSpace(c.Server.AdminToken) == "" {
		return fmt.Errorf("config: server.admin_token is required in prod")
	}
	return nil
}

// AccessTTL retorna la duración parseada (Load ya validó el string).
func (c *Config) AccessTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTTL)
	return d
}

// PolicyCacheTTL retorna la duración parseada del cache de policies.
func (c *Config) PolicyCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Exchange.PolicyCacheTTL)
	return d
}

// SweepInterval retorna la duración parseada del sweep.
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Sweep.Interval)
	return d
}

// ---- Helpers env ----

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
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("ADMIN_TOKEN"); ok {
		c.Server.AdminToken = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	// EXCHANGE / SWEEP
	if v, ok := getEnvStr("EXCHANGE_POLICY_CACHE_TTL"); ok {
		c.Exchange.PolicyCacheTTL = v
	}
	if v, ok := getEnvBool("SWEEP_ENABLED"); ok {
		c.Sweep.Enabled = v
	}
	if v, ok := getEnvStr("SWEEP_INTERVAL"); ok {
		c.Sweep.Interval = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvInt("RATE_TOKEN_LIMIT"); ok {
		c.Rate.Token.Limit = v
	}
	if v, ok := getEnvStr("RATE_TOKEN_WINDOW"); ok {
		c.Rate.Token.Window = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}
