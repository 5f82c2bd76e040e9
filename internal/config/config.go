package config

import "github.com/caarlos0/env/v10"

// DefaultAuthSecret es el secreto de desarrollo; debe reemplazarse en produccion.
const DefaultAuthSecret = "a-very-long-secret-key-change-this-in-production"

// Config centraliza la configuracion del gateway.
type Config struct {
	HTTPPort         string `env:"HTTP_PORT" envDefault:"8001"`
	AuthSecret       string `env:"AUTH_SECRET"`
	SessionTTLHours  int    `env:"SESSION_TTL_HOURS" envDefault:"168"`
	DatabaseURL      string `env:"DATABASE_URL"`
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
	QueryBaseURL     string `env:"QUERY_BASE_URL" envDefault:"http://localhost:8000"`
	QueryAskPath     string `env:"QUERY_ASK_PATH" envDefault:"/ask"`
	QueryHealthPath  string `env:"QUERY_HEALTH_PATH" envDefault:"/health"`
	ProxyPrefix      string `env:"PROXY_PREFIX" envDefault:"/ask"`
	ProxyRequireAuth bool   `env:"PROXY_REQUIRE_AUTH" envDefault:"false"`
	AuthRatePerMin   int    `env:"AUTH_RATE_PER_MIN" envDefault:"30"`
	AuthRateBurst    int    `env:"AUTH_RATE_BURST" envDefault:"10"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = DefaultAuthSecret
	}
	return &cfg, nil
}

// UsingDefaultSecret indica si el gateway corre con el secreto inseguro de desarrollo.
func (c *Config) UsingDefaultSecret() bool {
	return c.AuthSecret == DefaultAuthSecret
}
