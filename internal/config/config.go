package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	MongoURI        string        `mapstructure:"MONGO_URI"`
	MongoDatabase   string        `mapstructure:"MONGO_DATABASE"`
	SettingsBackend string        `mapstructure:"SETTINGS_BACKEND"`
	SessionBackend  string        `mapstructure:"SESSION_BACKEND"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	AuthJWTSecret   string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer      string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience    string        `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	BookingURL      string        `mapstructure:"BOOKING_URL"`
	AssessmentDir   string        `mapstructure:"ASSESSMENT_DIR"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
}

var envKeys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"REDIS_URL", "MONGO_URI", "MONGO_DATABASE",
	"SETTINGS_BACKEND", "SESSION_BACKEND", "SESSION_TTL",
	"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_AUDIENCE",
	"CORS_ORIGINS", "BOOKING_URL", "ASSESSMENT_DIR",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MONGO_DATABASE", "clinic")
	v.SetDefault("SETTINGS_BACKEND", "postgres")
	v.SetDefault("SESSION_BACKEND", "memory")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BOOKING_URL", "https://booking.example.com/schedule")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The mapstructure slice hook does not trim entries.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active and accepts X-User-ID without a token.")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var (
	settingsBackends = map[string]bool{"postgres": true, "redis": true, "memory": true}
	sessionBackends  = map[string]bool{"memory": true, "redis": true}
)

// Validate checks that the configuration is consistent. Outside development
// a JWT secret is required so portal routes verify tokens, and the memory
// settings backend is refused because it loses data on restart.
func (c *Config) Validate() error {
	if !settingsBackends[c.SettingsBackend] {
		return fmt.Errorf("SETTINGS_BACKEND must be postgres, redis or memory, got %q", c.SettingsBackend)
	}
	if !sessionBackends[c.SessionBackend] {
		return fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	if (c.SettingsBackend == "redis" || c.SessionBackend == "redis") && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when a redis backend is selected")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if !c.IsDev() {
		if c.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when ENV=%q", c.Env)
		}
		if c.SettingsBackend == "memory" {
			return fmt.Errorf("SETTINGS_BACKEND=memory is only allowed in development")
		}
	}
	if c.BookingURL != "" {
		u, err := url.Parse(c.BookingURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("BOOKING_URL must be an absolute URL, got %q", c.BookingURL)
		}
	}
	return nil
}
