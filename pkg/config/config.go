package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration, loaded from the environment
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Token    TokenConfig
	Social   SocialConfig
	Auth     AuthConfig
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host string
	Port int
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the Postgres connection
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig configures the Redis connection
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Address returns host:port
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// TokenConfig configures access-token signing
type TokenConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	ResolveTokenTTL time.Duration
}

// SocialConfig configures the out-of-process social and profile services
type SocialConfig struct {
	SocialURL      string
	ProfileURL     string
	RequestTimeout time.Duration
}

// AuthConfig configures the credential authenticators
type AuthConfig struct {
	// DevKeys maps dev usernames to bcrypt hashes of their keys,
	// "user1:$2a$...,user2:$2a$..." in the environment.
	DevKeys map[string]string

	GoogleClientID     string
	GoogleClientSecret string

	SteamAPIKey string
}

// Load reads the full configuration from the environment
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "login"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "login"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Token: TokenConfig{
			Secret:          getEnv("TOKEN_SECRET", ""),
			AccessTokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
			ResolveTokenTTL: getEnvDuration("RESOLVE_TOKEN_TTL", 15*time.Minute),
		},
		Social: SocialConfig{
			SocialURL:      getEnv("SOCIAL_SERVICE_URL", "http://localhost:8082"),
			ProfileURL:     getEnv("PROFILE_SERVICE_URL", "http://localhost:8083"),
			RequestTimeout: getEnvDuration("SOCIAL_REQUEST_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			DevKeys:            getEnvKeyMap("DEV_KEYS"),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			SteamAPIKey:        getEnv("STEAM_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvKeyMap parses "name:value,name:value" pairs. Values may contain
// colons (bcrypt hashes do not, but keys are opaque), so only the first colon
// splits.
func getEnvKeyMap(key string) map[string]string {
	out := make(map[string]string)
	raw := os.Getenv(key)
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if idx := strings.Index(pair, ":"); idx > 0 {
			out[pair[:idx]] = pair[idx+1:]
		}
	}
	return out
}
