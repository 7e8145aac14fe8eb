package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DbURL    string
	DB       DatabaseConfig
	LogLevel string

	// SecretKey signs session cookies. When SECRET_KEY is unset a random
	// secret is generated and EphemeralSecret is true.
	SecretKey       string
	EphemeralSecret bool
	SessionTTL      time.Duration

	QueryTimeout   time.Duration
	BcryptCost     int
	LoginRateLimit int // requests per minute per username, 0 disables
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Load reads the configuration from a .env file or environment variables and returns a Config struct.
// It returns an error if a variable is present but malformed.
func Load() (*Config, error) {
	// Try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	var err error
	if cfg.DB.Port, err = getEnvInt("DB_PORT", 3306); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = getEnvInt("LOGIN_RATE_LIMIT", 30); err != nil {
		return nil, err
	}
	if cfg.QueryTimeout, err = getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.DbURL = os.Getenv("DATABASE_URL")
	if cfg.DbURL == "" {
		cfg.DbURL = cfg.DB.URL()
	}

	cfg.SecretKey = os.Getenv("SECRET_KEY")
	if cfg.SecretKey == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		cfg.SecretKey = secret
		cfg.EphemeralSecret = true
	}

	return cfg, nil
}

// URL renders the connection settings as a postgres:// URL.
func (d DatabaseConfig) URL() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		User:   url.UserPassword(d.User, d.Password),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s=%q: expected a non-negative integer", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s=%q: expected a positive duration", key, value)
	}
	return d, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
