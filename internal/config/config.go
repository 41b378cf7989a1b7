package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For duration settings

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	JWTSecret     string        // JWT secret key
	TokenTTL      time.Duration // Session token lifetime
	RedisAddr     string        // Redis server address
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	QuoteAPIURL   string        // Price oracle base URL
	QuoteAPIToken string        // Price oracle API token
	QuoteTimeout  time.Duration // Bounded timeout for oracle lookups
	QuoteCacheTTL time.Duration // Redis quote cache TTL
	IsProd        bool          // Is production environment
}

// DSN assembles the MySQL data source name.
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      durationEnv("TOKEN_TTL_HOURS", 24) * time.Hour,
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		QuoteAPIURL:   os.Getenv("QUOTE_API_URL"),
		QuoteAPIToken: os.Getenv("QUOTE_API_TOKEN"),
		QuoteTimeout:  durationEnv("QUOTE_TIMEOUT_SECONDS", 5) * time.Second,
		QuoteCacheTTL: durationEnv("QUOTE_CACHE_SECONDS", 30) * time.Second,
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// getEnv reads an env var with a fallback default
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationEnv reads a numeric env var as a duration unit count
func durationEnv(key string, fallback int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}
