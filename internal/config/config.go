package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MaxUploadSize bounds a single create_custom request and every file inside it.
const MaxUploadSize = 16 << 20

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string
	DBDriver       string
	DBDSN          string
	ResetDB        bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SessionSecret  string
	CookieSecure   bool
	ChallengesDir  string
	UploadDir      string
	AdminUsernames []string
	SubmitRate     float64
	SubmitBurst    int
	LogLevel       string
	SwaggerHost    string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBDSN:          getEnv("DB_DSN", "ctfboard.db"),
		ResetDB:        getEnvBool("RESET_DB", false),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		SessionSecret:  getEnv("SESSION_SECRET", "change-me"),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		ChallengesDir:  getEnv("CHALLENGES_DIR", "./challenges"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		AdminUsernames: getEnvList("ADMIN_USERNAMES", []string{"admin", "administrator", "root"}),
		SubmitRate:     getEnvFloat("SUBMIT_RATE", 2),
		SubmitBurst:    getEnvInt("SUBMIT_BURST", 10),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
