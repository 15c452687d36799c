package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables. It is built once per run and read-only afterwards; nothing else
// in the program reads the environment.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresEnabled  bool

	MaxRetries   int
	RetryDelayMs int
	PageDelayMs  int

	OutputDir     string
	GlobalCSVName string
	ErrorLogName  string
	ProfilesPath  string

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string

	ChromeBin string
	Verbose   bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "vehicle_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),

		MaxRetries:   getEnvInt("MAX_RETRIES", 3),
		RetryDelayMs: getEnvInt("RETRY_DELAY_MS", 3000),
		PageDelayMs:  getEnvInt("PAGE_DELAY_MS", 2000),

		OutputDir:     getEnv("OUTPUT_DIR", "./output"),
		GlobalCSVName: getEnv("GLOBAL_CSV_NAME", "global.csv"),
		ErrorLogName:  getEnv("ERROR_LOG_NAME", "errors.log"),
		ProfilesPath:  getEnv("DEALER_PROFILES_PATH", "./dealers.yaml"),

		LLMEndpoint: getEnv("LLM_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),

		ChromeBin: getEnv("CHROME_BIN", ""),
		Verbose:   getEnvBool("VERBOSE", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
