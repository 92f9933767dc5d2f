package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultQuestionsFile       = "questions.json"
	DefaultRandomSingleQuota   = 15
	DefaultRandomMultipleQuota = 15
)

type Config struct {
	TelegramToken string
	TelegramDebug bool
	QuestionsFile string

	RandomSingleQuota   int
	RandomMultipleQuota int

	// Storage backends, first non-empty wins: database, gist, file, memory.
	DatabaseURL string
	GistID      string
	GithubToken string
	DataFile    string

	HTTPAddr string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return &Config{
		TelegramToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:       getBool("TELEGRAM_DEBUG", false),
		QuestionsFile:       getEnv("QUESTIONS_FILE", DefaultQuestionsFile),
		RandomSingleQuota:   getInt("RANDOM_SINGLE_QUOTA", DefaultRandomSingleQuota),
		RandomMultipleQuota: getInt("RANDOM_MULTIPLE_QUOTA", DefaultRandomMultipleQuota),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		GistID:              getEnv("GITHUB_GIST_ID", ""),
		GithubToken:         getEnv("GITHUB_TOKEN", ""),
		DataFile:            getEnv("DATA_FILE", ""),
		HTTPAddr:            getEnv("HTTP_ADDR", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return b
}
