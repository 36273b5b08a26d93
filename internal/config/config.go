package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for chromescript.
type Config struct {
	LogLevel string
	LogFile  string

	// HTTP control API
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Process discovery
	ProcessPattern string
	ConfigDirs     []string

	// DevTools
	CDPHost      string
	CDPTimeoutMS int

	// Discovery journal; disabled when JournalFile is empty.
	JournalFile  string
	JournalMaxMB int

	// NotifyURL receives a plain-text POST when profile ownership changes.
	NotifyURL string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		LogLevel:         strings.ToLower(getEnvOrDefault("CHROMESCRIPT_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("CHROMESCRIPT_LOG_FILE", "logs/chromescript.log"),
		BindAddr:         getEnvOrDefault("CHROMESCRIPT_BIND_ADDR", "127.0.0.1:8199"),
		PortCandidates:   getEnvListOrDefault("CHROMESCRIPT_PORT_CANDIDATES", ",", []string{"127.0.0.1:8200", "127.0.0.1:8201", "127.0.0.1:8202"}),
		PortAutoFallback: getEnvBoolOrDefault("CHROMESCRIPT_PORT_AUTO_FALLBACK", true),
		ProcessPattern:   getEnvOrDefault("CHROMESCRIPT_PROCESS_PATTERN", ""),
		ConfigDirs:       getEnvListOrDefault("CHROMESCRIPT_CONFIG_DIRS", string(filepath.ListSeparator), nil),
		CDPHost:          getEnvOrDefault("CHROMESCRIPT_CDP_HOST", "127.0.0.1"),
		CDPTimeoutMS:     getEnvIntOrDefault("CHROMESCRIPT_CDP_TIMEOUT_MS", 5000),
		JournalFile:      getEnvOrDefault("CHROMESCRIPT_JOURNAL_FILE", ""),
		JournalMaxMB:     getEnvIntOrDefault("CHROMESCRIPT_JOURNAL_MAX_MB", 10),
		NotifyURL:        getEnvOrDefault("CHROMESCRIPT_NOTIFY_URL", ""),
	}
	if cfg.CDPTimeoutMS < 500 {
		cfg.CDPTimeoutMS = 500
	}
	if cfg.JournalMaxMB < 1 {
		cfg.JournalMaxMB = 1
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key, sep string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
