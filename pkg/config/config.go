package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store     StoreConfig
	Vault     VaultConfig
	Assistant AssistantConfig
	Capture   CaptureConfig
	CORS      CORSConfig
	Log       LogConfig
}

// StoreConfig locates the local key-value database file.
type StoreConfig struct {
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// VaultConfig controls the on-disk archive root and file download links.
type VaultConfig struct {
	DefaultRoot     string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// AssistantConfig tunes the hosted language-model integration.
// The API key itself lives in AppState, not here: it is user data
// entered through settings and persists with the rest of the archive.
type AssistantConfig struct {
	Endpoint    string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// CaptureConfig governs the mobile capture flow.
type CaptureConfig struct {
	RetentionTTL  time.Duration
	PairingSecret string
	PairingTTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Path:         v.GetString("STORE_PATH"),
		BusyTimeout:  parseDuration(v.GetString("STORE_BUSY_TIMEOUT"), 5*time.Second),
		MaxOpenConns: v.GetInt("STORE_MAX_OPEN_CONNS"),
	}

	cfg.Vault = VaultConfig{
		DefaultRoot:     v.GetString("VAULT_ROOT"),
		SignedURLSecret: v.GetString("VAULT_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("VAULT_SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.Assistant = AssistantConfig{
		Endpoint:    v.GetString("ASSISTANT_ENDPOINT"),
		Model:       v.GetString("ASSISTANT_MODEL"),
		Timeout:     parseDuration(v.GetString("ASSISTANT_TIMEOUT"), 30*time.Second),
		Temperature: v.GetFloat64("ASSISTANT_TEMPERATURE"),
	}

	cfg.Capture = CaptureConfig{
		RetentionTTL:  parseDuration(v.GetString("CAPTURE_RETENTION_TTL"), 720*time.Hour),
		PairingSecret: v.GetString("CAPTURE_PAIRING_SECRET"),
		PairingTTL:    parseDuration(v.GetString("CAPTURE_PAIRING_TTL"), 10*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_PATH", "./citadel.db")
	v.SetDefault("STORE_BUSY_TIMEOUT", "5s")
	v.SetDefault("STORE_MAX_OPEN_CONNS", 1)

	v.SetDefault("VAULT_ROOT", "./CitadelRoot")
	v.SetDefault("VAULT_SIGNED_URL_SECRET", "dev_vault_secret")
	v.SetDefault("VAULT_SIGNED_URL_TTL", "30m")

	v.SetDefault("ASSISTANT_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("ASSISTANT_MODEL", "gemini-3-flash-preview")
	v.SetDefault("ASSISTANT_TIMEOUT", "30s")
	v.SetDefault("ASSISTANT_TEMPERATURE", 0.7)

	v.SetDefault("CAPTURE_RETENTION_TTL", "720h")
	v.SetDefault("CAPTURE_PAIRING_SECRET", "dev_pairing_secret")
	v.SetDefault("CAPTURE_PAIRING_TTL", "10m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
