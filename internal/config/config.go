// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carrega os parâmetros do serviço a partir do ambiente.
type Config struct {
	Port               string
	SyncThresholdBytes int
	IngestTimeout      time.Duration
	ChunkRows          int
	DisableFallback    bool
}

// Load lê .env (se existir) e monta a configuração com defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:               getEnv("PORT", "8084"),
		SyncThresholdBytes: getEnvInt("INGEST_SYNC_THRESHOLD_BYTES", 100*1024),
		IngestTimeout:      time.Duration(getEnvInt("INGEST_TIMEOUT_MS", 30000)) * time.Millisecond,
		ChunkRows:          getEnvInt("INGEST_CHUNK_ROWS", 200),
		DisableFallback:    getEnv("INGEST_DISABLE_FALLBACK", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
