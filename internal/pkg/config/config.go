package config

import (
	"fmt"
	"os"
)

type PlatformConfig struct {
	BaseURL string
}

type CredStoreConfig struct {
	Path string
}

type Config struct {
	Platform    PlatformConfig
	CredStore   CredStoreConfig
	ServerPort  string
	PprofPort   string
	MetricsPort string
	SignInPath  string
	LandingPath string
	PendingPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Platform: PlatformConfig{
			BaseURL: getEnvOrDefault("PLATFORM_API_URL", ""),
		},
		CredStore: CredStoreConfig{
			Path: getEnvOrDefault("CREDENTIAL_STORE_PATH", "data/console.db"),
		},
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8091"),
		PprofPort:   getEnvOrDefault("PPROF_PORT", "6060"),
		MetricsPort: getEnvOrDefault("METRICS_PORT", "9092"),
		SignInPath:  "/auth/signin",
		LandingPath: "/console",
		PendingPath: "/pending",
	}

	if cfg.Platform.BaseURL == "" {
		return nil, fmt.Errorf("PLATFORM_API_URL environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
