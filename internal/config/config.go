package config

import "os"

type Config struct {
	Addr         string
	DatabasePath string
	UIOrigin     string
}

func Load() *Config {
	return &Config{
		Addr:         getEnv("ADDR", "127.0.0.1:7373"),
		DatabasePath: getEnv("DATABASE_PATH", "pos.db"),
		UIOrigin:     getEnv("UI_ORIGIN", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
