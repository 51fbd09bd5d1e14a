package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables (see the env tags on Config).
// A .env file in the working directory is loaded first when present;
// variables already set in the process win over the file.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
