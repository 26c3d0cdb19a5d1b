package config

import (
	"log/slog"

	"github.com/subosito/gotenv"
)

// LoadEnv loads a .env file for the given environment name. Missing files are
// fine; the OS environment is used as-is.
func LoadEnv(env string) {
	envFile := ".env." + env
	if err := gotenv.Load(envFile); err != nil {
		if err := gotenv.Load(); err != nil {
			slog.Warn("No .env file found, using OS environment")
		}
	}
}
