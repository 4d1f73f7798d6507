package utils

import (
	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from .env file.
// Variables already set in the process environment win.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}
