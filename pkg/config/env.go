package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by LoadEnv when APP_ENV is "local" and ENV_FILE is unset
const DefaultEnvFile = ".env.local"

// LoadEnv loads environment variables from a dotenv file if APP_ENV is "local".
// Variables already present in the environment win over the file.
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv != "local" {
		log.Printf("Running in %s environment. Not loading %s.", appEnv, DefaultEnvFile)
		return
	}

	file := getenv("ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(file); err != nil {
		log.Printf("Warning: %s file not found, or error loading: %v. Relying on system environment variables.", file, err)
		return
	}
	log.Printf("Loaded %s for local development.", file)
}
