package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Credentials are the provider API keys. They never live in the config
// file.
type Credentials struct {
	ElevenLabsKey string `env:"ELEVENLABS_API_KEY"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	FirecrawlKey  string `env:"FIRECRAWL_API_KEY"`
}

// LoadCredentials reads the keys from the environment after loading the
// given dotenv files, ".env" when none are named. Missing files are
// skipped and variables already set are not overridden.
func LoadCredentials(dotenv ...string) (Credentials, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Credentials{}, fmt.Errorf("unable to load %s: %w", f, err)
		}
	}

	creds, err := env.ParseAs[Credentials]()
	if err != nil {
		return Credentials{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return creds, nil
}
