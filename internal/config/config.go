package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	PineconeAPIKey    string `envconfig:"PINECONE_API_KEY"`
	PineconeIndex     string `envconfig:"PINECONE_INDEX" default:"journal-chunks"`
	PineconeRegion    string `envconfig:"PINECONE_REGION" default:"us-east-1"`
	PineconeNamespace string `envconfig:"PINECONE_NAMESPACE"`

	// Alternative pgvector-backed store, used when Pinecone is not configured
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CITEME", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasPinecone() bool {
	return c.PineconeAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
