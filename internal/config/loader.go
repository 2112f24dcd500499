package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file layered over Default(), then
// applies environment-variable overrides for the secrets and connection
// strings operators do not want committed to a config file.
func Load(path string) (Config, error) {
	// Overload so a local .env deterministically wins over pre-set process
	// env vars in development, matching the teacher's loader convention.
	_ = godotenv.Overload()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				applyEnvOverrides(&cfg)
				return cfg, nil
			}
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := envTrim("AEDOCS_OBJECT_STORE_BUCKET"); v != "" {
		cfg.ObjectStore.Bucket = v
	}
	if v := envTrim("AEDOCS_VECTOR_STORE_DSN"); v != "" {
		cfg.VectorStore.DSN = v
	}
	if v := envTrim("AEDOCS_LEXICAL_STORE_DSN"); v != "" {
		cfg.LexicalStore.DSN = v
	}
	if v := envTrim("AEDOCS_RERANKER_API_KEY"); v != "" {
		cfg.Reranker.APIKey = v
	}
	if v := envTrim("AEDOCS_RERANKER_ENDPOINT"); v != "" {
		cfg.Reranker.Endpoint = v
	}
	for i := range cfg.Embedder.Models {
		envKey := "AEDOCS_EMBEDDER_" + strings.ToUpper(cfg.Embedder.Models[i].Collection) + "_API_KEY"
		if v := envTrim(envKey); v != "" {
			cfg.Embedder.Models[i].APIKey = v
		}
	}
	if v := envTrim("AEDOCS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func envTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
