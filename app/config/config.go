// Package config loads server configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the server's runtime settings.
type Config struct {
	ListenAddr    string   `yaml:"listen_addr"`
	Store         string   `yaml:"store"` // "neo4j" or "memory"
	Neo4jURI      string   `yaml:"neo4j_uri"`
	Neo4jUser     string   `yaml:"neo4j_user"`
	Neo4jPassword string   `yaml:"neo4j_password"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:    ":5000",
		Store:         "neo4j",
		Neo4jURI:      "neo4j://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
		CORSOrigins:   []string{"*"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// given), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("TASKBOARD_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TASKBOARD_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Neo4jURI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.Neo4jUser = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4jPassword = v
	}
	if v := os.Getenv("TASKBOARD_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitOrigins(v)
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
