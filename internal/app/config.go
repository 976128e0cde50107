package app

import (
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/envutil"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/neo4jdb"
)

// Config is loaded once at startup and passed down explicitly. The
// deployment's secret store materializes NEO4J_* values as environment
// variables before the process starts; nothing below main fetches
// secrets on its own.
type Config struct {
	ListenAddr     string
	Neo4j          neo4jdb.Config
	DefaultProject string
	ServiceName    string
	Environment    string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		ListenAddr: envutil.Str("LISTEN_ADDR", ":8080"),
		Neo4j: neo4jdb.Config{
			URI:         envutil.Str("NEO4J_URI", ""),
			User:        envutil.Str("NEO4J_USER", "neo4j"),
			Password:    envutil.Str("NEO4J_PASSWORD", ""),
			Database:    envutil.Str("NEO4J_DATABASE", "neo4j"),
			TimeoutSec:  envutil.Int("NEO4J_TIMEOUT_SECONDS", 10),
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 50),
		},
		// Project name recorded when no resolution rule matches.
		DefaultProject: envutil.Str("FEEDBACK_DEFAULT_PROJECT", ""),
		ServiceName:    envutil.Str("SERVICE_NAME", "dx-feedback-form"),
		Environment:    envutil.Str("ENVIRONMENT", "development"),
	}
	if cfg.Neo4j.URI == "" && log != nil {
		log.Warn("NEO4J_URI is not set; startup will fail when connecting")
	}
	return cfg
}
