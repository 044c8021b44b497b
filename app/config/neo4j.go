package config

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// InitNeo4j creates the Neo4j driver and verifies connectivity. Callers treat
// a failure here as fatal; the store must be reachable at startup.
func InitNeo4j(ctx context.Context, cfg *Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return driver, nil
}
