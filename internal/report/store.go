package report

import (
	"context"
	"errors"
	"fmt"
)

const (
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// StoreConfig selects and configures the report database
type StoreConfig struct {
	Kind        string
	BoltPath    string
	DatabaseURL string
}

// OpenDB opens the database named by cfg.Kind
func OpenDB(ctx context.Context, cfg StoreConfig) (DB, error) {
	switch cfg.Kind {
	case StoreBolt, "":
		return NewBoltDB(cfg.BoltPath)
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database url is required for the postgres store")
		}
		return NewPostgresDB(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store %q (valid: %s, %s)", cfg.Kind, StoreBolt, StorePostgres)
	}
}
