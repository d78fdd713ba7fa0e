package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/hokensys/shinsa/pkg/configstore"
	configfile "github.com/hokensys/shinsa/pkg/configstore/file"
	configpg "github.com/hokensys/shinsa/pkg/configstore/postgresql"
)

// NewConfigStore builds the cached configuration source. A postgres:// URL
// selects the database-backed document store; anything else is treated as a
// path to a file-backed document tree.
func NewConfigStore(ctx context.Context, logger *slog.Logger, source string, freshness time.Duration) (*configstore.Cache, error) {
	var (
		store configstore.Store
		err   error
	)

	switch persistenceProvider(source) {
	case "postgres", "postgresql":
		store, err = configpg.NewStore(ctx, logger, source)
		if err != nil {
			return nil, err
		}
	default:
		store = configfile.NewStore(source)
	}

	return configstore.NewCache(store, freshness, logger), nil
}
