// Package cmd provides the shared wiring the daemons use to build their
// store and event bus from flags.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weftlabs/weft/pkg/store"
	"github.com/weftlabs/weft/pkg/store/file"
	"github.com/weftlabs/weft/pkg/store/memory"
	"github.com/weftlabs/weft/pkg/store/postgres"
	"github.com/weftlabs/weft/pkg/store/redis"
)

// NewStore builds a store from a URL. The scheme picks the backend:
// memory://, file://<dir>, redis://<addr>, postgres://<dsn>. An empty URL
// falls back to the in-memory store.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (store.Store, error) {
	if databaseURL == "" {
		return memory.NewStore(), nil
	}

	scheme, rest := splitScheme(databaseURL)

	switch scheme {
	case "memory":
		return memory.NewStore(), nil
	case "file":
		return file.NewStore(rest), nil
	case "redis", "rediss":
		return redis.NewStore(ctx, databaseURL)
	case "postgres", "postgresql":
		return postgres.NewStore(ctx, logger, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported store scheme %q in %s", scheme, databaseURL)
	}
}

func splitScheme(databaseURL string) (string, string) {
	scheme, rest, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file", databaseURL
	}

	return scheme, rest
}
