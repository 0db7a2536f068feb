package memory

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when a database URL is configured,
// an embedded SQLite store when a file path is configured, and an in-memory
// store otherwise.
func NewStore(ctx context.Context, databaseURL, databasePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(databasePath) != "" {
		return NewSQLiteStore(ctx, databasePath)
	}
	return NewInMemoryStore(), nil
}
