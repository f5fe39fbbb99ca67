package storage

import (
	"context"
	"embed"
	"errors"

	"bazaar/internal/listing"
	"bazaar/internal/messagelog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrNotFound = errors.New("not found")

type Store interface {
	Close(ctx context.Context) error
	Migrate(ctx context.Context) error
	Listings() listing.Repository
	Messages() messagelog.Repository
}
