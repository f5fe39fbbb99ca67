package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bazaar/internal/listing"
	"bazaar/internal/messagelog"
	"bazaar/internal/securestore"
)

type PostgresStore struct {
	db     *sql.DB
	crypto *securestore.FieldCrypto
}

// NewPostgresStore opens the local database. crypto guards the message log
// columns at rest; listings are public marketplace data and stay plain.
func NewPostgresStore(ctx context.Context, dbURL string, crypto *securestore.FieldCrypto) (*PostgresStore, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("db url is required")
	}
	if crypto == nil {
		return nil, fmt.Errorf("field crypto is required")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &PostgresStore{db: db, crypto: crypto}, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	_ = ctx
	return s.db.Close()
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	migrator := NewMigrator(s.db, migrationsFS)
	return migrator.Up(ctx)
}

func (s *PostgresStore) Listings() listing.Repository {
	return &listingRepo{db: s.db}
}

func (s *PostgresStore) Messages() messagelog.Repository {
	return &messageRepo{db: s.db, crypto: s.crypto}
}
