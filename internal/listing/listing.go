package listing

import (
	"context"
	"errors"
	"time"
)

type ID string

// Listing is a marketplace record offered for sale by a local or remote
// seller. Image holds a data URI so the record is self-contained.
type Listing struct {
	ID            ID
	Name          string
	Price         string
	SellerName    string
	SellerKey     string
	WalletAddress string
	Image         string
	CreatedAt     time.Time
}

var (
	ErrNotFound     = errors.New("listing: not found")
	ErrInvalidInput = errors.New("listing: invalid input")
)

type Repository interface {
	Create(ctx context.Context, l Listing) error
	GetByID(ctx context.Context, id ID) (Listing, error)
	List(ctx context.Context, limit int) ([]Listing, error)
}
