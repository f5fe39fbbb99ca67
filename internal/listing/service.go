package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateParams are the seller-supplied fields of a new listing.
type CreateParams struct {
	Name          string
	Price         string
	SellerName    string
	SellerKey     string
	WalletAddress string
	Image         string
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create validates and stores a new listing and returns its id.
func (s *Service) Create(ctx context.Context, p CreateParams) (ID, error) {
	name := strings.TrimSpace(p.Name)
	price := strings.TrimSpace(p.Price)
	if name == "" || price == "" {
		return "", fmt.Errorf("%w: name and price are required", ErrInvalidInput)
	}
	if p.SellerKey == "" {
		return "", fmt.Errorf("%w: seller public key is required", ErrInvalidInput)
	}

	l := Listing{
		ID:            ID(uuid.NewString()),
		Name:          name,
		Price:         price,
		SellerName:    strings.TrimSpace(p.SellerName),
		SellerKey:     p.SellerKey,
		WalletAddress: strings.TrimSpace(p.WalletAddress),
		Image:         p.Image,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return "", fmt.Errorf("create listing: %w", err)
	}
	return l.ID, nil
}

func (s *Service) Get(ctx context.Context, id ID) (Listing, error) {
	if id == "" {
		return Listing{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}
