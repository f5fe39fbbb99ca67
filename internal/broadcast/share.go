package broadcast

import (
	"context"
	"fmt"

	"bazaar/internal/contact"
	"bazaar/internal/listing"
	"bazaar/internal/payload"
)

// ListingStore is the slice of the listing store the share flow needs.
type ListingStore interface {
	Get(ctx context.Context, id listing.ID) (listing.Listing, error)
}

// ShareService is the entry point the UI calls to share a listing. It
// resolves the listing, broadcasts it, and reconciles the local log.
type ShareService struct {
	listings   ListingStore
	dispatcher *Dispatcher
	reconciler *Reconciler
	resolver   contact.Resolver
}

func NewShareService(listings ListingStore, dispatcher *Dispatcher, reconciler *Reconciler, resolver contact.Resolver) *ShareService {
	return &ShareService{
		listings:   listings,
		dispatcher: dispatcher,
		reconciler: reconciler,
		resolver:   resolver,
	}
}

// ShareListing broadcasts the listing to the given recipients. It fails
// before any dispatch when the listing does not exist or the recipient set
// is empty; per-recipient failures live in the returned result.
func (s *ShareService) ShareListing(ctx context.Context, id listing.ID, recipients []contact.Recipient) (Result, error) {
	l, err := s.listings.Get(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("resolve listing: %w", err)
	}

	msg := payload.Message{
		Kind:       payload.KindListing,
		ListingRef: string(l.ID),
		Listing: &payload.ListingCard{
			ID:            string(l.ID),
			Name:          l.Name,
			Price:         l.Price,
			SellerName:    l.SellerName,
			SellerKey:     l.SellerKey,
			WalletAddress: l.WalletAddress,
			Image:         l.Image,
		},
	}

	result, err := s.dispatcher.Broadcast(ctx, msg, recipients)
	if err != nil {
		return Result{}, err
	}

	sender := SenderIdentity{Name: l.SellerName, PublicKey: l.SellerKey}
	return s.reconciler.Reconcile(ctx, msg, result, sender), nil
}

// ShareListingToContacts resolves the node's full contact list and shares
// the listing with all of them.
func (s *ShareService) ShareListingToContacts(ctx context.Context, id listing.ID) (Result, error) {
	recipients, err := s.resolver.ListContacts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve contacts: %w", err)
	}
	return s.ShareListing(ctx, id, recipients)
}
