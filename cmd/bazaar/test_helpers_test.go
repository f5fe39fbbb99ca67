package main

import (
	"context"
	"sort"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/broadcast"
	"bazaar/internal/contact"
	"bazaar/internal/host"
	"bazaar/internal/listing"
	"bazaar/internal/messagelog"
)

type memListingRepo struct {
	mu       sync.Mutex
	listings map[listing.ID]listing.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[listing.ID]listing.Listing)}
}

func (r *memListingRepo) Create(ctx context.Context, l listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID] = l
	return nil
}

func (r *memListingRepo) GetByID(ctx context.Context, id listing.ID) (listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return listing.Listing{}, listing.ErrNotFound
	}
	return l, nil
}

func (r *memListingRepo) List(ctx context.Context, limit int) ([]listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]listing.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memMsgRepo struct {
	mu      sync.Mutex
	entries map[messagelog.RoomID][]messagelog.Entry
}

func newMemMsgRepo() *memMsgRepo {
	return &memMsgRepo{entries: make(map[messagelog.RoomID][]messagelog.Entry)}
}

func (r *memMsgRepo) Append(ctx context.Context, e messagelog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.RoomID] = append(r.entries[e.RoomID], e)
	return nil
}

func (r *memMsgRepo) ListRecent(ctx context.Context, room messagelog.RoomID, limit int) ([]messagelog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[room]
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]messagelog.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

type stubContacts struct {
	contacts []contact.Recipient
	err      error
}

func (s *stubContacts) ListContacts(ctx context.Context) ([]contact.Recipient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contacts, nil
}

// okSender reports every send as delivered.
type okSender struct {
	mu    sync.Mutex
	calls int
}

func (s *okSender) Send(ctx context.Context, publicKey, data string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return []byte(`{"status":true,"response":{"delivered":true}}`), nil
}

type testFixture struct {
	svc      services
	listings *memListingRepo
	messages *memMsgRepo
	contacts *stubContacts
	sender   *okSender
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	listingRepo := newMemListingRepo()
	msgRepo := newMemMsgRepo()
	contacts := &stubContacts{contacts: []contact.Recipient{
		{PublicKey: "0xA", Name: "alice"},
		{PublicKey: "0xB", Name: "bob"},
	}}
	sender := &okSender{}

	notifier := messagelog.NewNotifier()
	msgLog := messagelog.New(msgRepo, notifier)
	listingSvc := listing.NewService(listingRepo)
	shareSvc := broadcast.NewShareService(
		listingSvc,
		broadcast.NewDispatcher(sender),
		broadcast.NewReconciler(msgLog),
		contacts,
	)

	return &testFixture{
		svc: services{
			identity: host.Identity{Name: "mika", PublicKey: "0xHOST", WalletAddress: "0xWALLET"},
			listings: listingSvc,
			share:    shareSvc,
			log:      msgLog,
			notifier: notifier,
			contacts: contacts,
		},
		listings: listingRepo,
		messages: msgRepo,
		contacts: contacts,
		sender:   sender,
	}
}

func (f *testFixture) seedListing(t *testing.T, name, price string) listing.ID {
	t.Helper()
	id, err := f.svc.listings.Create(context.Background(), listing.CreateParams{
		Name:       name,
		Price:      price,
		SellerName: f.svc.identity.Name,
		SellerKey:  f.svc.identity.PublicKey,
	})
	if err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return id
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
