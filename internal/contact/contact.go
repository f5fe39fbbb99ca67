package contact

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("contact: resolver unavailable")

// Recipient is an identity a message can be addressed to. PublicKey is the
// sole routing key; Name is display only.
type Recipient struct {
	PublicKey string
	Name      string
}

// Resolver produces the set of contacts a broadcast targets.
type Resolver interface {
	ListContacts(ctx context.Context) ([]Recipient, error)
}

// Dedupe removes recipients with duplicate public keys, keeping the first
// occurrence and the original order.
func Dedupe(recipients []Recipient) []Recipient {
	seen := make(map[string]struct{}, len(recipients))
	distinct := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		if r.PublicKey == "" {
			continue
		}
		if _, ok := seen[r.PublicKey]; ok {
			continue
		}
		seen[r.PublicKey] = struct{}{}
		distinct = append(distinct, r)
	}
	return distinct
}
