// Package host resolves the local node's identity: the display name and
// public key used as sender identity, and the wallet address attached to
// new listings.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"bazaar/internal/transport"
)

var ErrUnavailable = errors.New("host: identity unavailable")

type Identity struct {
	Name          string
	PublicKey     string
	WalletAddress string
}

// Resolver fetches the identity once and caches it for the session.
type Resolver struct {
	client transport.Commander

	mu     sync.Mutex
	cached *Identity
}

func NewResolver(client transport.Commander) *Resolver {
	return &Resolver{client: client}
}

type identityResponse struct {
	Status   *bool `json:"status"`
	Response *struct {
		Name      string `json:"name"`
		PublicKey string `json:"publickey"`
	} `json:"response"`
}

type addressResponse struct {
	Status   *bool `json:"status"`
	Response *struct {
		Address string `json:"miniaddress"`
	} `json:"response"`
}

func (r *Resolver) Resolve(ctx context.Context) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil {
		return *r.cached, nil
	}

	id, err := r.fetch(ctx)
	if err != nil {
		return Identity{}, err
	}
	r.cached = &id
	return id, nil
}

func (r *Resolver) fetch(ctx context.Context) (Identity, error) {
	raw, err := r.client.Command(ctx, "maxima")
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var idResp identityResponse
	if err := json.Unmarshal(raw, &idResp); err != nil {
		return Identity{}, fmt.Errorf("%w: decode identity: %v", ErrUnavailable, err)
	}
	if idResp.Status == nil || !*idResp.Status || idResp.Response == nil {
		return Identity{}, fmt.Errorf("%w: identity command rejected", ErrUnavailable)
	}
	key := strings.TrimSpace(idResp.Response.PublicKey)
	if key == "" {
		return Identity{}, fmt.Errorf("%w: node has no public key", ErrUnavailable)
	}

	raw, err = r.client.Command(ctx, "getaddress")
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var addrResp addressResponse
	if err := json.Unmarshal(raw, &addrResp); err != nil {
		return Identity{}, fmt.Errorf("%w: decode address: %v", ErrUnavailable, err)
	}
	if addrResp.Status == nil || !*addrResp.Status || addrResp.Response == nil {
		return Identity{}, fmt.Errorf("%w: address command rejected", ErrUnavailable)
	}

	return Identity{
		Name:          strings.TrimSpace(idResp.Response.Name),
		PublicKey:     key,
		WalletAddress: strings.TrimSpace(addrResp.Response.Address),
	}, nil
}
