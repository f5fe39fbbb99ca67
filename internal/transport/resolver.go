package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bazaar/internal/contact"
)

// ContactResolver lists the node's contacts as broadcast recipients.
type ContactResolver struct {
	client Commander
}

func NewContactResolver(client Commander) *ContactResolver {
	return &ContactResolver{client: client}
}

type contactListResponse struct {
	Status   *bool `json:"status"`
	Response *struct {
		Contacts []struct {
			PublicKey string `json:"publickey"`
			Name      string `json:"name"`
		} `json:"contacts"`
	} `json:"response"`
}

func (r *ContactResolver) ListContacts(ctx context.Context) ([]contact.Recipient, error) {
	raw, err := r.client.Command(ctx, "maxcontacts")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contact.ErrUnavailable, err)
	}

	var resp contactListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode contacts: %v", contact.ErrUnavailable, err)
	}
	if resp.Status == nil || !*resp.Status || resp.Response == nil {
		return nil, fmt.Errorf("%w: contact list rejected", contact.ErrUnavailable)
	}

	recipients := make([]contact.Recipient, 0, len(resp.Response.Contacts))
	for _, c := range resp.Response.Contacts {
		key := strings.TrimSpace(c.PublicKey)
		if key == "" {
			continue
		}
		recipients = append(recipients, contact.Recipient{
			PublicKey: key,
			Name:      strings.TrimSpace(c.Name),
		})
	}
	return contact.Dedupe(recipients), nil
}
