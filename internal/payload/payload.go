// Package payload encodes outbound marketplace messages into the node's
// transport-safe data format and decodes the node's delivery reports.
// Encoding is deterministic so a retried send carries identical bytes.
package payload

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMessage = errors.New("payload: invalid message")
	ErrBadReport      = errors.New("payload: malformed delivery report")
)

type Kind string

const (
	KindListing Kind = "listing"
	KindText    Kind = "text"
	KindFile    Kind = "file"
)

// ListingCard is the shareable view of a listing embedded in a
// listing-kind message so the receiving peer can render it without a
// follow-up fetch.
type ListingCard struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	SellerName    string `json:"seller_name"`
	SellerKey     string `json:"seller_key"`
	WalletAddress string `json:"wallet_address"`
	Image         string `json:"image,omitempty"`
}

// Message is the unit broadcast to a recipient. Exactly one semantic
// payload must be populated, matching Kind.
type Message struct {
	Kind       Kind         `json:"kind"`
	Body       string       `json:"body,omitempty"`
	FileData   string       `json:"file_data,omitempty"`
	ListingRef string       `json:"listing_ref,omitempty"`
	Listing    *ListingCard `json:"listing,omitempty"`
}

// Validate checks that the message carries the payload its kind requires
// and nothing belonging to another kind.
func (m Message) Validate() error {
	switch m.Kind {
	case KindListing:
		if m.ListingRef == "" {
			return fmt.Errorf("%w: listing message requires listing_ref", ErrInvalidMessage)
		}
		if m.FileData != "" {
			return fmt.Errorf("%w: listing message must not carry file data", ErrInvalidMessage)
		}
	case KindText:
		if m.Body == "" {
			return fmt.Errorf("%w: text message requires body", ErrInvalidMessage)
		}
		if m.ListingRef != "" || m.Listing != nil || m.FileData != "" {
			return fmt.Errorf("%w: text message must carry only body", ErrInvalidMessage)
		}
	case KindFile:
		if m.FileData == "" {
			return fmt.Errorf("%w: file message requires file data", ErrInvalidMessage)
		}
		if m.ListingRef != "" || m.Listing != nil {
			return fmt.Errorf("%w: file message must not reference a listing", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	return nil
}

// Encode serializes the message as canonical JSON, hex-encodes it, and
// returns the upper-cased 0x-prefixed form the node's send command expects.
func Encode(m Message) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", ErrInvalidMessage, err)
	}
	return "0x" + strings.ToUpper(hex.EncodeToString(data)), nil
}

// DecodeMessage reverses Encode. DecodeMessage(Encode(m)) == m for every
// valid message m.
func DecodeMessage(encoded string) (Message, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(encoded), "0x")
	raw, err := hex.DecodeString(strings.ToLower(trimmed))
	if err != nil {
		return Message{}, fmt.Errorf("%w: hex decode: %v", ErrInvalidMessage, err)
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: unmarshal: %v", ErrInvalidMessage, err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// DeliveryReport is the decoded per-recipient response of a send command.
type DeliveryReport struct {
	Accepted  bool
	Delivered bool
	Detail    string
}

type wireReport struct {
	Status   *bool  `json:"status"`
	Error    string `json:"error"`
	Response *struct {
		Delivered *bool  `json:"delivered"`
		Error     string `json:"error"`
	} `json:"response"`
}

// DecodeDeliveryReport parses the node's response to a send command. The
// status flag is always required; the nested delivered flag is required
// whenever the command itself was accepted.
func DecodeDeliveryReport(raw []byte) (DeliveryReport, error) {
	var wire wireReport
	if err := json.Unmarshal(raw, &wire); err != nil {
		return DeliveryReport{}, fmt.Errorf("%w: %v", ErrBadReport, err)
	}
	if wire.Status == nil {
		return DeliveryReport{}, fmt.Errorf("%w: missing status", ErrBadReport)
	}
	if !*wire.Status {
		return DeliveryReport{Accepted: false, Detail: wire.Error}, nil
	}
	if wire.Response == nil || wire.Response.Delivered == nil {
		return DeliveryReport{}, fmt.Errorf("%w: missing delivered flag", ErrBadReport)
	}
	return DeliveryReport{
		Accepted:  true,
		Delivered: *wire.Response.Delivered,
		Detail:    wire.Response.Error,
	}, nil
}
