// Package broadcast fans one message out to many recipients, classifies
// each delivery, and reconciles the local message log with what the node
// actually confirmed.
package broadcast

import (
	"context"
	"errors"

	"bazaar/internal/contact"
)

var ErrNoRecipients = errors.New("broadcast: no recipients")

type Status string

const (
	StatusDelivered      Status = "delivered"
	StatusRejected       Status = "rejected"
	StatusTransportError Status = "transport_error"
)

// Outcome is the result of sending one message to one recipient. Detail is
// set iff the status is not delivered.
type Outcome struct {
	Recipient contact.Recipient
	Status    Status
	Detail    string
}

// Result aggregates a multi-recipient send. Outcomes are ordered by the
// recipient resolution order, one per distinct public key.
type Result struct {
	Outcomes []Outcome
}

func (r Result) AllDelivered() bool {
	for _, o := range r.Outcomes {
		if o.Status != StatusDelivered {
			return false
		}
	}
	return len(r.Outcomes) > 0
}

// Failed returns the outcomes that did not deliver.
func (r Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status != StatusDelivered {
			failed = append(failed, o)
		}
	}
	return failed
}

// Sender delivers one encoded payload to one public key and returns the
// node's raw response.
type Sender interface {
	Send(ctx context.Context, publicKey, data string) ([]byte, error)
}
