package broadcast

import (
	"context"
	"sync"

	"bazaar/internal/contact"
	"bazaar/internal/payload"
)

// Dispatcher sends one message to a set of recipients over the node.
type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Broadcast encodes msg once and sends it to every distinct recipient
// concurrently. Per-recipient failures are reported in the outcomes, never
// as the returned error; the error is reserved for an invalid message or an
// empty recipient set, which abort before any dispatch.
//
// Each recipient owns one reserved outcome slot, written exactly once, so
// the outcome order matches the recipient order regardless of completion
// order. When ctx is cancelled mid-broadcast, in-flight recipients resolve
// to a transport error carrying the cancellation; already-resolved
// outcomes are kept.
func (d *Dispatcher) Broadcast(ctx context.Context, msg payload.Message, recipients []contact.Recipient) (Result, error) {
	distinct := contact.Dedupe(recipients)
	if len(distinct) == 0 {
		return Result{}, ErrNoRecipients
	}

	encoded, err := payload.Encode(msg)
	if err != nil {
		return Result{}, err
	}

	outcomes := make([]Outcome, len(distinct))
	var wg sync.WaitGroup
	for i, r := range distinct {
		wg.Add(1)
		go func(slot int, r contact.Recipient) {
			defer wg.Done()
			outcomes[slot] = d.sendOne(ctx, r, encoded)
		}(i, r)
	}
	wg.Wait()

	return Result{Outcomes: outcomes}, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, r contact.Recipient, encoded string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Recipient: r, Status: StatusTransportError, Detail: "cancelled: " + err.Error()}
	}

	raw, err := d.sender.Send(ctx, r.PublicKey, encoded)
	if err != nil {
		detail := err.Error()
		if ctxErr := ctx.Err(); ctxErr != nil {
			detail = "cancelled: " + ctxErr.Error()
		}
		return Outcome{Recipient: r, Status: StatusTransportError, Detail: detail}
	}

	report, err := payload.DecodeDeliveryReport(raw)
	if err != nil {
		return Outcome{Recipient: r, Status: StatusTransportError, Detail: err.Error()}
	}
	if !report.Accepted {
		return Outcome{Recipient: r, Status: StatusTransportError, Detail: report.Detail}
	}
	if !report.Delivered {
		return Outcome{Recipient: r, Status: StatusRejected, Detail: report.Detail}
	}
	return Outcome{Recipient: r, Status: StatusDelivered}
}
