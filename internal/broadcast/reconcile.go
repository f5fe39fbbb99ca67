package broadcast

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bazaar/internal/messagelog"
	"bazaar/internal/payload"
	"bazaar/internal/securelog"
)

// MessageLog is the slice of the message log the reconciler needs.
type MessageLog interface {
	Append(ctx context.Context, e messagelog.Entry) error
	Reload(room messagelog.RoomID)
}

// SenderIdentity is stamped on every log entry written by a reconcile pass.
type SenderIdentity struct {
	Name      string
	PublicKey string
}

// Reconciler records confirmed deliveries in the local message log.
type Reconciler struct {
	log MessageLog
	now func() time.Time
}

func NewReconciler(log MessageLog) *Reconciler {
	return &Reconciler{log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Reconcile appends one log entry per delivered outcome, in the room of
// that outcome's recipient, then fires one reload per touched room. An
// append failure downgrades the outcome to a transport error: a message is
// never reported delivered if it was not durably recorded. Non-delivered
// outcomes pass through untouched.
func (r *Reconciler) Reconcile(ctx context.Context, msg payload.Message, result Result, sender SenderIdentity) Result {
	touched := make(map[messagelog.RoomID]struct{})
	for i, o := range result.Outcomes {
		if o.Status != StatusDelivered {
			continue
		}
		room := messagelog.RoomID(o.Recipient.PublicKey)
		entry := messagelog.Entry{
			ID:         uuid.NewString(),
			RoomID:     room,
			RoomName:   o.Recipient.Name,
			Sender:     sender.Name,
			Kind:       string(msg.Kind),
			Body:       msg.Body,
			FileData:   msg.FileData,
			ListingRef: msg.ListingRef,
			SentAt:     r.now(),
		}
		if err := r.log.Append(ctx, entry); err != nil {
			securelog.Error("broadcast.reconcile.append", err)
			result.Outcomes[i] = Outcome{
				Recipient: o.Recipient,
				Status:    StatusTransportError,
				Detail:    "log append failed: " + err.Error(),
			}
			continue
		}
		touched[room] = struct{}{}
	}

	for room := range touched {
		r.log.Reload(room)
	}
	return result
}
