package main

import (
	"context"

	"github.com/google/uuid"

	"bazaar/internal/messagelog"
	"bazaar/internal/payload"
	"bazaar/internal/securelog"
	"bazaar/internal/transport"
)

// consumeInbound appends each inbound message event to the local log and
// signals the sender's room. Undecodable events are dropped; the feed
// stays up.
func consumeInbound(ctx context.Context, events <-chan transport.Event, log *messagelog.Log) {
	for ev := range events {
		if ev.Type != "message" || ev.PublicKey == "" {
			continue
		}
		msg, err := payload.DecodeMessage(ev.Data)
		if err != nil {
			securelog.Error("inbound.decode", err)
			continue
		}
		entry := messagelog.Entry{
			ID:         uuid.NewString(),
			RoomID:     messagelog.RoomID(ev.PublicKey),
			RoomName:   ev.Name,
			Sender:     ev.Name,
			Kind:       string(msg.Kind),
			Body:       msg.Body,
			FileData:   msg.FileData,
			ListingRef: msg.ListingRef,
			SentAt:     ev.ParseSentAt(),
		}
		if entry.Sender == "" {
			entry.Sender = ev.PublicKey
		}
		if err := log.Append(ctx, entry); err != nil {
			securelog.Error("inbound.append", err)
			continue
		}
		log.Reload(entry.RoomID)
	}
}
