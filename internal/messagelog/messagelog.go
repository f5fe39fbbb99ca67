// Package messagelog is the local append-only record of messages exchanged
// per room. A room is the conversation with one contact, identified by that
// contact's public key.
package messagelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type RoomID string

var ErrInvalidEntry = errors.New("messagelog: invalid entry")

// Entry is one logged message. Entries are append-only; nothing in this
// package mutates or deletes an existing entry.
type Entry struct {
	ID         string
	RoomID     RoomID
	RoomName   string
	Sender     string
	Kind       string
	Body       string
	FileData   string
	ListingRef string
	SentAt     time.Time
}

type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListRecent(ctx context.Context, room RoomID, limit int) ([]Entry, error)
}

// Log wraps a repository with per-room append serialization and reload
// signaling. Appends to the same room happen in call order; different rooms
// never contend.
type Log struct {
	repo     Repository
	notifier *Notifier

	mu    sync.Mutex
	rooms map[RoomID]*sync.Mutex
}

func New(repo Repository, notifier *Notifier) *Log {
	return &Log{
		repo:     repo,
		notifier: notifier,
		rooms:    make(map[RoomID]*sync.Mutex),
	}
}

func (l *Log) Append(ctx context.Context, e Entry) error {
	if e.ID == "" || e.RoomID == "" || e.SentAt.IsZero() {
		return fmt.Errorf("%w: id, room, and sent_at are required", ErrInvalidEntry)
	}
	lock := l.roomLock(e.RoomID)
	lock.Lock()
	defer lock.Unlock()
	return l.repo.Append(ctx, e)
}

func (l *Log) ListRecent(ctx context.Context, room RoomID, limit int) ([]Entry, error) {
	return l.repo.ListRecent(ctx, room, limit)
}

// Reload signals the room's consumers that its message view is stale.
// Fire-and-forget: a slow or absent consumer never blocks the caller.
func (l *Log) Reload(room RoomID) {
	if l.notifier != nil {
		l.notifier.Notify(room)
	}
}

func (l *Log) roomLock(room RoomID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.rooms[room]
	if !ok {
		lock = &sync.Mutex{}
		l.rooms[room] = lock
	}
	return lock
}
