package messagelog

import "sync"

const subscriberBuffer = 16

// Notifier fans room reload signals out to subscribers.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan RoomID]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan RoomID]struct{})}
}

// Subscribe returns a channel of room reload signals and a cancel func.
// Signals are dropped for subscribers whose buffer is full.
func (n *Notifier) Subscribe() (<-chan RoomID, func()) {
	ch := make(chan RoomID, subscriberBuffer)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

func (n *Notifier) Notify(room RoomID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- room:
		default:
		}
	}
}
