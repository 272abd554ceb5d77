package multiplayer

import "sync"

// Subscription delivers coordinator snapshots to one consumer, such as a
// Bubble Tea program. Only the latest snapshots matter, so a slow reader
// loses old ones instead of blocking the coordinator.
type Subscription struct {
	updates  chan State
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscription(bufferSize int) *Subscription {
	if bufferSize < 1 {
		bufferSize = 16
	}
	return &Subscription{
		updates: make(chan State, bufferSize),
		done:    make(chan struct{}),
	}
}

// send queues a snapshot. If the buffer is full, the oldest is dropped.
func (s *Subscription) send(st State) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.updates <- st:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- st:
		default:
		}
	}
}

// Updates returns the channel snapshots arrive on.
func (s *Subscription) Updates() <-chan State {
	return s.updates
}

// Done returns a channel that closes when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close ends the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Subscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// subscriptions is the set of live subscriptions of a coordinator.
type subscriptions struct {
	mu   sync.Mutex
	subs []*Subscription
}

func (r *subscriptions) add(s *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
}

// broadcast sends st to every live subscription and forgets closed ones.
func (r *subscriptions) broadcast(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := r.subs[:0]
	for _, s := range r.subs {
		if s.closed() {
			continue
		}
		s.send(st)
		live = append(live, s)
	}
	clear(r.subs[len(live):])
	r.subs = live
}

func (r *subscriptions) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		s.Close()
	}
	r.subs = nil
}
