// Package eventlog is the append-only change log the registries emit
// notifications into.
//
// The log is replayable: every accepted operation appends exactly one event,
// in the total order the operations committed. Consumers either tail the log
// by index or subscribe for best-effort live delivery; a subscriber that
// falls behind can always re-sync from Tail.
package eventlog

import (
	"sync"

	"xdao.co/anchorauth/identity"
)

// Event is a notification produced by an accepted registry operation.
type Event interface {
	// Kind names the event type ("AnchorAdded", ...).
	Kind() string
}

// AnchorAdded reports a new anchor record appended to owner's log.
type AnchorAdded struct {
	Owner identity.Address
	// Index is the record's permanent identifier within the owner's log.
	Index int
}

func (AnchorAdded) Kind() string { return "AnchorAdded" }

// AuthorizationAdded reports a new authorization record.
type AuthorizationAdded struct {
	Owner identity.Address
	// GlobalIndex is the record's permanent identifier in the global log.
	GlobalIndex int
	// OwnerIndexPos and RecipientIndexPos are the record's positions within
	// the owner- and recipient-specific indices.
	OwnerIndexPos     int
	RecipientIndexPos int
}

func (AuthorizationAdded) Kind() string { return "AuthorizationAdded" }

// AuthorizationUpdated reports an in-place mutation (update or revoke) of an
// existing authorization record.
type AuthorizationUpdated struct {
	Owner       identity.Address
	GlobalIndex int
}

func (AuthorizationUpdated) Kind() string { return "AuthorizationUpdated" }

// Log is a mutex-guarded append-only event sequence with subscriber fan-out.
type Log struct {
	mu      sync.Mutex
	events  []Event
	subs    map[int]chan Event
	nextSub int
}

func New() *Log {
	return &Log{subs: map[int]chan Event{}}
}

// Append records e and delivers it to subscribers. Delivery is best-effort:
// a subscriber whose buffer is full misses the live send and must re-sync
// via Tail. Appends observe the caller's ordering; registries append while
// holding their operation lock.
func (l *Log) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Len returns the number of events appended so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Tail returns a copy of the events at index from onward. An out-of-range
// from yields nil.
func (l *Log) Tail(from int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if from < 0 || from >= len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-from)
	copy(out, l.events[from:])
	return out
}

// Subscribe registers a live event channel with the given buffer size and
// returns it with a cancel function. Cancel closes the channel.
func (l *Log) Subscribe(buf int) (<-chan Event, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
