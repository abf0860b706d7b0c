package eventlog

import (
	"testing"

	"xdao.co/anchorauth/identity"
)

func addr(b byte) identity.Address {
	var a identity.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestLog_AppendOrderPreserved(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Append(AnchorAdded{Owner: addr(1), Index: i})
	}
	if l.Len() != 5 {
		t.Fatalf("Len = %d, want 5", l.Len())
	}
	for i, e := range l.Tail(0) {
		got, ok := e.(AnchorAdded)
		if !ok {
			t.Fatalf("event %d: unexpected type %T", i, e)
		}
		if got.Index != i {
			t.Fatalf("event %d out of order: index %d", i, got.Index)
		}
	}
}

func TestLog_TailBounds(t *testing.T) {
	l := New()
	l.Append(AuthorizationUpdated{Owner: addr(2), GlobalIndex: 0})
	l.Append(AuthorizationUpdated{Owner: addr(2), GlobalIndex: 1})

	if got := l.Tail(1); len(got) != 1 {
		t.Fatalf("Tail(1) returned %d events, want 1", len(got))
	}
	if got := l.Tail(2); got != nil {
		t.Fatalf("Tail past end should be nil, got %v", got)
	}
	if got := l.Tail(-1); got != nil {
		t.Fatalf("Tail(-1) should be nil, got %v", got)
	}
}

func TestLog_SubscribeDeliversLive(t *testing.T) {
	l := New()
	ch, cancel := l.Subscribe(4)
	defer cancel()

	want := AuthorizationAdded{Owner: addr(3), GlobalIndex: 7, OwnerIndexPos: 0, RecipientIndexPos: 2}
	l.Append(want)

	got := <-ch
	if got != Event(want) {
		t.Fatalf("subscriber got %v, want %v", got, want)
	}
}

func TestLog_SlowSubscriberResyncsViaTail(t *testing.T) {
	l := New()
	ch, cancel := l.Subscribe(1)
	defer cancel()

	l.Append(AnchorAdded{Owner: addr(4), Index: 0})
	l.Append(AnchorAdded{Owner: addr(4), Index: 1}) // dropped: buffer full

	if len(ch) != 1 {
		t.Fatalf("expected exactly one buffered event, got %d", len(ch))
	}
	if got := l.Tail(0); len(got) != 2 {
		t.Fatalf("Tail should still hold both events, got %d", len(got))
	}
}

func TestLog_CancelClosesChannel(t *testing.T) {
	l := New()
	ch, cancel := l.Subscribe(1)
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}

	// Appends after cancel must not panic.
	l.Append(AnchorAdded{Owner: addr(5), Index: 0})
}
