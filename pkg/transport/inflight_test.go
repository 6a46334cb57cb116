package transport

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestInFlightRegistryRegisterAndCancel(t *testing.T) {
	r := NewInFlightRegistry()

	cancelled := false
	r.Register("chat-abc123", func() { cancelled = true })

	ok := r.Cancel("chat-abc123")
	if !ok {
		t.Error("Cancel should return true for registered chat")
	}
	if !cancelled {
		t.Error("cancel function should have been called")
	}

	// Second cancel should return false (already removed).
	ok = r.Cancel("chat-abc123")
	if ok {
		t.Error("Cancel should return false after already cancelled")
	}
}

func TestInFlightRegistryCancelUnknown(t *testing.T) {
	r := NewInFlightRegistry()

	ok := r.Cancel("chat-nonexistent")
	if ok {
		t.Error("Cancel should return false for unknown chat")
	}
}

func TestInFlightRegistryReplaceCancelsPrevious(t *testing.T) {
	r := NewInFlightRegistry()

	firstCancelled := false
	r.Register("chat-abc123", func() { firstCancelled = true })
	r.Register("chat-abc123", func() {})

	if !firstCancelled {
		t.Error("registering a second run should cancel the first")
	}
}

func TestInFlightRegistryRemove(t *testing.T) {
	r := NewInFlightRegistry()

	cancelled := false
	token := r.Register("chat-abc123", func() { cancelled = true })

	r.Remove("chat-abc123", token)

	ok := r.Cancel("chat-abc123")
	if ok {
		t.Error("Cancel should return false after Remove")
	}
	if cancelled {
		t.Error("cancel function should not have been called by Remove")
	}
}

func TestInFlightRegistryRemoveUnknown(t *testing.T) {
	r := NewInFlightRegistry()
	// Should not panic.
	r.Remove("chat-nonexistent", 1)
}

func TestInFlightRegistryStaleRemoveKeepsNewerRun(t *testing.T) {
	r := NewInFlightRegistry()

	firstToken := r.Register("chat-abc123", func() {})

	secondCancelled := false
	r.Register("chat-abc123", func() { secondCancelled = true })

	// The replaced run finishing must not unregister its replacement.
	r.Remove("chat-abc123", firstToken)

	if !r.Cancel("chat-abc123") {
		t.Error("second run should still be cancellable after stale Remove")
	}
	if !secondCancelled {
		t.Error("second run's cancel function should have been called")
	}
}

func TestInFlightRegistryConcurrentAccess(t *testing.T) {
	r := NewInFlightRegistry()
	var cancelCount atomic.Int64
	const numEntries = 100

	// Register entries concurrently.
	var wg sync.WaitGroup
	for i := 0; i < numEntries; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Register(id, func() { cancelCount.Add(1) })
		}(idForIndex(i))
	}
	wg.Wait()

	// Cancel half concurrently.
	for i := 0; i < numEntries/2; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Cancel(id)
		}(idForIndex(i))
	}
	wg.Wait()

	if cancelCount.Load() != numEntries/2 {
		t.Errorf("expected %d cancellations, got %d", numEntries/2, cancelCount.Load())
	}

	// Cancel the other half concurrently too; Cancel covers removal.
	for i := numEntries / 2; i < numEntries; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Cancel(id)
		}(idForIndex(i))
	}
	wg.Wait()

	if cancelCount.Load() != numEntries {
		t.Errorf("expected %d cancellations, got %d", numEntries, cancelCount.Load())
	}
}

func idForIndex(i int) string {
	return "chat-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
}
