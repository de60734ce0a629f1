// Package mailbox implements a single-slot, zero-buffer handoff between one
// producer and one consumer. It is not a queue: at most one deposit may be
// outstanding at any time.
package mailbox

import "sync"

// Mailbox holds at most one item and a signal telling the waiting side that
// a fresh item was deposited since it last looked.
type Mailbox[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	item     T
	occupied bool
	signaled bool
	closed   bool
}

// New returns an empty mailbox.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Deposit places item in the slot and wakes the waiter. Depositing while the
// previous signal has not been consumed is a usage error and panics.
// Deposits after Close are dropped.
func (m *Mailbox[T]) Deposit(item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.signaled {
		panic("[invariant violated] mailbox: deposit while previous item is pending")
	}
	m.item = item
	m.occupied = true
	m.signaled = true
	m.cond.Signal()
}

// Wait blocks until an item has been deposited since the last Wait, resets the
// signal and returns the item. The item stays visible in the slot until Clear.
// It returns false once the mailbox is closed.
func (m *Mailbox[T]) Wait() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.signaled && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		var zero T
		return zero, false
	}
	m.signaled = false
	return m.item, true
}

// Peek returns the current slot content without consuming the signal.
func (m *Mailbox[T]) Peek() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.item, m.occupied
}

// Clear empties the slot. A deposit the waiter has not picked up yet is
// withdrawn, so a failed exchange never leaves a stale request behind.
func (m *Mailbox[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.item = zero
	m.occupied = false
	m.signaled = false
}

// Close deposits the termination sentinel: the slot is emptied and every
// current and future Wait returns false. Close is idempotent.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	var zero T
	m.item = zero
	m.occupied = false
	m.signaled = false
	m.closed = true
	m.cond.Broadcast()
}

// Closed reports whether Close was called.
func (m *Mailbox[T]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
