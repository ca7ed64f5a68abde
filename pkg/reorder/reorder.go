// Package reorder implements drag-reorder for flat tab lists: the move is
// applied to the in-memory list immediately, the full ordered id list is then
// persisted, and a failed persist reverts by refetching the authoritative
// server order rather than undoing the splice locally.
package reorder

import (
	"context"
	"errors"
	"sync"
)

var ErrIndexOutOfRange = errors.New("reorder: index out of range")

// Funcs supplies the list's identity and persistence hooks.
type Funcs[T any] struct {
	// ID extracts the stable identifier sent to the server.
	ID func(T) int64
	// Persist stores the full ordered id list. A nil error confirms the
	// optimistic order; any error triggers a revert.
	Persist func(ctx context.Context, ids []int64) error
	// Fetch returns the authoritative server order, used to revert.
	Fetch func(ctx context.Context) ([]T, error)
}

// List is one reorderable tab list. Moves are serialized: a second drag waits
// for the in-flight persist instead of racing it. Each move carries a
// sequence number; a revert whose move has been superseded is discarded so a
// slow stale response never overwrites fresher state.
type List[T any] struct {
	mu       sync.Mutex
	inflight sync.Mutex
	seq      uint64
	items    []T
	funcs    Funcs[T]
}

func NewList[T any](items []T, funcs Funcs[T]) *List[T] {
	if funcs.ID == nil || funcs.Persist == nil || funcs.Fetch == nil {
		panic("reorder: all Funcs hooks are required")
	}
	return &List[T]{
		items: append([]T(nil), items...),
		funcs: funcs,
	}
}

// Items returns a snapshot of the current (possibly optimistic) order.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

// IDs returns the current order as ids.
func (l *List[T]) IDs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.idsLocked()
}

func (l *List[T]) idsLocked() []int64 {
	ids := make([]int64, len(l.items))
	for i, item := range l.items {
		ids[i] = l.funcs.ID(item)
	}
	return ids
}

// Replace swaps in a fresh authoritative order (after an external refetch).
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T(nil), items...)
}

// Refresh refetches the authoritative order and replaces the list with it.
// When a move is still persisting the refresh is skipped: the optimistic
// order stays visible until the move settles, instead of a read racing it.
func (l *List[T]) Refresh(ctx context.Context) error {
	if !l.inflight.TryLock() {
		return nil
	}
	defer l.inflight.Unlock()

	fresh, err := l.funcs.Fetch(ctx)
	if err != nil {
		return err
	}
	l.Replace(fresh)
	return nil
}

// MoveResult reports what a Move did.
type MoveResult struct {
	// Changed is false for a drop on the original index (no-op).
	Changed bool
	// Reverted is true when the persist failed and the list was replaced
	// with the refetched server order.
	Reverted bool
	// IDs is the order after the move settled.
	IDs []int64
}

// Move splices the item at from to position to and persists the new order.
func (l *List[T]) Move(ctx context.Context, from, to int) (MoveResult, error) {
	l.inflight.Lock()
	defer l.inflight.Unlock()

	l.mu.Lock()
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		l.mu.Unlock()
		return MoveResult{}, ErrIndexOutOfRange
	}
	if from == to {
		ids := l.idsLocked()
		l.mu.Unlock()
		return MoveResult{Changed: false, IDs: ids}, nil
	}

	item := l.items[from]
	rest := append(append([]T(nil), l.items[:from]...), l.items[from+1:]...)
	l.items = append(append(append([]T(nil), rest[:to]...), item), rest[to:]...)
	l.seq++
	seq := l.seq
	ids := l.idsLocked()
	l.mu.Unlock()

	if err := l.funcs.Persist(ctx, ids); err != nil {
		l.revert(ctx, seq)
		return MoveResult{Changed: true, Reverted: true, IDs: l.IDs()}, err
	}
	return MoveResult{Changed: true, IDs: ids}, nil
}

// revert replaces the optimistic order with the refetched server order,
// unless a newer move has already superseded this one.
func (l *List[T]) revert(ctx context.Context, seq uint64) {
	fresh, err := l.funcs.Fetch(ctx)
	if err != nil {
		// Both the persist and the refetch failed; the optimistic order
		// stays until the next page-level invalidation refetches it.
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seq != seq {
		return
	}
	l.items = append([]T(nil), fresh...)
}
