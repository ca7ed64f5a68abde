package reorder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tab struct {
	ID   int64
	Name string
}

func tabs(ids ...int64) []tab {
	out := make([]tab, len(ids))
	for i, id := range ids {
		out[i] = tab{ID: id}
	}
	return out
}

func okFuncs(persisted *[][]int64) Funcs[tab] {
	return Funcs[tab]{
		ID: func(t tab) int64 { return t.ID },
		Persist: func(_ context.Context, ids []int64) error {
			if persisted != nil {
				*persisted = append(*persisted, ids)
			}
			return nil
		},
		Fetch: func(context.Context) ([]tab, error) { return nil, errors.New("unused") },
	}
}

func TestMove_SplicesAndPersistsFullOrder(t *testing.T) {
	var persisted [][]int64
	list := NewList(tabs(1, 2, 3, 4), okFuncs(&persisted))

	res, err := list.Move(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Reverted)
	assert.Equal(t, []int64{2, 3, 1, 4}, res.IDs)

	require.Len(t, persisted, 1)
	assert.Equal(t, []int64{2, 3, 1, 4}, persisted[0])
	assert.Equal(t, []int64{2, 3, 1, 4}, list.IDs())
}

func TestMove_BackwardSplice(t *testing.T) {
	list := NewList(tabs(1, 2, 3, 4), okFuncs(nil))
	res, err := list.Move(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1, 2, 3}, res.IDs)
}

func TestMove_SameIndexIsNoOp(t *testing.T) {
	var persisted [][]int64
	list := NewList(tabs(1, 2, 3), okFuncs(&persisted))

	res, err := list.Move(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, persisted, "a drop on the original position must not hit the server")
	assert.Equal(t, []int64{1, 2, 3}, list.IDs())
}

func TestMove_OutOfRange(t *testing.T) {
	list := NewList(tabs(1, 2), okFuncs(nil))
	_, err := list.Move(context.Background(), 0, 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = list.Move(context.Background(), -1, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMove_PersistFailureRevertsToServerOrder(t *testing.T) {
	list := NewList(tabs(1, 2, 3), Funcs[tab]{
		ID:      func(t tab) int64 { return t.ID },
		Persist: func(context.Context, []int64) error { return errors.New("boom") },
		Fetch:   func(context.Context) ([]tab, error) { return tabs(1, 2, 3), nil },
	})

	res, err := list.Move(context.Background(), 0, 2)
	require.Error(t, err)
	assert.True(t, res.Reverted)
	assert.Equal(t, []int64{1, 2, 3}, res.IDs, "failed persist must restore the authoritative order")
	assert.Equal(t, []int64{1, 2, 3}, list.IDs())
}

func TestMove_FailedRefetchKeepsOptimisticOrder(t *testing.T) {
	list := NewList(tabs(1, 2, 3), Funcs[tab]{
		ID:      func(t tab) int64 { return t.ID },
		Persist: func(context.Context, []int64) error { return errors.New("boom") },
		Fetch:   func(context.Context) ([]tab, error) { return nil, errors.New("also down") },
	})

	res, err := list.Move(context.Background(), 0, 1)
	require.Error(t, err)
	assert.Equal(t, []int64{2, 1, 3}, res.IDs)
}

func TestRevert_StaleSequenceIsDiscarded(t *testing.T) {
	list := NewList(tabs(1, 2, 3), Funcs[tab]{
		ID:      func(t tab) int64 { return t.ID },
		Persist: func(context.Context, []int64) error { return nil },
		Fetch:   func(context.Context) ([]tab, error) { return tabs(1, 2, 3), nil },
	})

	// Simulate a revert that belongs to an already-superseded move: a second
	// move bumped the sequence while the first persist's failure was in
	// flight. The stale server order must not overwrite the newer state.
	_, err := list.Move(context.Background(), 0, 1) // seq 1, order 2 1 3
	require.NoError(t, err)
	list.revert(context.Background(), 0)
	assert.Equal(t, []int64{2, 1, 3}, list.IDs())

	// A revert carrying the current sequence does apply.
	list.revert(context.Background(), 1)
	assert.Equal(t, []int64{1, 2, 3}, list.IDs())
}

func TestReplace(t *testing.T) {
	list := NewList(tabs(1, 2), okFuncs(nil))
	list.Replace(tabs(9, 8, 7))
	assert.Equal(t, []int64{9, 8, 7}, list.IDs())
}

func TestRefresh_ReplacesWithServerOrder(t *testing.T) {
	list := NewList(tabs(1, 2, 3), Funcs[tab]{
		ID:      func(t tab) int64 { return t.ID },
		Persist: func(context.Context, []int64) error { return nil },
		Fetch:   func(context.Context) ([]tab, error) { return tabs(3, 1, 2), nil },
	})

	require.NoError(t, list.Refresh(context.Background()))
	assert.Equal(t, []int64{3, 1, 2}, list.IDs(), "a read must pick up order changes made elsewhere")
}

func TestRefresh_FetchErrorKeepsCurrentOrder(t *testing.T) {
	list := NewList(tabs(1, 2), Funcs[tab]{
		ID:      func(t tab) int64 { return t.ID },
		Persist: func(context.Context, []int64) error { return nil },
		Fetch:   func(context.Context) ([]tab, error) { return nil, errors.New("down") },
	})

	require.Error(t, list.Refresh(context.Background()))
	assert.Equal(t, []int64{1, 2}, list.IDs())
}

func TestRefresh_SkippedWhileMoveInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetches := 0
	list := NewList(tabs(1, 2, 3), Funcs[tab]{
		ID: func(t tab) int64 { return t.ID },
		Persist: func(context.Context, []int64) error {
			close(started)
			<-release
			return nil
		},
		Fetch: func(context.Context) ([]tab, error) {
			fetches++
			return tabs(1, 2, 3), nil
		},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = list.Move(context.Background(), 0, 1)
	}()
	<-started

	// The optimistic order must stay put while its persist is unresolved.
	require.NoError(t, list.Refresh(context.Background()))
	assert.Zero(t, fetches, "a refresh racing an in-flight move must not hit the server")
	assert.Equal(t, []int64{2, 1, 3}, list.IDs())

	close(release)
	<-done
}
