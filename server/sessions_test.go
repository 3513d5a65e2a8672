package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGetRemove(t *testing.T) {
	r := newRegistry()
	require.Zero(t, r.len())

	s := r.create(kindKent)
	require.NotEmpty(t, s.ID)
	require.Equal(t, kindKent, s.Kind)

	got, ok := r.get(s.ID)
	require.True(t, ok)
	require.Same(t, s, got)
	require.Equal(t, 1, r.len())

	_, ok = r.get("nope")
	require.False(t, ok)

	r.remove(s.ID)
	_, ok = r.get(s.ID)
	require.False(t, ok)
	require.Zero(t, r.len())
}

func TestRegistryUniqueIDs(t *testing.T) {
	r := newRegistry()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := r.create(kindChase)
		require.False(t, seen[s.ID])
		seen[s.ID] = true
	}
	require.Equal(t, 100, r.len())
}

func TestSessionDoSequencesActions(t *testing.T) {
	s := &session{ID: "x", Kind: kindKent}

	seq1 := s.do(func() {})
	seq2 := s.do(func() {})
	require.Equal(t, int64(1), seq1)
	require.Equal(t, int64(2), seq2)

	// Concurrent actions serialize; every seq is handed out exactly once.
	var mu sync.Mutex
	seen := map[int64]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := s.do(func() {})
			mu.Lock()
			require.False(t, seen[seq])
			seen[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, seen, 50)
	require.Equal(t, int64(53), s.do(func() {}))
}

func TestRegistryPrune(t *testing.T) {
	r := newRegistry()
	stale := r.create(kindDraw)
	fresh := r.create(kindDraw)

	stale.mu.Lock()
	stale.lastUsed = time.Now().Add(-3 * time.Hour)
	stale.mu.Unlock()

	require.Equal(t, 1, r.prune(2*time.Hour))
	_, ok := r.get(stale.ID)
	require.False(t, ok)
	_, ok = r.get(fresh.ID)
	require.True(t, ok)

	require.Zero(t, r.prune(2*time.Hour))
}
