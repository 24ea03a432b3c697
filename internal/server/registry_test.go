package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRemoveOnce(t *testing.T) {
	r := NewRegistry()
	s := &Session{id: "a"}

	r.Add(s)
	assert.True(t, r.Contains(s))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Remove(s))
	assert.False(t, r.Remove(s), "second removal is a no-op")
	assert.False(t, r.Contains(s))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRemoveUnknown(t *testing.T) {
	r := NewRegistry()
	r.Add(&Session{id: "a"})

	assert.False(t, r.Remove(&Session{id: "a"}), "sessions are keyed by identity")
	assert.Equal(t, 1, r.Len())
}

func TestRegistryConcurrentAddRemove(t *testing.T) {
	r := NewRegistry()
	sessions := make([]*Session, 200)
	for i := range sessions {
		sessions[i] = &Session{}
	}

	var wg sync.WaitGroup
	removed := make(chan bool, len(sessions)*2)
	for _, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(s)
			removed <- r.Remove(s)
			removed <- r.Remove(s)
		}()
	}
	wg.Wait()
	close(removed)

	count := 0
	for ok := range removed {
		if ok {
			count++
		}
	}
	assert.Equal(t, len(sessions), count)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryCloseAllWithoutTransport(t *testing.T) {
	r := NewRegistry()
	r.Add(&Session{})
	assert.NotPanics(t, func() { r.closeAll(1001, "bye") })
}
