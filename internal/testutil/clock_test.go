package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallClock_Advances(t *testing.T) {
	clock := NewWallClock(Epoch, time.Second)

	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())
	assert.Equal(t, Epoch.Add(2*time.Second), clock.Peek())
}

func TestWallClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewWallClock(Epoch, 0)

	for range 3 {
		assert.Equal(t, Epoch, clock.Now())
	}
}

func TestWallClock_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	clock := NewWallClock(time.Date(2026, 1, 1, 1, 0, 0, 0, loc), 0)

	assert.Equal(t, time.UTC, clock.Now().Location())
	assert.True(t, clock.Now().Equal(Epoch))
}

func TestWallClock_Reset(t *testing.T) {
	clock := NewWallClock(Epoch, time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset(Epoch)
	assert.Equal(t, Epoch, clock.Now())
}

func TestWallClock_Concurrent(t *testing.T) {
	clock := NewWallClock(Epoch, time.Millisecond)
	const goroutines = 50

	var wg sync.WaitGroup
	seen := make(chan time.Time, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- clock.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[time.Time]bool{}
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, goroutines)
	assert.Equal(t, Epoch.Add(goroutines*time.Millisecond), clock.Peek())
}
