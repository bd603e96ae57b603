package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaver struct {
	mu     sync.Mutex
	dirty  bool
	saves  int
	calls  int
	err    error
	called chan struct{}
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{called: make(chan struct{}, 16)}
}

func (f *fakeSaver) SaveIfDirty() (bool, error) {
	f.mu.Lock()
	defer func() {
		f.mu.Unlock()
		f.called <- struct{}{}
	}()
	f.calls++
	if !f.dirty {
		return false, nil
	}
	if f.err != nil {
		return false, f.err
	}
	f.dirty = false
	f.saves++
	return true, nil
}

func (f *fakeSaver) set(dirty bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirty, f.err = dirty, err
}

func (f *fakeSaver) counts() (calls, saves int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.saves
}

func waitCall(t *testing.T, f *fakeSaver) {
	t.Helper()
	select {
	case <-f.called:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save attempt")
	}
}

func TestLoop_SavesOnlyWhenDirty(t *testing.T) {
	clock := clockwork.NewFakeClock()
	saver := newFakeSaver()
	loop := New(Config{Interval: time.Second, Clock: clock}, saver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)
	waitCall(t, saver)
	_, saves := saver.counts()
	assert.Equal(t, 0, saves)

	saver.set(true, errors.New("disk full"))
	clock.Advance(time.Second)
	waitCall(t, saver)
	_, saves = saver.counts()
	assert.Equal(t, 0, saves, "failed save leaves the session dirty")

	saver.set(true, nil)
	clock.Advance(time.Second)
	waitCall(t, saver)
	_, saves = saver.counts()
	assert.Equal(t, 1, saves)

	cancel()
	<-done
	waitCall(t, saver)
	calls, saves := saver.counts()
	assert.Equal(t, 4, calls, "final attempt on shutdown")
	assert.Equal(t, 1, saves)
}

func TestNew_DefaultInterval(t *testing.T) {
	loop := New(Config{}, newFakeSaver())
	assert.Equal(t, DefaultInterval, loop.interval)
}
