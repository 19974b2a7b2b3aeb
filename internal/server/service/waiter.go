package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second
)

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	timeout  time.Duration
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	MoveCount int           // Last known move count
	Notify    chan struct{} // Closed exactly once on change, timeout or shutdown
	once      sync.Once
	timer     *time.Timer
}

func (r *WaitRequest) fire() {
	r.once.Do(func() {
		r.timer.Stop()
		close(r.Notify)
	})
}

// NewWaitRegistry creates a new wait registry
func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
		timeout:  WaitTimeout,
	}
}

// RegisterWait returns a channel that is closed when the game's move count
// moves past moveCount, its seating changes, it is deleted, the wait times
// out or the registry shuts down
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	req := &WaitRequest{
		MoveCount: moveCount,
		Notify:    make(chan struct{}),
	}

	w.mu.Lock()
	req.timer = time.AfterFunc(w.timeout, func() {
		w.remove(gameID, req)
		req.fire()
	})
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.mu.Unlock()

	// Cleanup on client disconnect or shutdown
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.remove(gameID, req)
			req.fire()
		case <-req.Notify:
		case <-w.shutdown:
			req.fire()
		}
	}()

	return req.Notify
}

// NotifyGame wakes every waiter whose known move count differs
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.Lock()
	var woken, kept []*WaitRequest
	for _, req := range w.waiters[gameID] {
		if req.MoveCount != currentMoveCount {
			woken = append(woken, req)
		} else {
			kept = append(kept, req)
		}
	}
	w.store(gameID, kept)
	w.mu.Unlock()

	for _, req := range woken {
		req.fire()
	}
}

// BroadcastGame wakes every waiter on a game regardless of move count
func (w *WaitRegistry) BroadcastGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.fire()
	}
}

// RemoveGame releases all waiters of a game that is being deleted
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.BroadcastGame(gameID)
}

// Waiting returns the number of registered waiters on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown releases every waiter and waits for cleanup goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) remove(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.store(gameID, append(waitList[:i:i], waitList[i+1:]...))
			return
		}
	}
}

// store replaces a game's waiter list; caller holds mu
func (w *WaitRegistry) store(gameID string, list []*WaitRequest) {
	if len(list) == 0 {
		delete(w.waiters, gameID)
		return
	}
	w.waiters[gameID] = list
}
