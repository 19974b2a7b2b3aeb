package processor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGameQueueSerializesPerGame(t *testing.T) {
	q := NewGameQueue(4, nil)
	defer q.Shutdown(time.Second)

	var inFlight, maxInFlight, total int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Do("same-game", func() {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				atomic.AddInt32(&total, 1)
			})
			if err != nil && !errors.Is(err, ErrQueueFull) {
				t.Errorf("do: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Fatalf("%d tasks ran concurrently on one game", maxInFlight)
	}
	if total == 0 {
		t.Fatalf("no task ran")
	}
}

func TestGameQueueStableShard(t *testing.T) {
	q := NewGameQueue(8, nil)
	defer q.Shutdown(time.Second)

	for _, id := range []string{"a", "b", "c", "0b7d4c2e"} {
		if q.shardFor(id) != q.shardFor(id) {
			t.Fatalf("shard of %q is not stable", id)
		}
	}
}

func TestGameQueueRecoversPanic(t *testing.T) {
	q := NewGameQueue(1, nil)
	defer q.Shutdown(time.Second)

	if err := q.Do("g", func() { panic("boom") }); err != nil {
		t.Fatalf("panicking task: %v", err)
	}
	ran := false
	if err := q.Do("g", func() { ran = true }); err != nil || !ran {
		t.Fatalf("shard dead after panic: err=%v ran=%v", err, ran)
	}
}

func TestGameQueueClosed(t *testing.T) {
	q := NewGameQueue(2, nil)
	if err := q.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := q.Do("g", func() {}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("do after shutdown = %v", err)
	}
}
