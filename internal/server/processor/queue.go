package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const (
	defaultWorkers = 4
	shardQueueSize = 64
)

var (
	ErrQueueClosed = errors.New("queue is shutting down")
	ErrQueueFull   = errors.New("queue is full")
)

// gameTask is one unit of work bound to a game id
type gameTask struct {
	gameID string
	fn     func()
	ran    bool
	done   chan struct{}
}

// GameQueue runs work for a game on a single worker goroutine chosen by
// hashing the game id, so operations on one game never overlap while
// different games proceed in parallel
type GameQueue struct {
	shards  []chan *gameTask
	wg      sync.WaitGroup
	stopped chan struct{} // closed once every worker has exited
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

// NewGameQueue creates a queue with the given number of shards
func NewGameQueue(workerCount int, log *zap.Logger) *GameQueue {
	if workerCount < 1 {
		workerCount = defaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &GameQueue{
		shards:  make([]chan *gameTask, workerCount),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.Named("queue"),
	}
	for i := range q.shards {
		q.shards[i] = make(chan *gameTask, shardQueueSize)
	}

	q.start()
	return q
}

func (q *GameQueue) start() {
	for i := range q.shards {
		q.wg.Add(1)
		go q.worker(i)
	}
	go func() {
		q.wg.Wait()
		close(q.stopped)
	}()
}

func (q *GameQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case task := <-q.shards[id]:
			q.run(id, task)
		case <-q.ctx.Done():
			// Release callers of tasks that will never run
			for {
				select {
				case task := <-q.shards[id]:
					close(task.done)
				default:
					return
				}
			}
		}
	}
}

// run executes a task; a panicking task must not take the shard down
func (q *GameQueue) run(shard int, task *gameTask) {
	defer close(task.done)
	task.ran = true
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("task panicked",
				zap.Int("shard", shard),
				zap.String("gameId", task.gameID),
				zap.Any("panic", r))
		}
	}()
	task.fn()
}

// shardFor maps a game id to its worker
func (q *GameQueue) shardFor(gameID string) int {
	return int(xxhash.Sum64String(gameID) % uint64(len(q.shards)))
}

// Do runs fn on the game's worker and blocks until it has finished. fn is
// never left running when Do returns.
func (q *GameQueue) Do(gameID string, fn func()) error {
	task := &gameTask{gameID: gameID, fn: fn, done: make(chan struct{})}

	select {
	case <-q.ctx.Done():
		return ErrQueueClosed
	default:
	}

	select {
	case q.shards[q.shardFor(gameID)] <- task:
	case <-q.ctx.Done():
		return ErrQueueClosed
	default:
		return ErrQueueFull
	}

	select {
	case <-task.done:
	case <-q.stopped:
		// A task enqueued after its worker drained will never run
		select {
		case <-task.done:
		default:
			return ErrQueueClosed
		}
	}
	if !task.ran {
		return ErrQueueClosed
	}
	return nil
}

// Shutdown stops the workers; queued tasks that have not started are dropped
func (q *GameQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	select {
	case <-q.stopped:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
