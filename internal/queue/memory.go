package queue

import (
	"context"
	"sync"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

const maxMemoryDead = 256

// MemoryQueue 进程内有界队列，未配置 Redis 时使用；重启即丢失
type MemoryQueue struct {
	ch     chan *model.Job
	mu     sync.Mutex
	dead   []*model.Job
	closed bool
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer < 1 {
		buffer = 1
	}
	return &MemoryQueue{ch: make(chan *model.Job, buffer)}
}

// Publish 满了直接返回 ErrQueueFull，不阻塞请求路径
func (q *MemoryQueue) Publish(_ context.Context, job *model.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Consume(ctx context.Context) (*model.Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job, ok := <-q.ch:
		if !ok {
			return nil, ErrClosed
		}
		return job, nil
	}
}

func (q *MemoryQueue) DeadLetter(_ context.Context, job *model.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, job)
	if len(q.dead) > maxMemoryDead {
		q.dead = q.dead[len(q.dead)-maxMemoryDead:]
	}
	return nil
}

func (q *MemoryQueue) Stats(context.Context) (Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{Backend: "memory", Pending: int64(len(q.ch)), Dead: int64(len(q.dead))}, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}
