// Package queue 异步工作项队列：Redis list 或进程内 channel，加上按任务类型分发的 worker 池
package queue

import (
	"context"
	"errors"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

var (
	// ErrQueueFull 内存队列已满，Publish 不阻塞直接返回
	ErrQueueFull = errors.New("任务队列已满")
	// ErrClosed 队列已关闭
	ErrClosed = errors.New("任务队列已关闭")
)

// Queue 任务队列
type Queue interface {
	// Publish 入队，不等待消费
	Publish(ctx context.Context, job *model.Job) error
	// Consume 阻塞取出一个任务；超时无任务时返回 (nil, nil)
	Consume(ctx context.Context) (*model.Job, error)
	// DeadLetter 超过最大尝试次数的任务
	DeadLetter(ctx context.Context, job *model.Job) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats 队列积压情况
type Stats struct {
	Backend string `json:"backend"`
	Pending int64  `json:"pending"`
	Dead    int64  `json:"dead"`
}
