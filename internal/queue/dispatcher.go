package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/model"
)

const (
	defaultMaxAttempts = 3
	consumeErrBackoff  = time.Second
)

// Handler 处理单个任务
type Handler func(ctx context.Context, job *model.Job) error

// New 按配置选择队列实现：backend=redis 且 rdb 可用时用 Redis，否则退回内存队列
func New(cfg config.QueueConfig, rdb *goredis.Client, logger *logrus.Logger) Queue {
	if cfg.Backend == "redis" && rdb != nil {
		return NewRedisQueue(rdb, cfg.Key, cfg.BlockTimeout)
	}
	if cfg.Backend == "redis" {
		logger.Warn("队列配置为 redis 但 Redis 不可用，退回内存队列")
	}
	return NewMemoryQueue(cfg.Buffer)
}

// Dispatcher 按任务类型分发给已注册的 Handler，失败重新入队，超过最大次数进入死信
type Dispatcher struct {
	queue       Queue
	logger      *logrus.Logger
	workers     int
	maxAttempts int

	mu       sync.RWMutex
	handlers map[model.JobKind]Handler
}

func NewDispatcher(q Queue, cfg config.QueueConfig, logger *logrus.Logger) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Dispatcher{
		queue:       q,
		logger:      logger,
		workers:     workers,
		maxAttempts: maxAttempts,
		handlers:    make(map[model.JobKind]Handler),
	}
}

// Register 注册任务处理函数，重复注册覆盖
func (d *Dispatcher) Register(kind model.JobKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

func (d *Dispatcher) handler(kind model.JobKind) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[kind]
	return h, ok
}

// Publish 实现 interfaces.JobPublisher
func (d *Dispatcher) Publish(ctx context.Context, job *model.Job) error {
	return d.queue.Publish(ctx, job)
}

// Stats 透传队列统计
func (d *Dispatcher) Stats(ctx context.Context) (Stats, error) {
	return d.queue.Stats(ctx)
}

// Run 启动 worker 协程并阻塞到 ctx 结束
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			d.loop(ctx, idx)
		}(i)
	}
	d.logger.WithField("workers", d.workers).Info("任务分发器已启动")
	wg.Wait()
	d.logger.Info("任务分发器已停止")
}

func (d *Dispatcher) loop(ctx context.Context, idx int) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := d.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return
			}
			d.logger.WithError(err).WithField("worker", idx).Warn("取任务失败")
			select {
			case <-ctx.Done():
				return
			case <-time.After(consumeErrBackoff):
			}
			continue
		}
		if job == nil {
			continue
		}
		d.handle(ctx, idx, job)
	}
}

func (d *Dispatcher) handle(ctx context.Context, idx int, job *model.Job) {
	job.Attempts++
	err := d.ProcessInline(ctx, job)
	if err == nil {
		return
	}
	job.LastError = err.Error()
	log := d.logger.WithError(err).WithFields(logrus.Fields{
		"worker":     idx,
		"job_id":     job.ID,
		"kind":       job.Kind,
		"startup_id": job.StartupID,
		"attempts":   job.Attempts,
	})
	if job.Attempts >= d.maxAttempts {
		log.Warn("任务超过最大尝试次数，进入死信")
		if dlErr := d.queue.DeadLetter(ctx, job); dlErr != nil {
			d.logger.WithError(dlErr).WithField("job_id", job.ID).Error("写入死信失败")
		}
		return
	}
	log.Warn("任务失败，重新入队")
	if pubErr := d.queue.Publish(ctx, job); pubErr != nil {
		d.logger.WithError(pubErr).WithField("job_id", job.ID).Error("任务重新入队失败")
	}
}

// ProcessInline 在当前协程同步执行任务，与后台 worker 使用同一组 Handler
func (d *Dispatcher) ProcessInline(ctx context.Context, job *model.Job) error {
	h, ok := d.handler(job.Kind)
	if !ok {
		return fmt.Errorf("未注册的任务类型: %s", job.Kind)
	}
	return h(ctx, job)
}
