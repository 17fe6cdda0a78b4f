package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/model"
)

const (
	defaultKey          = "pythh:jobs"
	defaultBlockTimeout = 5 * time.Second
	deadSuffix          = ":dead"
)

// NewRedisClient 创建客户端并 Ping 确认可用
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("缺少 redis.addr 配置")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping 失败: %w", err)
	}
	return rdb, nil
}

// RedisQueue LPUSH 入队 / BRPOP 出队，死信写入 "<key>:dead"
type RedisQueue struct {
	rdb          *goredis.Client
	key          string
	deadKey      string
	blockTimeout time.Duration
}

func NewRedisQueue(rdb *goredis.Client, key string, blockTimeout time.Duration) *RedisQueue {
	if key == "" {
		key = defaultKey
	}
	if blockTimeout <= 0 {
		blockTimeout = defaultBlockTimeout
	}
	return &RedisQueue{rdb: rdb, key: key, deadKey: key + deadSuffix, blockTimeout: blockTimeout}
}

func (q *RedisQueue) Publish(ctx context.Context, job *model.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("序列化任务失败: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("任务入队失败: %w", err)
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context) (*model.Job, error) {
	res, err := q.rdb.BRPop(ctx, q.blockTimeout, q.key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP 返回 [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("BRPOP 返回格式异常: %v", res)
	}
	var job model.Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		// 原始内容转入死信，/api/admin/queue 可见
		if dlErr := q.rdb.LPush(ctx, q.deadKey, res[1]).Err(); dlErr != nil {
			return nil, fmt.Errorf("解析任务失败: %w，写入死信也失败: %v", err, dlErr)
		}
		return nil, fmt.Errorf("解析任务失败，已转入死信: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) DeadLetter(ctx context.Context, job *model.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.deadKey, raw).Err()
}

func (q *RedisQueue) Stats(ctx context.Context) (Stats, error) {
	pipe := q.rdb.Pipeline()
	pending := pipe.LLen(ctx, q.key)
	dead := pipe.LLen(ctx, q.deadKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("查询队列长度失败: %w", err)
	}
	return Stats{Backend: "redis", Pending: pending.Val(), Dead: dead.Val()}, nil
}

// Close 客户端由 main 持有，这里不关闭
func (q *RedisQueue) Close() error { return nil }
