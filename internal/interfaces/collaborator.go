package interfaces

import (
	"context"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

// EnrichmentClient 富化/打分服务（外部黑盒），同步模式下阻塞等待结果
type EnrichmentClient interface {
	Enrich(ctx context.Context, req *model.EnrichRequest) (*model.EnrichResult, error)
}

// MatchTrigger 匹配生成服务，只触发不消费响应
type MatchTrigger interface {
	TriggerMatches(ctx context.Context, req *model.MatchGenRequest) error
}

// JobPublisher 异步工作项投递
type JobPublisher interface {
	Publish(ctx context.Context, job *model.Job) error
}
