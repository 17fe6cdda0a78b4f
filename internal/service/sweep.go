package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/interfaces"
	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/repository"
)

// EnrichmentSweepService 定时为长期未富化的临时记录补投 enrich 任务（任务进了死信或发布失败的情况）
type EnrichmentSweepService struct {
	startups  repository.StartupRepository
	publisher interfaces.JobPublisher
	grace     time.Duration
	batch     int
	maxSweeps int
	logger    *logrus.Logger
	now       func() time.Time
}

func NewEnrichmentSweepService(startups repository.StartupRepository, publisher interfaces.JobPublisher, cfg config.QueueConfig, logger *logrus.Logger) *EnrichmentSweepService {
	grace := cfg.SweepGrace
	if grace <= 0 {
		grace = 15 * time.Minute
	}
	maxSweeps := cfg.SweepMax
	if maxSweeps <= 0 {
		maxSweeps = 3
	}
	return &EnrichmentSweepService{
		startups:  startups,
		publisher: publisher,
		grace:     grace,
		batch:     cfg.SweepBatch,
		maxSweeps: maxSweeps,
		logger:    logger,
		now:       time.Now,
	}
}

// Run 补投一批；单条发布失败不阻塞整次运行，返回成功补投的数量。
// 每条记录最多补投 maxSweeps 次，之后只能靠重新 resolve 触发富化。
func (s *EnrichmentSweepService) Run(ctx context.Context) (int, error) {
	list, err := s.startups.ListUnenriched(ctx, s.now().Add(-s.grace), s.maxSweeps, s.batch)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		s.logger.Debug("EnrichmentSweep: 无待补投记录")
		return 0, nil
	}

	published := 0
	for _, st := range list {
		job := model.NewJob(model.JobEnrich, st.ID)
		job.URL = st.Website
		if job.URL == "" {
			job.URL = "https://" + st.Domain
		}
		if err := s.publisher.Publish(ctx, job); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"startup_id": st.ID,
				"domain":     st.Domain,
			}).Warn("EnrichmentSweep: 补投失败，跳过")
			continue
		}
		published++
		if err := s.startups.MarkSwept(ctx, st.ID); err != nil {
			s.logger.WithError(err).WithField("startup_id", st.ID).Warn("EnrichmentSweep: 记录补投次数失败")
			continue
		}
		if st.EnrichSweeps+1 >= s.maxSweeps {
			s.logger.WithFields(logrus.Fields{
				"startup_id": st.ID,
				"domain":     st.Domain,
			}).Warn("EnrichmentSweep: 已达补投上限，后续不再补投")
		}
	}
	s.logger.Infof("EnrichmentSweep: 已补投 %d/%d 条", published, len(list))
	return published, nil
}

// Start 按 interval 周期执行 Run，直到 ctx 取消；interval ≤ 0 时直接返回
func (s *EnrichmentSweepService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.logger.WithError(err).Error("EnrichmentSweep 失败")
			}
		}
	}
}
