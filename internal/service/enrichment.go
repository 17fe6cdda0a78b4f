package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/interfaces"
	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/queue"
	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/utils/money"
)

// PriorityHigh 新建初创公司后触发匹配生成使用的优先级
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// SignalLabels 富化推断 → 可读信号标签；字段缺省即不输出
func SignalLabels(inf *model.Inference) []string {
	if inf == nil {
		return nil
	}
	labels := make([]string, 0, 6)
	flag := func(p *bool, label string) {
		if p != nil && *p {
			labels = append(labels, label)
		}
	}
	flag(inf.HasRevenue, "Has Revenue")
	flag(inf.HasCustomers, "Has Customers")
	flag(inf.IsLaunched, "Launched")
	flag(inf.HasDemo, "Has Demo")
	if inf.FundingAmount != nil && *inf.FundingAmount > 0 {
		labels = append(labels, "Raised "+money.FormatUSD(*inf.FundingAmount))
	}
	if len(inf.TeamSignals) > 0 {
		labels = append(labels, "Strong Team")
	}
	return labels
}

// BuildEnrichmentUpdate 富化结果 → 仓储回写内容
func BuildEnrichmentUpdate(res *model.EnrichResult, now time.Time) repository.EnrichmentUpdate {
	upd := repository.EnrichmentUpdate{EnrichedAt: now}
	if res == nil {
		return upd
	}
	upd.GodScore = res.GodScore
	if inf := res.Inference; inf != nil {
		upd.Sectors = inf.Sectors
		upd.Stage = model.StageOf(inf.Stage)
		upd.Signals = SignalLabels(inf)
	}
	return upd
}

// applyUpdate 同步模式下在落库前把富化结果写进待插入的记录
func applyUpdate(s *model.Startup, upd repository.EnrichmentUpdate) {
	if upd.GodScore != nil {
		s.SetGodScore(*upd.GodScore)
	}
	if len(upd.Sectors) > 0 {
		s.Sectors = model.EncodeStrings(upd.Sectors)
	}
	if upd.Stage != nil {
		stage := *upd.Stage
		s.Stage = &stage
	}
	if upd.Signals != nil {
		s.Signals = model.EncodeStrings(upd.Signals)
	}
	at := upd.EnrichedAt
	s.EnrichedAt = &at
}

// EnrichmentService 后台任务处理：调用富化服务并回写，转发匹配生成请求
type EnrichmentService struct {
	startups repository.StartupRepository
	enricher interfaces.EnrichmentClient
	matcher  interfaces.MatchTrigger
	logger   *logrus.Logger
	now      func() time.Time
}

func NewEnrichmentService(startups repository.StartupRepository, enricher interfaces.EnrichmentClient, matcher interfaces.MatchTrigger, logger *logrus.Logger) *EnrichmentService {
	return &EnrichmentService{
		startups: startups,
		enricher: enricher,
		matcher:  matcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Register 向分发器注册两类任务
func (s *EnrichmentService) Register(d *queue.Dispatcher) {
	d.Register(model.JobEnrich, s.HandleEnrich)
	d.Register(model.JobGenerateMatches, s.HandleGenerateMatches)
}

// HandleEnrich 返回错误时由分发器重试
func (s *EnrichmentService) HandleEnrich(ctx context.Context, job *model.Job) error {
	res, err := s.enricher.Enrich(ctx, &model.EnrichRequest{URL: job.URL, StartupID: job.StartupID})
	if err != nil {
		return fmt.Errorf("富化请求失败: %w", err)
	}
	upd := BuildEnrichmentUpdate(res, s.now())
	if err := s.startups.ApplyEnrichment(ctx, job.StartupID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WithField("startup_id", job.StartupID).Warn("富化完成但初创公司已不存在，丢弃结果")
			return nil
		}
		return err
	}
	fields := logrus.Fields{"startup_id": job.StartupID, "signals": upd.Signals}
	if upd.GodScore != nil {
		fields["god_total"] = upd.GodScore.Total
	}
	s.logger.WithFields(fields).Info("富化结果已回写")
	return nil
}

func (s *EnrichmentService) HandleGenerateMatches(ctx context.Context, job *model.Job) error {
	priority := job.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if err := s.matcher.TriggerMatches(ctx, &model.MatchGenRequest{StartupID: job.StartupID, Priority: priority}); err != nil {
		return fmt.Errorf("触发匹配生成失败: %w", err)
	}
	return nil
}
