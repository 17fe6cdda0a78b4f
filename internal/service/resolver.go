package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/interfaces"
	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/urlnorm"
)

// ErrUnresolvable 输入无法解析为初创公司（无法规范化，或社交链接缺少 slug）
var ErrUnresolvable = errors.New("无法解析为初创公司")

// Confidence 命中的解析阶梯
type Confidence string

const (
	ConfidenceLinkedIn       Confidence = "linkedin_match"
	ConfidenceCrunchbase     Confidence = "crunchbase_match"
	ConfidenceExactDomain    Confidence = "exact_domain"
	ConfidenceContainsDomain Confidence = "contains_domain"
	ConfidenceCreated        Confidence = "created_provisional"
)

// ResolveOptions 解析选项
type ResolveOptions struct {
	// WaitForEnrichment 新建时先同步调用富化服务再落库
	WaitForEnrichment bool
}

// Resolution 解析结果
type Resolution struct {
	Startup    *model.Startup
	Confidence Confidence
}

// ResolverService URL → 初创公司身份
type ResolverService struct {
	startups  repository.StartupRepository
	enricher  interfaces.EnrichmentClient
	publisher interfaces.JobPublisher
	cfg       config.ResolverConfig
	cache     *expirable.LRU[string, string] // domain → startup id
	logger    *logrus.Logger
	now       func() time.Time
}

func NewResolverService(startups repository.StartupRepository, enricher interfaces.EnrichmentClient, publisher interfaces.JobPublisher, cfg config.ResolverConfig, logger *logrus.Logger) *ResolverService {
	s := &ResolverService{
		startups:  startups,
		enricher:  enricher,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	if s.cfg.FallbackGodScore <= 0 {
		s.cfg.FallbackGodScore = 45
	}
	if s.cfg.DefaultSector == "" {
		s.cfg.DefaultSector = "Technology"
	}
	if cfg.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return s
}

// Resolve 按阶梯依次查找，先命中者胜：
// linkedin slug → crunchbase slug → 规范化域名 → 旧 website 子串 → 新建临时记录。
// 落库失败返回错误且不重试；富化和匹配生成失败只记日志。
func (s *ResolverService) Resolve(ctx context.Context, input string, opts ResolveOptions) (*Resolution, error) {
	n, err := urlnorm.Normalize(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	log := s.logger.WithFields(logrus.Fields{"input": input, "host": n.Host, "kind": n.Kind})

	if hit, conf := s.lookup(ctx, n, log); hit != nil {
		log.WithFields(logrus.Fields{"startup_id": hit.ID, "confidence": conf}).Debug("命中已有初创公司")
		return &Resolution{Startup: hit, Confidence: conf}, nil
	}

	if n.IsSocial() && n.Slug == "" {
		return nil, ErrUnresolvable
	}
	return s.createProvisional(ctx, n, opts, log)
}

// lookup 前四级阶梯。单步查询出错时记日志并继续下一步，最终由落库决定成败。
func (s *ResolverService) lookup(ctx context.Context, n *urlnorm.Normalized, log *logrus.Entry) (*model.Startup, Confidence) {
	type step struct {
		conf    Confidence
		enabled bool
		find    func() (*model.Startup, error)
	}
	domain := n.ProvisionalDomain()
	steps := []step{
		{ConfidenceLinkedIn, n.Kind == urlnorm.KindLinkedIn && n.Slug != "", func() (*model.Startup, error) {
			return s.startups.FindByLinkedInSlug(ctx, n.Slug)
		}},
		{ConfidenceCrunchbase, n.Kind == urlnorm.KindCrunchbase && n.Slug != "", func() (*model.Startup, error) {
			return s.startups.FindByCrunchbaseSlug(ctx, n.Slug)
		}},
		{ConfidenceExactDomain, !n.IsSocial() || n.Slug != "", func() (*model.Startup, error) {
			if hit := s.fromCache(ctx, domain); hit != nil {
				return hit, nil
			}
			return s.startups.FindByDomain(ctx, domain)
		}},
		{ConfidenceContainsDomain, !n.IsSocial() && s.cfg.LegacyWebsiteMatch, func() (*model.Startup, error) {
			return s.startups.FindByLegacyWebsite(ctx, n.Host)
		}},
	}

	for _, st := range steps {
		if !st.enabled {
			continue
		}
		hit, err := st.find()
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.WithError(err).WithField("step", st.conf).Warn("解析阶梯查询失败，继续下一步")
			}
			continue
		}
		if st.conf == ConfidenceExactDomain {
			s.remember(hit)
		}
		return hit, st.conf
	}
	return nil, ""
}

// fromCache 缓存只存 id，命中后仍按主键回表确认
func (s *ResolverService) fromCache(ctx context.Context, domain string) *model.Startup {
	if s.cache == nil {
		return nil
	}
	id, ok := s.cache.Get(domain)
	if !ok {
		return nil
	}
	hit, err := s.startups.GetByID(ctx, id)
	if err != nil || hit.Domain != domain || hit.Status == model.StartupRejected {
		s.cache.Remove(domain)
		return nil
	}
	return hit
}

func (s *ResolverService) remember(st *model.Startup) {
	if s.cache != nil && st != nil {
		s.cache.Add(st.Domain, st.ID)
	}
}

func (s *ResolverService) createProvisional(ctx context.Context, n *urlnorm.Normalized, opts ResolveOptions, log *logrus.Entry) (*Resolution, error) {
	st := &model.Startup{
		ID:       uuid.NewString(),
		Domain:   n.ProvisionalDomain(),
		Name:     n.DisplayName(),
		Website:  n.Target,
		Sectors:  model.EncodeStrings([]string{s.cfg.DefaultSector}),
		GodTotal: s.cfg.FallbackGodScore,
		Status:   model.StartupApproved,
	}
	switch n.Kind {
	case urlnorm.KindLinkedIn:
		st.LinkedInSlug = &n.Slug
	case urlnorm.KindCrunchbase:
		st.CrunchbaseSlug = &n.Slug
	}

	if opts.WaitForEnrichment {
		res, err := s.enricher.Enrich(ctx, &model.EnrichRequest{URL: n.Target})
		if err != nil {
			log.WithError(err).Warn("同步富化失败，使用兜底分落库")
		} else {
			applyUpdate(st, BuildEnrichmentUpdate(res, s.now()))
		}
	}

	stored, created, err := s.startups.InsertIfAbsent(ctx, st)
	if err != nil {
		return nil, err
	}
	if !created {
		if stored.Status == model.StartupRejected {
			return nil, ErrUnresolvable
		}
		s.remember(stored)
		// 并发解析同一新域名，另一请求已落库
		log.WithField("startup_id", stored.ID).Info("临时记录已被并发创建，复用已有记录")
		return &Resolution{Startup: stored, Confidence: ConfidenceExactDomain}, nil
	}

	s.remember(stored)

	if !opts.WaitForEnrichment {
		job := model.NewJob(model.JobEnrich, stored.ID)
		job.URL = n.Target
		s.publish(ctx, job, log)
	}
	gen := model.NewJob(model.JobGenerateMatches, stored.ID)
	gen.Priority = PriorityHigh
	s.publish(ctx, gen, log)

	log.WithFields(logrus.Fields{
		"startup_id": stored.ID,
		"domain":     stored.Domain,
		"god_total":  stored.GodTotal,
		"sync":       opts.WaitForEnrichment,
	}).Info("已创建临时初创公司")
	return &Resolution{Startup: stored, Confidence: ConfidenceCreated}, nil
}

// publish 投递失败不影响解析结果
func (s *ResolverService) publish(ctx context.Context, job *model.Job, log *logrus.Entry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		log.WithError(err).WithFields(logrus.Fields{"job_id": job.ID, "kind": job.Kind}).Warn("异步任务投递失败")
	}
}
