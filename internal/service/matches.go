package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/ranking"
	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/viewmodel"
)

// RadarView 雷达表响应
type RadarView struct {
	StartupID        string               `json:"startup_id"`
	GodScore         float64              `json:"god_score"`
	RemainingUnlocks int                  `json:"remaining_unlocks"`
	Rows             []viewmodel.RadarRow `json:"rows"`
	Issues           []string             `json:"issues"`
}

// TopMatchesView 多样化前 N 个匹配
type TopMatchesView struct {
	StartupID string                `json:"startup_id"`
	GodScore  float64               `json:"god_score"`
	Matches   []viewmodel.WhyDetail `json:"matches"`
	Issues    []string              `json:"issues"`
}

// WhyView 单个匹配详情
type WhyView struct {
	Detail viewmodel.WhyDetail `json:"detail"`
	Issues []string            `json:"issues"`
}

// UnlockResult 解锁结果
type UnlockResult struct {
	StartupID        string `json:"startup_id"`
	InvestorID       string `json:"investor_id"`
	RemainingUnlocks int    `json:"remaining_unlocks"`
}

// MatchService 匹配相关页面：雷达表、top matches、匹配详情、解锁
type MatchService struct {
	startups  repository.StartupRepository
	matches   repository.MatchRepository
	validator *viewmodel.Validator
	cfg       config.RadarConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewMatchService(startups repository.StartupRepository, matches repository.MatchRepository, validator *viewmodel.Validator, cfg config.RadarConfig, logger *logrus.Logger) *MatchService {
	if cfg.AutoUnlockCount <= 0 {
		cfg.AutoUnlockCount = ranking.TopN
	}
	if cfg.TableLimit <= 0 {
		cfg.TableLimit = 50
	}
	return &MatchService{
		startups:  startups,
		matches:   matches,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// loadWith 并发读取初创公司与匹配数据
func (s *MatchService) loadWith(ctx context.Context, startupID string, load func(ctx context.Context) error) (*model.Startup, error) {
	var startup *model.Startup
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		startup, err = s.startups.GetByID(gctx, startupID)
		return err
	})
	g.Go(func() error { return load(gctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return startup, nil
}

func (s *MatchService) Radar(ctx context.Context, startupID string) (*RadarView, error) {
	var raws []model.RankedTableRow
	startup, err := s.loadWith(ctx, startupID, func(ctx context.Context) error {
		var err error
		raws, err = s.matches.RankedTable(ctx, startupID, s.cfg.TableLimit, s.cfg.DailyUnlocks, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	rows := viewmodel.DeriveRadar(raws, startup, s.cfg.AutoUnlockCount)
	view := &RadarView{
		StartupID:        startup.ID,
		GodScore:         viewmodel.Round1(startup.GodTotal),
		RemainingUnlocks: s.cfg.DailyUnlocks,
		Rows:             rows,
		Issues:           s.validator.Radar(rows),
	}
	if len(raws) > 0 {
		view.RemainingUnlocks = raws[0].RemainingUnlocks
	}
	logIssues(s.logger, "radar", startup.ID, view.Issues)
	return view, nil
}

func (s *MatchService) TopMatches(ctx context.Context, startupID string) (*TopMatchesView, error) {
	var rows []model.MatchRow
	startup, err := s.loadWith(ctx, startupID, func(ctx context.Context) error {
		var err error
		rows, err = s.matches.ListByStartup(ctx, startupID, s.cfg.TableLimit)
		return err
	})
	if err != nil {
		return nil, err
	}

	top := ranking.SelectTop(candidates(rows), ranking.ContextFromStartup(startup))
	byInvestor := make(map[string]model.MatchRow, len(rows))
	for _, r := range rows {
		byInvestor[r.Match.InvestorID] = r
	}
	details := make([]viewmodel.WhyDetail, 0, len(top))
	for _, r := range top {
		details = append(details, viewmodel.DeriveWhy(byInvestor[r.InvestorID], startup, top, false))
	}
	view := &TopMatchesView{
		StartupID: startup.ID,
		GodScore:  viewmodel.Round1(startup.GodTotal),
		Matches:   details,
		Issues:    s.validator.Details(details),
	}
	logIssues(s.logger, "top_matches", startup.ID, view.Issues)
	return view, nil
}

// Why 单个投资方的匹配详情。锁定规则与雷达表一致：排名在自动解锁范围外且未授权即为锁定。
func (s *MatchService) Why(ctx context.Context, startupID, investorID string) (*WhyView, error) {
	var (
		rows     []model.MatchRow
		unlocked bool
	)
	startup, err := s.loadWith(ctx, startupID, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			rows, err = s.matches.ListByStartup(gctx, startupID, s.cfg.TableLimit)
			return err
		})
		g.Go(func() error {
			var err error
			unlocked, err = s.matches.IsUnlocked(gctx, startupID, investorID)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	index := -1
	for i, r := range rows {
		if r.Match.InvestorID == investorID {
			index = i
			break
		}
	}
	var row model.MatchRow
	if index >= 0 {
		row = rows[index]
	} else {
		got, err := s.matches.GetRow(ctx, startupID, investorID)
		if err != nil {
			return nil, err
		}
		row = *got
	}
	locked := !unlocked && (index < 0 || index >= s.cfg.AutoUnlockCount)

	top := ranking.SelectTop(candidates(rows), ranking.ContextFromStartup(startup))
	detail := viewmodel.DeriveWhy(row, startup, top, locked)
	view := &WhyView{Detail: detail, Issues: s.validator.Details([]viewmodel.WhyDetail{detail})}
	logIssues(s.logger, "why", startup.ID, view.Issues)
	return view, nil
}

func (s *MatchService) Unlock(ctx context.Context, startupID, investorID string) (*UnlockResult, error) {
	remaining, err := s.matches.Unlock(ctx, startupID, investorID, s.cfg.DailyUnlocks, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"startup_id":  startupID,
		"investor_id": investorID,
		"remaining":   remaining,
	}).Info("匹配已解锁")
	return &UnlockResult{StartupID: startupID, InvestorID: investorID, RemainingUnlocks: remaining}, nil
}

func candidates(rows []model.MatchRow) []ranking.Candidate {
	out := make([]ranking.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, ranking.CandidateFromRow(r))
	}
	return out
}

// logIssues 校验问题只记日志，不影响响应
func logIssues(logger *logrus.Logger, surface, startupID string, issues []string) {
	if len(issues) == 0 {
		return
	}
	logger.WithFields(logrus.Fields{
		"surface":    surface,
		"startup_id": startupID,
		"issues":     issues,
	}).Warn("视图模型校验发现问题")
}
