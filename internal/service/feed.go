package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/viewmodel"
)

// LiveView 实时信号流响应
type LiveView struct {
	Rows   []viewmodel.LiveRow `json:"rows"`
	Issues []string            `json:"issues"`
}

// SignalsView 信号列表响应
type SignalsView struct {
	Rows   []viewmodel.SignalRow `json:"rows"`
	Issues []string              `json:"issues"`
}

// FeedService 实时流与信号列表
type FeedService struct {
	feed      repository.FeedRepository
	validator *viewmodel.Validator
	logger    *logrus.Logger
	now       func() time.Time
}

func NewFeedService(feed repository.FeedRepository, validator *viewmodel.Validator, logger *logrus.Logger) *FeedService {
	return &FeedService{feed: feed, validator: validator, logger: logger, now: time.Now}
}

func (s *FeedService) Live(ctx context.Context, filter repository.FeedFilter, limit int) (*LiveView, error) {
	raws, err := s.feed.ListRecent(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	rows := viewmodel.DeriveLive(raws, s.now().UnixMilli())
	view := &LiveView{Rows: rows, Issues: s.validator.Live(rows)}
	logIssues(s.logger, "live", filter.StartupID, view.Issues)
	return view, nil
}

func (s *FeedService) Signals(ctx context.Context, filter repository.FeedFilter, limit int) (*SignalsView, error) {
	raws, err := s.feed.ListRecent(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	rows := viewmodel.DeriveSignals(raws, s.now().UnixMilli())
	view := &SignalsView{Rows: rows, Issues: s.validator.Signals(rows)}
	logIssues(s.logger, "signals", filter.StartupID, view.Issues)
	return view, nil
}
