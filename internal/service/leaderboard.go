package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/repository"
	"github.com/ugobe007/pythh-sub016/internal/viewmodel"
)

// LeaderboardView 排行榜分页响应
type LeaderboardView struct {
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Rows     []viewmodel.LeaderboardRow `json:"rows"`
	Issues   []string                   `json:"issues"`
}

// LeaderboardService 初创公司排行榜
type LeaderboardService struct {
	startups  repository.StartupRepository
	validator *viewmodel.Validator
	logger    *logrus.Logger
}

func NewLeaderboardService(startups repository.StartupRepository, validator *viewmodel.Validator, logger *logrus.Logger) *LeaderboardService {
	return &LeaderboardService{startups: startups, validator: validator, logger: logger}
}

func (s *LeaderboardService) List(ctx context.Context, filter repository.LeaderboardFilter, page, pageSize int) (*LeaderboardView, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	list, total, err := s.startups.ListLeaderboard(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	offset := (page - 1) * pageSize
	rows := make([]viewmodel.LeaderboardRow, 0, len(list))
	for i := range list {
		rows = append(rows, viewmodel.DeriveLeaderboardRow(&list[i], offset+i))
	}
	view := &LeaderboardView{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Rows:     rows,
		Issues:   s.validator.Leaderboard(rows),
	}
	logIssues(s.logger, "leaderboard", "", view.Issues)
	return view, nil
}
