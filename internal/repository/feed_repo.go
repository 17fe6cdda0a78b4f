package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

// FeedFilter 信号流筛选
type FeedFilter struct {
	StartupID string
	Kind      string
	Since     *time.Time
}

// FeedRepository 信号事件仓储（实时流与信号列表共用）
type FeedRepository interface {
	// ListRecent 按时间倒序取事件，并装配所属初创公司与投资方名称；孤立事件丢弃
	ListRecent(ctx context.Context, filter FeedFilter, limit int) ([]model.FeedRow, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) ListRecent(ctx context.Context, filter FeedFilter, limit int) ([]model.FeedRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	db := r.db.WithContext(ctx).Model(&model.SignalEvent{})
	if filter.StartupID != "" {
		db = db.Where("startup_id = ?", filter.StartupID)
	}
	if filter.Kind != "" {
		db = db.Where("kind = ?", filter.Kind)
	}
	if filter.Since != nil {
		db = db.Where("created_at >= ?", *filter.Since)
	}
	var events []model.SignalEvent
	if err := db.Order("created_at DESC").Order("id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("查询信号事件失败: %w", err)
	}
	if len(events) == 0 {
		return []model.FeedRow{}, nil
	}

	startupIDs := make([]string, 0, len(events))
	var investorIDs []string
	for _, ev := range events {
		startupIDs = append(startupIDs, ev.StartupID)
		if ev.InvestorID != nil {
			investorIDs = append(investorIDs, *ev.InvestorID)
		}
	}

	var startups []model.Startup
	if err := r.db.WithContext(ctx).Where("id IN ?", startupIDs).Find(&startups).Error; err != nil {
		return nil, fmt.Errorf("查询初创公司失败: %w", err)
	}
	byID := make(map[string]model.Startup, len(startups))
	for _, s := range startups {
		byID[s.ID] = s
	}

	names := make(map[string]string)
	if len(investorIDs) > 0 {
		var investors []model.Investor
		if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", investorIDs).Find(&investors).Error; err != nil {
			return nil, fmt.Errorf("查询投资方失败: %w", err)
		}
		for _, inv := range investors {
			names[inv.ID] = inv.Name
		}
	}

	rows := make([]model.FeedRow, 0, len(events))
	for _, ev := range events {
		s, ok := byID[ev.StartupID]
		if !ok {
			continue
		}
		row := model.FeedRow{Event: ev, Startup: s}
		if ev.InvestorID != nil {
			row.InvestorName = names[*ev.InvestorID]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
