package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

// MatchRepository 匹配（只读）+ 解锁权益
type MatchRepository interface {
	// ListByStartup 按原始分降序取匹配，并批量装配投资方
	ListByStartup(ctx context.Context, startupID string, limit int) ([]model.MatchRow, error)
	// GetRow 单个初创公司×投资方匹配
	GetRow(ctx context.Context, startupID, investorID string) (*model.MatchRow, error)
	// RankedTable 排名表：匹配行 + 是否已授权解锁 + 当日剩余解锁次数
	RankedTable(ctx context.Context, startupID string, limit, dailyAllowance int, now time.Time) ([]model.RankedTableRow, error)
	// IsUnlocked 是否已通过权益解锁
	IsUnlocked(ctx context.Context, startupID, investorID string) (bool, error)
	// Unlock 消耗一次当日额度解锁；已解锁时幂等返回。返回剩余次数。
	Unlock(ctx context.Context, startupID, investorID string, dailyAllowance int, now time.Time) (int, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) ListByStartup(ctx context.Context, startupID string, limit int) ([]model.MatchRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var matches []model.Match
	if err := r.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("match_score DESC").Order("investor_id ASC").
		Limit(limit).
		Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("查询匹配失败: %w", err)
	}
	if len(matches) == 0 {
		return []model.MatchRow{}, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.InvestorID)
	}
	investors, err := r.investorsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]model.MatchRow, 0, len(matches))
	for _, m := range matches {
		inv, ok := investors[m.InvestorID]
		if !ok {
			inv = model.Investor{ID: m.InvestorID}
		}
		rows = append(rows, model.MatchRow{Match: m, Investor: inv})
	}
	return rows, nil
}

func (r *matchRepository) investorsByIDs(ctx context.Context, ids []string) (map[string]model.Investor, error) {
	var list []model.Investor
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询投资方失败: %w", err)
	}
	out := make(map[string]model.Investor, len(list))
	for _, inv := range list {
		out[inv.ID] = inv
	}
	return out, nil
}

func (r *matchRepository) GetRow(ctx context.Context, startupID, investorID string) (*model.MatchRow, error) {
	var m model.Match
	if err := r.db.WithContext(ctx).Where("startup_id = ? AND investor_id = ?", startupID, investorID).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	row := &model.MatchRow{Match: m, Investor: model.Investor{ID: investorID}}
	var inv model.Investor
	err := r.db.WithContext(ctx).Where("id = ?", investorID).First(&inv).Error
	switch {
	case err == nil:
		row.Investor = inv
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("查询投资方失败: %w", err)
	}
	return row, nil
}

func (r *matchRepository) RankedTable(ctx context.Context, startupID string, limit, dailyAllowance int, now time.Time) ([]model.RankedTableRow, error) {
	rows, err := r.ListByStartup(ctx, startupID, limit)
	if err != nil {
		return nil, err
	}

	var unlocks []model.MatchUnlock
	if err := r.db.WithContext(ctx).Where("startup_id = ?", startupID).Find(&unlocks).Error; err != nil {
		return nil, fmt.Errorf("查询解锁记录失败: %w", err)
	}
	unlocked := make(map[string]struct{}, len(unlocks))
	usedToday := 0
	dayStart := startOfDay(now)
	for _, u := range unlocks {
		unlocked[u.InvestorID] = struct{}{}
		if !u.UnlockedAt.Before(dayStart) {
			usedToday++
		}
	}
	remaining := dailyAllowance - usedToday
	if remaining < 0 {
		remaining = 0
	}

	out := make([]model.RankedTableRow, 0, len(rows))
	for _, row := range rows {
		_, ok := unlocked[row.Match.InvestorID]
		out = append(out, model.RankedTableRow{MatchRow: row, IsLocked: !ok, RemainingUnlocks: remaining})
	}
	return out, nil
}

func (r *matchRepository) IsUnlocked(ctx context.Context, startupID, investorID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.MatchUnlock{}).
		Where("startup_id = ? AND investor_id = ?", startupID, investorID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *matchRepository) Unlock(ctx context.Context, startupID, investorID string, dailyAllowance int, now time.Time) (int, error) {
	remaining := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住初创公司行，串行化同一初创公司的并发解锁
		var s model.Startup
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", startupID).First(&s).Error; err != nil {
			return mapNotFound(err)
		}
		var match model.Match
		if err := tx.Select("id").Where("startup_id = ? AND investor_id = ?", startupID, investorID).First(&match).Error; err != nil {
			return mapNotFound(err)
		}

		var used int64
		if err := tx.Model(&model.MatchUnlock{}).
			Where("startup_id = ? AND unlocked_at >= ?", startupID, startOfDay(now)).
			Count(&used).Error; err != nil {
			return err
		}
		var already int64
		if err := tx.Model(&model.MatchUnlock{}).
			Where("startup_id = ? AND investor_id = ?", startupID, investorID).
			Count(&already).Error; err != nil {
			return err
		}
		if already > 0 {
			remaining = max(dailyAllowance-int(used), 0)
			return nil
		}
		if int(used) >= dailyAllowance {
			return ErrNoUnlocksLeft
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.MatchUnlock{
			StartupID:  startupID,
			InvestorID: investorID,
			UnlockedAt: now,
		}).Error; err != nil {
			return fmt.Errorf("写入解锁记录失败: %w", err)
		}
		remaining = dailyAllowance - int(used) - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// startOfDay 额度按 UTC 自然日重置
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
