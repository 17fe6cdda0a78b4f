package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/urlnorm"
)

// StartupRepository 初创公司身份仓储。查找方法未命中时返回 ErrNotFound，且都忽略 rejected 记录。
type StartupRepository interface {
	// FindByLinkedInSlug 先精确再部分匹配 linkedin_slug
	FindByLinkedInSlug(ctx context.Context, slug string) (*model.Startup, error)
	// FindByCrunchbaseSlug 先精确再部分匹配 crunchbase_slug
	FindByCrunchbaseSlug(ctx context.Context, slug string) (*model.Startup, error)
	// FindByDomain 走 domain 唯一索引
	FindByDomain(ctx context.Context, domain string) (*model.Startup, error)
	// FindByLegacyWebsite 旧数据兼容：website 历史写法精确匹配，再退化为 ILIKE 子串匹配
	FindByLegacyWebsite(ctx context.Context, domain string) (*model.Startup, error)
	// InsertIfAbsent 原子插入；domain 已存在时不写入并返回已有记录，created=false
	InsertIfAbsent(ctx context.Context, s *model.Startup) (stored *model.Startup, created bool, err error)
	GetByID(ctx context.Context, id string) (*model.Startup, error)
	// ApplyEnrichment 富化结果回写（覆盖 GOD 分项、行业、信号标签）
	ApplyEnrichment(ctx context.Context, id string, upd EnrichmentUpdate) error
	// ListLeaderboard 按 GOD 总分降序分页
	ListLeaderboard(ctx context.Context, filter LeaderboardFilter, page, pageSize int) ([]model.Startup, int64, error)
	// ListUnenriched 创建早于 createdBefore、从未富化成功且补投次数小于 maxSweeps 的记录，按创建时间升序
	ListUnenriched(ctx context.Context, createdBefore time.Time, maxSweeps, limit int) ([]model.Startup, error)
	// MarkSwept 补投次数 +1
	MarkSwept(ctx context.Context, id string) error
}

// EnrichmentUpdate 富化回写内容，nil / 空值字段不覆盖
type EnrichmentUpdate struct {
	GodScore   *model.GodScore
	Sectors    []string
	Stage      *int
	Signals    []string
	EnrichedAt time.Time
}

// LeaderboardFilter 排行榜筛选
type LeaderboardFilter struct {
	Sector string // 行业（jsonb 数组包含）
	Stage  *int   // 融资阶段序号
}

type startupRepository struct {
	db *gorm.DB
}

func NewStartupRepository(db *gorm.DB) StartupRepository {
	return &startupRepository{db: db}
}

func (r *startupRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Startup{}).Where("status <> ?", model.StartupRejected)
}

func (r *startupRepository) FindByLinkedInSlug(ctx context.Context, slug string) (*model.Startup, error) {
	return r.findBySlug(ctx, "linkedin_slug", slug)
}

func (r *startupRepository) FindByCrunchbaseSlug(ctx context.Context, slug string) (*model.Startup, error) {
	return r.findBySlug(ctx, "crunchbase_slug", slug)
}

// findBySlug column 只接受内部常量
func (r *startupRepository) findBySlug(ctx context.Context, column, slug string) (*model.Startup, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrNotFound
	}
	var s model.Startup
	err := r.active(ctx).Where(fmt.Sprintf("LOWER(%s) = ?", column), slug).Order("created_at ASC").First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// 部分匹配取最短的 slug，越短越接近精确
	err = r.active(ctx).
		Where(fmt.Sprintf("%s ILIKE ?", column), "%"+escapeLike(slug)+"%").
		Order(fmt.Sprintf("LENGTH(%s) ASC", column)).Order("created_at ASC").
		First(&s).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (r *startupRepository) FindByDomain(ctx context.Context, domain string) (*model.Startup, error) {
	var s model.Startup
	if err := r.active(ctx).Where("domain = ?", domain).First(&s).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

// FindByLegacyWebsite 回填完成后由配置关闭（resolver.legacy_website_match）
func (r *startupRepository) FindByLegacyWebsite(ctx context.Context, domain string) (*model.Startup, error) {
	if domain == "" {
		return nil, ErrNotFound
	}
	var s model.Startup
	err := r.active(ctx).Where("website IN ?", urlnorm.LegacyWebsites(domain)).Order("created_at ASC").First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	err = r.active(ctx).Where("website ILIKE ?", "%"+escapeLike(domain)+"%").Order("created_at ASC").First(&s).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (r *startupRepository) InsertIfAbsent(ctx context.Context, s *model.Startup) (*model.Startup, bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoNothing: true,
	}).Create(s)
	if res.Error != nil {
		return nil, false, fmt.Errorf("写入初创公司失败: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return s, true, nil
	}
	// 并发解析同一新域名，另一方已写入
	var existing model.Startup
	if err := r.db.WithContext(ctx).Where("domain = ?", s.Domain).First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("读取已存在的初创公司失败: %w", mapNotFound(err))
	}
	return &existing, false, nil
}

func (r *startupRepository) GetByID(ctx context.Context, id string) (*model.Startup, error) {
	var s model.Startup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (r *startupRepository) ApplyEnrichment(ctx context.Context, id string, upd EnrichmentUpdate) error {
	values := map[string]interface{}{
		"enriched_at": upd.EnrichedAt,
		"updated_at":  time.Now(),
	}
	if g := upd.GodScore; g != nil {
		values["god_total"] = g.Total
		values["god_team"] = g.Team
		values["god_traction"] = g.Traction
		values["god_market"] = g.Market
		values["god_product"] = g.Product
		values["god_vision"] = g.Vision
	}
	if len(upd.Sectors) > 0 {
		values["sectors"] = model.EncodeStrings(upd.Sectors)
	}
	if upd.Stage != nil {
		values["stage"] = *upd.Stage
	}
	if upd.Signals != nil {
		values["signals"] = model.EncodeStrings(upd.Signals)
	}
	res := r.db.WithContext(ctx).Model(&model.Startup{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("回写富化结果失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *startupRepository) ListLeaderboard(ctx context.Context, filter LeaderboardFilter, page, pageSize int) ([]model.Startup, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	db := r.active(ctx)
	if filter.Sector != "" {
		db = db.Where("sectors @> ?", model.EncodeStrings([]string{filter.Sector}))
	}
	if filter.Stage != nil {
		db = db.Where("stage = ?", *filter.Stage)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Startup
	if err := db.Order("god_total DESC").Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *startupRepository) ListUnenriched(ctx context.Context, createdBefore time.Time, maxSweeps, limit int) ([]model.Startup, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []model.Startup
	err := r.active(ctx).
		Where("enriched_at IS NULL AND created_at < ? AND enrich_sweeps < ?", createdBefore, maxSweeps).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *startupRepository) MarkSwept(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Startup{}).Where("id = ?", id).
		UpdateColumn("enrich_sweeps", gorm.Expr("enrich_sweeps + 1"))
	if res.Error != nil {
		return fmt.Errorf("记录补投次数失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
