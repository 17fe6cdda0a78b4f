package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Investor 投资方，对核心而言只关心行业、阶段与支票区间
type Investor struct {
	ID           string         `gorm:"column:id;type:varchar(36);primaryKey"`
	Name         string         `gorm:"column:name;type:varchar(255);not null"`
	Firm         string         `gorm:"column:firm;type:varchar(255)"`
	Sectors      datatypes.JSON `gorm:"column:sectors;type:jsonb;comment:关注行业"`
	Stages       datatypes.JSON `gorm:"column:stages;type:jsonb;comment:投资阶段"`
	CheckSizeMin float64        `gorm:"column:check_size_min;type:numeric(18,2);default:0"`
	CheckSizeMax float64        `gorm:"column:check_size_max;type:numeric(18,2);default:0"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (Investor) TableName() string { return "investors" }

func (i *Investor) SectorList() []string { return decodeStrings(i.Sectors) }
func (i *Investor) StageList() []string  { return decodeStrings(i.Stages) }

// FitBucket 预分档的匹配度
type FitBucket string

const (
	FitEarly FitBucket = "early"
	FitGood  FitBucket = "good"
	FitHigh  FitBucket = "high"
)

// MomentumBucket 预分档的动量
type MomentumBucket string

const (
	MomentumStrong   MomentumBucket = "strong"
	MomentumEmerging MomentumBucket = "emerging"
	MomentumNeutral  MomentumBucket = "neutral"
	MomentumCooling  MomentumBucket = "cooling"
	MomentumCold     MomentumBucket = "cold"
)

// Match 外部打分流水线产出的初创公司×投资方匹配，核心只读
type Match struct {
	ID             uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	StartupID      string          `gorm:"column:startup_id;type:varchar(36);not null;uniqueIndex:uq_match_pair"`
	InvestorID     string          `gorm:"column:investor_id;type:varchar(36);not null;uniqueIndex:uq_match_pair"`
	MatchScore     float64         `gorm:"column:match_score;type:numeric(6,2);not null;comment:原始匹配分 0-100"`
	FitBucket      *FitBucket      `gorm:"column:fit_bucket;type:varchar(8)"`
	MomentumBucket *MomentumBucket `gorm:"column:momentum_bucket;type:varchar(16)"`
	SignalScore    *float64        `gorm:"column:signal_score;type:numeric(5,2);comment:行级信号分 0-10"`
	SignalDelta    *float64        `gorm:"column:signal_delta;type:numeric(5,2)"`
	Breakdown      datatypes.JSON  `gorm:"column:breakdown;type:jsonb;comment:分维度得分"`
	IsFallback     bool            `gorm:"column:is_fallback;type:boolean;default:false;comment:兜底层匹配"`
	CreatedAt      time.Time       `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Match) TableName() string { return "matches" }

// Breakdown 分维度匹配分（各项 0–1）与置信度
type Breakdown struct {
	SectorFit          float64 `json:"sector_fit"`
	StageFit           float64 `json:"stage_fit"`
	PortfolioAdjacency float64 `json:"portfolio_adjacency"`
	BehaviorSignal     float64 `json:"behavior_signal"`
	Timing             float64 `json:"timing"`
	Confidence         string  `json:"confidence"`
}

// BreakdownValue 解析 breakdown 列，未提供时返回 nil
func (m *Match) BreakdownValue() *Breakdown {
	if len(m.Breakdown) == 0 || string(m.Breakdown) == "null" {
		return nil
	}
	var b Breakdown
	if err := json.Unmarshal(m.Breakdown, &b); err != nil {
		return nil
	}
	return &b
}

// MatchUnlock 权益解锁记录
type MatchUnlock struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	StartupID  string    `gorm:"column:startup_id;type:varchar(36);not null;uniqueIndex:uq_unlock_pair"`
	InvestorID string    `gorm:"column:investor_id;type:varchar(36);not null;uniqueIndex:uq_unlock_pair"`
	UnlockedAt time.Time `gorm:"column:unlocked_at;type:timestamptz;not null;index"`
}

func (MatchUnlock) TableName() string { return "match_unlocks" }

// MatchRow 匹配 + 对应投资方，由仓储按 investor_id 组装
type MatchRow struct {
	Match    Match
	Investor Investor
}

// RankedTableRow 排名表查询结果：原始匹配行 + 锁定/权益元数据
type RankedTableRow struct {
	MatchRow
	IsLocked         bool
	RemainingUnlocks int
}
