package model

import "time"

// SignalEvent 实时信号流原始行（live-stream 与 signals 两个视图共用）
type SignalEvent struct {
	ID         string          `gorm:"column:id;type:varchar(36);primaryKey"`
	StartupID  string          `gorm:"column:startup_id;type:varchar(36);not null;index"`
	InvestorID *string         `gorm:"column:investor_id;type:varchar(36)"`
	Kind       string          `gorm:"column:kind;type:varchar(32);not null;comment:事件类型：match/funding/press/hiring"`
	Headline   string          `gorm:"column:headline;type:varchar(512)"`
	Signal     float64         `gorm:"column:signal;type:numeric(5,2);not null;comment:信号强度 0-10"`
	Delta      *float64        `gorm:"column:delta;type:numeric(5,2)"`
	Momentum   *MomentumBucket `gorm:"column:momentum;type:varchar(16)"`
	MatchScore *float64        `gorm:"column:match_score;type:numeric(6,2)"`
	CreatedAt  time.Time       `gorm:"column:created_at;type:timestamptz;not null;index"`
}

func (SignalEvent) TableName() string { return "signal_events" }

// FeedRow 信号事件 + 所属初创公司（GOD 注入源）
type FeedRow struct {
	Event        SignalEvent
	Startup      Startup
	InvestorName string
}
