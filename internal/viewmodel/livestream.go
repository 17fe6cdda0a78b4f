package viewmodel

import (
	"github.com/ugobe007/pythh-sub016/internal/model"
)

// LiveStatus 实时流行状态
type LiveStatus string

const (
	LiveNew     LiveStatus = "NEW"
	LiveLive    LiveStatus = "LIVE"
	LiveCooling LiveStatus = "COOLING"
)

// 状态边界（毫秒）
const (
	NewWindowMs    int64 = 5_000
	CoolingAfterMs int64 = 300_000
)

// LiveStatusForAge age ≤ 5s → NEW；age ≥ 300s → COOLING；其余 LIVE
func LiveStatusForAge(ageMs int64) LiveStatus {
	switch {
	case ageMs <= NewWindowMs:
		return LiveNew
	case ageMs >= CoolingAfterMs:
		return LiveCooling
	default:
		return LiveLive
	}
}

// LiveRow 实时信号流一行
type LiveRow struct {
	EntityID     string     `json:"entity_id"`
	StartupID    string     `json:"startup_id"`
	StartupName  string     `json:"startup_name"`
	InvestorName string     `json:"investor_name,omitempty"`
	Kind         string     `json:"kind"`
	Headline     string     `json:"headline"`
	Signal       float64    `json:"signal"`
	Delta        *float64   `json:"delta,omitempty"`
	Direction    Direction  `json:"direction"`
	FitTier      int        `json:"fit_tier"`
	GodScore     float64    `json:"god_score"`
	AgeMs        int64      `json:"age_ms"`
	Status       LiveStatus `json:"status"`
	Glow         Glow       `json:"glow"`

	godSource
}

// DeriveLiveRow 信号事件 → 实时流行
func DeriveLiveRow(raw model.FeedRow, nowMs int64) LiveRow {
	ev := raw.Event
	age := ageMs(ev, nowMs)
	signal := signalValue(ev.Signal)
	tier := feedFitTier(ev, signal)
	status := LiveStatusForAge(age)
	row := LiveRow{
		EntityID:     ev.ID,
		StartupID:    ev.StartupID,
		StartupName:  raw.Startup.Name,
		InvestorName: raw.InvestorName,
		Kind:         ev.Kind,
		Headline:     ev.Headline,
		Signal:       signal,
		Delta:        roundPtr(ev.Delta),
		Direction:    directionOfPtr(ev.Momentum),
		FitTier:      tier,
		GodScore:     injectGod(&raw.Startup),
		AgeMs:        age,
		Status:       status,
		Glow:         glowFor(signal, tier, true, status == LiveNew),
	}
	row.godSource = godFrom(&raw.Startup)
	return row
}

// DeriveLive 批量推导，nowMs 对整批只取一次
func DeriveLive(raws []model.FeedRow, nowMs int64) []LiveRow {
	rows := make([]LiveRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, DeriveLiveRow(raw, nowMs))
	}
	return rows
}

func ageMs(ev model.SignalEvent, nowMs int64) int64 {
	age := nowMs - ev.CreatedAt.UnixMilli()
	if age < 0 {
		return 0
	}
	return age
}

// 事件带匹配分时按匹配分分档，否则按信号强度 ×10 估算
func feedFitTier(ev model.SignalEvent, signal float64) int {
	score := signal * 10
	if ev.MatchScore != nil {
		score = *ev.MatchScore
	}
	return clampInt(FitTier(nil, score), TierMin, TierMax)
}
