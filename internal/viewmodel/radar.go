package viewmodel

import (
	"github.com/ugobe007/pythh-sub016/internal/model"
)

// RadarStatus 雷达行状态
type RadarStatus string

const (
	RadarLocked  RadarStatus = "LOCKED"
	RadarReady   RadarStatus = "READY"
	RadarLive    RadarStatus = "LIVE"
	RadarWarming RadarStatus = "WARMING"
)

// RadarRow 雷达表一行（初创公司 × 投资方）
type RadarRow struct {
	EntityID         string      `json:"entity_id"`
	StartupID        string      `json:"startup_id"`
	Rank             int         `json:"rank"`
	InvestorName     string      `json:"investor_name,omitempty"`
	Firm             string      `json:"firm,omitempty"`
	MatchScore       float64     `json:"match_score"`
	Signal           float64     `json:"signal"`
	Delta            *float64    `json:"delta,omitempty"`
	Direction        Direction   `json:"direction"`
	FitTier          int         `json:"fit_tier"`
	GodScore         float64     `json:"god_score"`
	Status           RadarStatus `json:"status"`
	IsLocked         bool        `json:"is_locked"`
	RemainingUnlocks int         `json:"remaining_unlocks"`
	Glow             Glow        `json:"glow"`

	godSource
}

// RadarStatusFor 状态表：
//
//	兜底层匹配                          → WARMING
//	未自动解锁（index ≥ autoUnlock）且未授权解锁 → LOCKED
//	动量向上                            → LIVE
//	其余                                → READY
func RadarStatusFor(isFallback, isLocked bool, index, autoUnlock int, dir Direction) RadarStatus {
	switch {
	case isFallback:
		return RadarWarming
	case isLocked && index >= autoUnlock:
		return RadarLocked
	case dir == DirectionUp:
		return RadarLive
	default:
		return RadarReady
	}
}

// DeriveRadarRow 排名表原始行 → 雷达行。index 为 0 起的行序号。
func DeriveRadarRow(raw model.RankedTableRow, startup *model.Startup, index, autoUnlock int) RadarRow {
	m := raw.Match
	dir := directionOfPtr(m.MomentumBucket)

	signal := m.MatchScore / 10
	if m.SignalScore != nil {
		signal = *m.SignalScore
	}
	tier := clampInt(FitTier(m.FitBucket, m.MatchScore), TierMin, TierMax)
	status := RadarStatusFor(m.IsFallback, raw.IsLocked, index, autoUnlock, dir)
	locked := status == RadarLocked

	row := RadarRow{
		EntityID:         m.InvestorID,
		StartupID:        m.StartupID,
		Rank:             index + 1,
		MatchScore:       Round1(m.MatchScore),
		Signal:           signalValue(signal),
		Delta:            roundPtr(m.SignalDelta),
		Direction:        dir,
		FitTier:          tier,
		GodScore:         injectGod(startup),
		Status:           status,
		IsLocked:         locked,
		RemainingUnlocks: raw.RemainingUnlocks,
	}
	// 锁定行不暴露投资方身份
	if !locked {
		row.InvestorName = raw.Investor.Name
		row.Firm = raw.Investor.Firm
	}
	row.Glow = glowFor(row.Signal, tier, !locked, status == RadarLive)
	row.godSource = godFrom(startup)
	return row
}

// DeriveRadar 整表推导
func DeriveRadar(raws []model.RankedTableRow, startup *model.Startup, autoUnlock int) []RadarRow {
	rows := make([]RadarRow, 0, len(raws))
	for i, raw := range raws {
		rows = append(rows, DeriveRadarRow(raw, startup, i, autoUnlock))
	}
	return rows
}
