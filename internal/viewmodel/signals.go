package viewmodel

import (
	"github.com/ugobe007/pythh-sub016/internal/model"
)

// SignalRow 信号列表行，只有新鲜度标记，没有状态机
type SignalRow struct {
	EntityID    string    `json:"entity_id"`
	StartupID   string    `json:"startup_id"`
	StartupName string    `json:"startup_name"`
	Kind        string    `json:"kind"`
	Headline    string    `json:"headline"`
	Signal      float64   `json:"signal"`
	Delta       *float64  `json:"delta,omitempty"`
	Direction   Direction `json:"direction"`
	FitTier     int       `json:"fit_tier"`
	GodScore    float64   `json:"god_score"`
	AgeMs       int64     `json:"age_ms"`
	IsNew       bool      `json:"is_new"`
	Glow        Glow      `json:"glow"`

	godSource
}

// IsNew age ≤ 5000ms
func IsNew(ageMs int64) bool {
	return ageMs <= NewWindowMs
}

// DeriveSignalRow 信号事件 → 信号列表行
func DeriveSignalRow(raw model.FeedRow, nowMs int64) SignalRow {
	ev := raw.Event
	age := ageMs(ev, nowMs)
	signal := signalValue(ev.Signal)
	tier := feedFitTier(ev, signal)
	fresh := IsNew(age)
	row := SignalRow{
		EntityID:    ev.ID,
		StartupID:   ev.StartupID,
		StartupName: raw.Startup.Name,
		Kind:        ev.Kind,
		Headline:    ev.Headline,
		Signal:      signal,
		Delta:       roundPtr(ev.Delta),
		Direction:   directionOfPtr(ev.Momentum),
		FitTier:     tier,
		GodScore:    injectGod(&raw.Startup),
		AgeMs:       age,
		IsNew:       fresh,
		Glow:        glowFor(signal, tier, true, fresh),
	}
	row.godSource = godFrom(&raw.Startup)
	return row
}

func DeriveSignals(raws []model.FeedRow, nowMs int64) []SignalRow {
	rows := make([]SignalRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, DeriveSignalRow(raw, nowMs))
	}
	return rows
}
