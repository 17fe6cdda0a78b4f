package viewmodel

import (
	"strings"

	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/ranking"
	"github.com/ugobe007/pythh-sub016/internal/utils/money"
)

// WhyDetail "为什么是这个投资方" 详情
type WhyDetail struct {
	EntityID     string                `json:"entity_id"`
	StartupID    string                `json:"startup_id"`
	InvestorName string                `json:"investor_name"`
	Firm         string                `json:"firm,omitempty"`
	MatchScore   float64               `json:"match_score"`
	Score        float64               `json:"score"`
	Breakdown    *model.Breakdown      `json:"breakdown,omitempty"`
	StageFit     ranking.StageFitLevel `json:"stage_fit"`
	SectorFitPct float64               `json:"sector_fit_pct"`
	Anchor       ranking.Anchor        `json:"anchor,omitempty"`
	Rank         int                   `json:"rank,omitempty"`
	Confidence   ranking.Confidence    `json:"confidence"`
	Why          []string              `json:"why"`
	CheckSize    string                `json:"check_size,omitempty"`
	Signal       float64               `json:"signal"`
	Direction    Direction             `json:"direction"`
	FitTier      int                   `json:"fit_tier"`
	GodScore     float64               `json:"god_score"`
	IsLocked     bool                  `json:"is_locked"`

	godSource
}

// DeriveWhy 单个投资方的匹配解释。top 为同一初创公司的 SelectTop 结果：
// 投资方在其中时沿用锚点、名次与理由；否则按候选记录重新生成理由，置信度取分维度得分自带的值（缺省 low）。
func DeriveWhy(raw model.MatchRow, startup *model.Startup, top []ranking.RankedMatch, locked bool) WhyDetail {
	c := ranking.CandidateFromRow(raw)
	sc := ranking.ContextFromStartup(startup)
	m := raw.Match

	signal := m.MatchScore / 10
	if m.SignalScore != nil {
		signal = *m.SignalScore
	}

	d := WhyDetail{
		EntityID:     c.InvestorID,
		StartupID:    startup.ID,
		InvestorName: c.Name,
		Firm:         c.Firm,
		MatchScore:   Round1(m.MatchScore),
		Score:        Round1(c.EffectiveScore()),
		Breakdown:    c.Breakdown,
		StageFit:     ranking.StageFit(c.Stages, sc.Stage),
		SectorFitPct: Round1(ranking.SectorFitPct(c.Sectors, sc.Sectors)),
		CheckSize:    money.FormatRange(c.CheckSizeMin, c.CheckSizeMax),
		Signal:       signalValue(signal),
		Direction:    directionOfPtr(m.MomentumBucket),
		FitTier:      clampInt(FitTier(m.FitBucket, m.MatchScore), TierMin, TierMax),
		GodScore:     injectGod(startup),
		IsLocked:     locked,
	}

	for _, r := range top {
		if r.InvestorID == c.InvestorID {
			d.Anchor = r.Anchor
			d.Rank = r.Rank
			d.Confidence = r.Confidence
			d.Why = r.Why
			break
		}
	}
	if d.Anchor == "" {
		d.Confidence = breakdownConfidence(c.Breakdown)
		d.Why = ranking.WhyBullets(c, sc)
	}
	if d.Why == nil {
		d.Why = []string{}
	}
	d.godSource = godFrom(startup)
	return d
}

func breakdownConfidence(b *model.Breakdown) ranking.Confidence {
	if b == nil {
		return ranking.ConfidenceLow
	}
	switch c := ranking.Confidence(strings.ToLower(b.Confidence)); c {
	case ranking.ConfidenceLow, ranking.ConfidenceMed, ranking.ConfidenceHigh:
		return c
	default:
		return ranking.ConfidenceLow
	}
}
