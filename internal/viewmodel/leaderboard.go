package viewmodel

import (
	"github.com/ugobe007/pythh-sub016/internal/model"
)

// 就绪度加减分阈值
const (
	readinessBase          = 3
	readinessGodMin        = 70.0
	readinessPerceptionMin = 70.0
	readinessSignalMin     = 6.0
	readinessDeltaFloor    = -0.5
)

// ReadinessTier 基础 3 分；GOD ≥70、感知分 ≥70、信号 ≥6 各 +1；7日变化 < -0.5 时 -1；限制在 [1,5]
func ReadinessTier(god, perception, signal, delta7d float64) int {
	tier := readinessBase
	if god >= readinessGodMin {
		tier++
	}
	if perception >= readinessPerceptionMin {
		tier++
	}
	if signal >= readinessSignalMin {
		tier++
	}
	if delta7d < readinessDeltaFloor {
		tier--
	}
	return clampInt(tier, TierMin, TierMax)
}

// LeaderboardRow 初创公司排行榜一行
type LeaderboardRow struct {
	EntityID      string   `json:"entity_id"`
	Rank          int      `json:"rank"`
	Name          string   `json:"name"`
	Domain        string   `json:"domain"`
	Stage         string   `json:"stage,omitempty"`
	Sectors       []string `json:"sectors"`
	Signals       []string `json:"signals,omitempty"`
	GodScore      float64  `json:"god_score"`
	Perception    float64  `json:"perception"`
	Signal        float64  `json:"signal"`
	Delta7d       float64  `json:"delta_7d"`
	ReadinessTier int      `json:"readiness_tier"`
	Glow          Glow     `json:"glow"`

	godSource
}

// DeriveLeaderboardRow 初创公司行 → 排行榜行。就绪度使用未取整的原值计算。
func DeriveLeaderboardRow(s *model.Startup, index int) LeaderboardRow {
	tier := ReadinessTier(s.GodTotal, s.PerceptionScore, s.SignalScore, s.SignalDelta7d)
	signal := signalValue(s.SignalScore)
	sectors := s.SectorList()
	if sectors == nil {
		sectors = []string{}
	}
	row := LeaderboardRow{
		EntityID:      s.ID,
		Rank:          index + 1,
		Name:          s.Name,
		Domain:        s.Domain,
		Stage:         s.StageName(),
		Sectors:       sectors,
		Signals:       s.SignalLabels(),
		GodScore:      injectGod(s),
		Perception:    Round1(s.PerceptionScore),
		Signal:        signal,
		Delta7d:       Round1(s.SignalDelta7d),
		ReadinessTier: tier,
		Glow:          glowFor(signal, tier, true, false),
	}
	row.godSource = godFrom(s)
	return row
}

func DeriveLeaderboard(startups []model.Startup) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(startups))
	for i := range startups {
		rows = append(rows, DeriveLeaderboardRow(&startups[i], i))
	}
	return rows
}
