package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/utils/money"
)

const (
	// TopN 最多选出的投资方数量
	TopN = 5
	// VelocityThreshold 速度锚点的原始分下限
	VelocityThreshold = 70
	// MomentumBulletThreshold 只有原始分达到该值才输出动量类理由
	MomentumBulletThreshold = 70
	maxWhyBullets           = 3
)

// Anchor 选取锚点，按声明顺序依次应用
type Anchor string

const (
	AnchorPrestige  Anchor = "prestige"
	AnchorStageFit  Anchor = "stage_fit"
	AnchorPortfolio Anchor = "portfolio_adjacency"
	AnchorVelocity  Anchor = "velocity"
	AnchorBackfill  Anchor = "backfill"
)

// StartupContext 参与排序的初创公司属性
type StartupContext struct {
	Stage   string
	Sectors []string
}

// ContextFromStartup 由 Startup 行构造排序上下文
func ContextFromStartup(s *model.Startup) StartupContext {
	return StartupContext{Stage: s.StageName(), Sectors: s.SectorList()}
}

// Candidate 一条待选匹配（来自 Match + Investor）
type Candidate struct {
	InvestorID   string               `json:"investor_id"`
	Name         string               `json:"name"`
	Firm         string               `json:"firm,omitempty"`
	RawScore     float64              `json:"raw_score"`
	Stages       []string             `json:"stages,omitempty"`
	Sectors      []string             `json:"sectors,omitempty"`
	CheckSizeMin float64              `json:"check_size_min,omitempty"`
	CheckSizeMax float64              `json:"check_size_max,omitempty"`
	Momentum     model.MomentumBucket `json:"momentum,omitempty"`
	Breakdown    *model.Breakdown     `json:"breakdown,omitempty"`
}

// CandidateFromRow 原始匹配行 → 候选
func CandidateFromRow(row model.MatchRow) Candidate {
	c := Candidate{
		InvestorID:   row.Match.InvestorID,
		Name:         row.Investor.Name,
		Firm:         row.Investor.Firm,
		RawScore:     row.Match.MatchScore,
		Stages:       row.Investor.StageList(),
		Sectors:      row.Investor.SectorList(),
		CheckSizeMin: row.Investor.CheckSizeMin,
		CheckSizeMax: row.Investor.CheckSizeMax,
		Breakdown:    row.Match.BreakdownValue(),
	}
	if row.Match.MomentumBucket != nil {
		c.Momentum = *row.Match.MomentumBucket
	}
	return c
}

// EffectiveScore 有分维度得分时用综合分，否则用原始分
func (c Candidate) EffectiveScore() float64 {
	if c.Breakdown != nil {
		return CompositeScore(*c.Breakdown)
	}
	return clamp(c.RawScore, 0, 100)
}

// RankedMatch 选中的一行
type RankedMatch struct {
	Candidate
	Rank       int        `json:"rank"`
	Anchor     Anchor     `json:"anchor"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
	Why        []string   `json:"why"`
}

// SelectTop 用五个锚点从候选中选出多样化的前 N 个：
// 声望（最高分）→ 阶段匹配 → 行业相邻 → 速度（分数 ≥70）→ 按分数回填。
// 锚点无可用候选时跳过；同一投资方只出现一次；输入为空返回空切片。
func SelectTop(candidates []Candidate, sc StartupContext) []RankedMatch {
	pool := sortedUnique(candidates)
	if len(pool) == 0 {
		return []RankedMatch{}
	}

	used := make([]bool, len(pool))
	out := make([]RankedMatch, 0, TopN)
	take := func(i int, anchor Anchor) {
		used[i] = true
		c := pool[i]
		out = append(out, RankedMatch{
			Candidate:  c,
			Rank:       len(out) + 1,
			Anchor:     anchor,
			Score:      c.EffectiveScore(),
			Confidence: anchorConfidence(anchor),
			Why:        WhyBullets(c, sc),
		})
	}
	first := func(pred func(Candidate) bool) int {
		for i, c := range pool {
			if !used[i] && pred(c) {
				return i
			}
		}
		return -1
	}

	anchors := []struct {
		anchor Anchor
		pred   func(Candidate) bool
	}{
		{AnchorPrestige, func(Candidate) bool { return true }},
		{AnchorStageFit, func(c Candidate) bool { return stageEquals(c.Stages, sc.Stage) }},
		{AnchorPortfolio, func(c Candidate) bool { return len(overlappingSectors(c.Sectors, sc.Sectors)) > 0 }},
		{AnchorVelocity, func(c Candidate) bool { return c.RawScore >= VelocityThreshold }},
	}
	for _, a := range anchors {
		if len(out) == TopN {
			break
		}
		if i := first(a.pred); i >= 0 {
			take(i, a.anchor)
		}
	}
	for len(out) < TopN {
		i := first(func(Candidate) bool { return true })
		if i < 0 {
			break
		}
		take(i, AnchorBackfill)
	}
	return out
}

// sortedUnique 按分数降序、investor_id 升序稳定排序，并去掉重复投资方（保留最高分那条）
func sortedUnique(candidates []Candidate) []Candidate {
	pool := make([]Candidate, 0, len(candidates))
	pool = append(pool, candidates...)
	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := pool[i].EffectiveScore(), pool[j].EffectiveScore()
		if si != sj {
			return si > sj
		}
		return pool[i].InvestorID < pool[j].InvestorID
	})
	seen := make(map[string]struct{}, len(pool))
	out := pool[:0]
	for _, c := range pool {
		if _, ok := seen[c.InvestorID]; ok {
			continue
		}
		seen[c.InvestorID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func anchorConfidence(a Anchor) Confidence {
	switch a {
	case AnchorPrestige, AnchorStageFit, AnchorVelocity:
		return ConfidenceHigh
	default:
		return ConfidenceMed
	}
}

// WhyBullets 最多 3 条理由，只用候选记录里能直接得到的属性：
// 活跃行业、阶段偏好、支票区间；原始分 ≥70 时才补充动量类描述。
func WhyBullets(c Candidate, sc StartupContext) []string {
	var out []string
	add := func(s string) {
		if s != "" && len(out) < maxWhyBullets {
			out = append(out, s)
		}
	}

	if overlap := overlappingSectors(c.Sectors, sc.Sectors); len(overlap) > 0 {
		add("Active in " + joinFirst(overlap, 2))
	} else if len(c.Sectors) > 0 {
		add("Invests in " + joinFirst(c.Sectors, 2))
	}

	if len(c.Stages) > 0 {
		switch StageFit(c.Stages, sc.Stage) {
		case StageFitStrong:
			add("Writes " + titleStage(sc.Stage) + " checks")
		default:
			add("Stage focus: " + joinFirst(titleStages(c.Stages), 2))
		}
	}

	if r := money.FormatRange(c.CheckSizeMin, c.CheckSizeMax); r != "" {
		add("Typical check " + r)
	}

	if c.RawScore >= MomentumBulletThreshold {
		switch c.Momentum {
		case model.MomentumStrong:
			add("Strong recent deployment momentum")
		case model.MomentumEmerging:
			add("Deployment momentum is building")
		default:
			add(fmt.Sprintf("High match score (%.0f)", c.RawScore))
		}
	}
	return out
}

func joinFirst(list []string, n int) string {
	if len(list) > n {
		list = list[:n]
	}
	return strings.Join(list, ", ")
}

func titleStages(stages []string) []string {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		out = append(out, titleStage(s))
	}
	return out
}

func titleStage(stage string) string {
	switch norm := model.NormalizeStage(stage); norm {
	case "preseed":
		return "Pre-Seed"
	case "":
		return ""
	default:
		words := strings.Fields(norm)
		for i, w := range words {
			if len(w) == 1 {
				words[i] = strings.ToUpper(w)
			} else {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		return strings.Join(words, " ")
	}
}
