package ranking

import (
	"strings"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

// Confidence 选中行的可信度标签
type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceMed  Confidence = "med"
	ConfidenceHigh Confidence = "high"
)

// 综合分权重
const (
	weightSector    = 0.30
	weightStage     = 0.20
	weightPortfolio = 0.20
	weightBehavior  = 0.15
	weightTiming    = 0.15
)

// ConfidenceMultiplier low=0.85 / med=1.0 / high=1.1，未知按 med
func ConfidenceMultiplier(c Confidence) float64 {
	switch c {
	case ConfidenceLow:
		return 0.85
	case ConfidenceHigh:
		return 1.1
	default:
		return 1.0
	}
}

// CompositeScore 有分维度得分时的综合分，结果落在 [0,100]
func CompositeScore(b model.Breakdown) float64 {
	raw := weightSector*b.SectorFit +
		weightStage*b.StageFit +
		weightPortfolio*b.PortfolioAdjacency +
		weightBehavior*b.BehaviorSignal +
		weightTiming*b.Timing
	score := 100 * clamp(raw, 0, 1) * ConfidenceMultiplier(Confidence(strings.ToLower(b.Confidence)))
	return clamp(score, 0, 100)
}

// StageFitLevel 阶段匹配档位
type StageFitLevel string

const (
	StageFitStrong StageFitLevel = "strong"
	StageFitGood   StageFitLevel = "good"
	StageFitWeak   StageFitLevel = "weak"
)

// StageFit 完全相同为 strong；阶梯上相邻（下标差 ≤1）为 good；其余 weak
func StageFit(investorStages []string, startupStage string) StageFitLevel {
	target := model.NormalizeStage(startupStage)
	if target == "" {
		return StageFitWeak
	}
	targetIdx := model.StageIndex(target)
	level := StageFitWeak
	for _, s := range investorStages {
		norm := model.NormalizeStage(s)
		if norm == target {
			return StageFitStrong
		}
		idx := model.StageIndex(norm)
		if idx >= 0 && targetIdx >= 0 && abs(idx-targetIdx) <= 1 {
			level = StageFitGood
		}
	}
	return level
}

// SectorFitPct 投资方行业中与初创公司行业（子串匹配）重合的比例，0–100
func SectorFitPct(investorSectors, startupSectors []string) float64 {
	if len(investorSectors) == 0 {
		return 0
	}
	hits := 0
	for _, inv := range investorSectors {
		for _, st := range startupSectors {
			if sectorMatch(inv, st) {
				hits++
				break
			}
		}
	}
	return 100 * float64(hits) / float64(len(investorSectors))
}

// overlappingSectors 投资方行业中与初创公司有交集的部分，保持投资方原顺序
func overlappingSectors(investorSectors, startupSectors []string) []string {
	var out []string
	for _, inv := range investorSectors {
		for _, st := range startupSectors {
			if sectorMatch(inv, st) {
				out = append(out, inv)
				break
			}
		}
	}
	return out
}

// sectorMatch 忽略大小写的双向子串匹配："fintech" ~ "FinTech Infrastructure"
func sectorMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func stageEquals(investorStages []string, startupStage string) bool {
	target := model.NormalizeStage(startupStage)
	if target == "" {
		return false
	}
	for _, s := range investorStages {
		if model.NormalizeStage(s) == target {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
