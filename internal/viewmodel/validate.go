package viewmodel

import (
	"fmt"
	"sort"
)

// DefaultFallbackSentinels 上游写入的疑似兜底值
var DefaultFallbackSentinels = []float64{100}

// Validator 视图模型校验器：只返回问题描述，从不阻断响应
type Validator struct {
	sentinels []float64
}

// NewValidator sentinels 为空时使用 DefaultFallbackSentinels
func NewValidator(sentinels []float64) *Validator {
	if len(sentinels) == 0 {
		sentinels = DefaultFallbackSentinels
	}
	return &Validator{sentinels: sentinels}
}

// checkRow 各页面行共有的可校验字段
type checkRow struct {
	id           string
	startupID    string
	signal       float64
	fitTier      int
	hasFit       bool
	readiness    int
	hasReadiness bool
	god          float64 // 展示值（已取整）
	rawGod       float64 // 取整前的原值，哨兵判断用
}

func (v *Validator) Radar(rows []RadarRow) []string {
	ps := make([]checkRow, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, checkRow{id: r.EntityID, startupID: r.StartupID, signal: r.Signal, fitTier: r.FitTier, hasFit: true, god: r.GodScore, rawGod: r.rawGod(r.GodScore)})
	}
	return v.check("radar", ps)
}

func (v *Validator) Live(rows []LiveRow) []string {
	ps := make([]checkRow, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, checkRow{id: r.EntityID, startupID: r.StartupID, signal: r.Signal, fitTier: r.FitTier, hasFit: true, god: r.GodScore, rawGod: r.rawGod(r.GodScore)})
	}
	return v.check("live", ps)
}

func (v *Validator) Signals(rows []SignalRow) []string {
	ps := make([]checkRow, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, checkRow{id: r.EntityID, startupID: r.StartupID, signal: r.Signal, fitTier: r.FitTier, hasFit: true, god: r.GodScore, rawGod: r.rawGod(r.GodScore)})
	}
	return v.check("signals", ps)
}

func (v *Validator) Leaderboard(rows []LeaderboardRow) []string {
	ps := make([]checkRow, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, checkRow{id: r.EntityID, startupID: r.EntityID, signal: r.Signal, readiness: r.ReadinessTier, hasReadiness: true, god: r.GodScore, rawGod: r.rawGod(r.GodScore)})
	}
	return v.check("leaderboard", ps)
}

// Details 用于匹配详情与 top-matches 列表
func (v *Validator) Details(ds []WhyDetail) []string {
	ps := make([]checkRow, 0, len(ds))
	for _, d := range ds {
		ps = append(ps, checkRow{id: d.EntityID, startupID: d.StartupID, signal: d.Signal, fitTier: d.FitTier, hasFit: true, god: d.GodScore, rawGod: d.rawGod(d.GodScore)})
	}
	return v.check("matches", ps)
}

// check 单行范围检查 + 按初创公司聚合的 GOD 一致性 / 兜底值检查
func (v *Validator) check(surface string, rows []checkRow) []string {
	issues := []string{}
	godByStartup := make(map[string][]float64)
	rawByStartup := make(map[string][]float64)
	var order []string

	for _, r := range rows {
		if r.signal < SignalMin || r.signal > SignalMax {
			issues = append(issues, fmt.Sprintf("%s[%s]: signal %.1f 超出 [0,10]", surface, r.id, r.signal))
		}
		if r.hasFit && (r.fitTier < TierMin || r.fitTier > TierMax) {
			issues = append(issues, fmt.Sprintf("%s[%s]: fit_tier %d 超出 [1,5]", surface, r.id, r.fitTier))
		}
		if r.hasReadiness && (r.readiness < TierMin || r.readiness > TierMax) {
			issues = append(issues, fmt.Sprintf("%s[%s]: readiness_tier %d 超出 [1,5]", surface, r.id, r.readiness))
		}
		if r.god < ScoreMin || r.god > ScoreMax {
			issues = append(issues, fmt.Sprintf("%s[%s]: god_score %.1f 超出 [0,100]", surface, r.id, r.god))
		}
		if _, ok := godByStartup[r.startupID]; !ok {
			order = append(order, r.startupID)
		}
		godByStartup[r.startupID] = append(godByStartup[r.startupID], r.god)
		rawByStartup[r.startupID] = append(rawByStartup[r.startupID], r.rawGod)
	}

	for _, sid := range order {
		values := distinct(godByStartup[sid])
		if len(values) > 1 {
			issues = append(issues, fmt.Sprintf("%s: startup %s 的 god_score 在同一响应中不一致 %v", surface, sid, values))
		}
		for _, g := range distinct(rawByStartup[sid]) {
			if v.isSentinel(g) {
				issues = append(issues, fmt.Sprintf("%s: startup %s 的 god_score %.1f 等于兜底哨兵值，疑似上游缺失", surface, sid, g))
			}
		}
	}
	return issues
}

func (v *Validator) isSentinel(x float64) bool {
	for _, s := range v.sentinels {
		if x == s {
			return true
		}
	}
	return false
}

func distinct(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	var out []float64
	for _, x := range values {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	sort.Float64s(out)
	return out
}
