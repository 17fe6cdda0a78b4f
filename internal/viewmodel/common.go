// Package viewmodel 把原始行 + 初创公司聚合转换为各页面的展示行，并提供校验器。
// 所有 Derive* 都是纯函数：相同输入得到相同输出，不做 IO。
package viewmodel

import (
	"math"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

// 取值范围
const (
	SignalMin = 0.0
	SignalMax = 10.0
	ScoreMin  = 0.0
	ScoreMax  = 100.0
	TierMin   = 1
	TierMax   = 5
)

// Direction 动量方向
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// DirectionOf strong|emerging → up，cooling|cold → down，其余 flat
func DirectionOf(m model.MomentumBucket) Direction {
	switch m {
	case model.MomentumStrong, model.MomentumEmerging:
		return DirectionUp
	case model.MomentumCooling, model.MomentumCold:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

func directionOfPtr(m *model.MomentumBucket) Direction {
	if m == nil {
		return DirectionFlat
	}
	return DirectionOf(*m)
}

// Round1 保留一位小数
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// FitTier 有预分档时按档位（high→5，good→4，early→2），否则按原始分阈值
func FitTier(bucket *model.FitBucket, score float64) int {
	if bucket != nil {
		switch *bucket {
		case model.FitHigh:
			return 5
		case model.FitGood:
			return 4
		case model.FitEarly:
			return 2
		}
	}
	switch {
	case score >= 85:
		return 5
	case score >= 75:
		return 4
	case score >= 65:
		return 3
	case score >= 50:
		return 2
	default:
		return 1
	}
}

// Glow 纯展示提示，只由已算好的字段推导，不参与任何业务判断
type Glow struct {
	Hue   string `json:"hue,omitempty"`
	Pulse bool   `json:"pulse,omitempty"`
}

const (
	HueSignal = "amber"   // 高信号
	HueFit    = "emerald" // 高匹配且已解锁
)

const (
	glowSignalThreshold = 7.0
	glowFitTier         = 4
)

func glowFor(signal float64, fitTier int, unlocked, pulse bool) Glow {
	g := Glow{Pulse: pulse}
	switch {
	case signal >= glowSignalThreshold:
		g.Hue = HueSignal
	case fitTier >= glowFitTier && unlocked:
		g.Hue = HueFit
	}
	return g
}

// signalValue 四舍五入到一位小数并限制在 [0,10]
func signalValue(x float64) float64 {
	return Round1(clamp(x, SignalMin, SignalMax))
}

func roundPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := Round1(*p)
	return &v
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// injectGod 同一次响应内所有行的 GOD 值只从 startup.GodTotal 读取
func injectGod(s *model.Startup) float64 {
	if s == nil {
		return 0
	}
	return Round1(s.GodTotal)
}

// godSource 行内保留未取整的 GodTotal，只供校验器判断哨兵值（不参与序列化）
type godSource struct {
	godRaw *float64
}

func godFrom(s *model.Startup) godSource {
	if s == nil {
		return godSource{}
	}
	raw := s.GodTotal
	return godSource{godRaw: &raw}
}

// rawGod 未经 Derive 构造的行没有原值，退回展示值
func (g godSource) rawGod(displayed float64) float64 {
	if g.godRaw == nil {
		return displayed
	}
	return *g.godRaw
}
