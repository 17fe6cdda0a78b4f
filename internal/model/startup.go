package model

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// StartupStatus 初创公司生命周期状态
type StartupStatus string

const (
	StartupProvisional StartupStatus = "provisional"
	StartupApproved    StartupStatus = "approved"
	StartupRejected    StartupStatus = "rejected"
)

// StageLadder 融资阶段有序阶梯（Startup.Stage 为其下标，nil 表示阶段未知）
var StageLadder = []string{"preseed", "seed", "series a", "series b", "series c"}

// Startup 初创公司：身份 + GOD 打分聚合。domain 为规范化后的 host，全局唯一。
type Startup struct {
	ID              string         `gorm:"column:id;type:varchar(36);primaryKey;comment:全局唯一ID"`
	Domain          string         `gorm:"column:domain;type:varchar(255);uniqueIndex;not null;comment:规范化域名"`
	Name            string         `gorm:"column:name;type:varchar(255);not null;comment:展示名称"`
	Website         string         `gorm:"column:website;type:varchar(512);comment:历史原始网址"`
	LinkedInSlug    *string        `gorm:"column:linkedin_slug;type:varchar(128);index;comment:LinkedIn公司slug"`
	CrunchbaseSlug  *string        `gorm:"column:crunchbase_slug;type:varchar(128);index;comment:Crunchbase组织slug"`
	Sectors         datatypes.JSON `gorm:"column:sectors;type:jsonb;not null;comment:行业列表"`
	Stage           *int           `gorm:"column:stage;type:int;comment:融资阶段序号，NULL为未知"`
	GodTotal        float64        `gorm:"column:god_total;type:numeric(6,2);default:0;comment:GOD总分"`
	GodTeam         float64        `gorm:"column:god_team;type:numeric(6,2);default:0"`
	GodTraction     float64        `gorm:"column:god_traction;type:numeric(6,2);default:0"`
	GodMarket       float64        `gorm:"column:god_market;type:numeric(6,2);default:0"`
	GodProduct      float64        `gorm:"column:god_product;type:numeric(6,2);default:0"`
	GodVision       float64        `gorm:"column:god_vision;type:numeric(6,2);default:0"`
	Signals         datatypes.JSON `gorm:"column:signals;type:jsonb;comment:富化信号标签"`
	SignalScore     float64        `gorm:"column:signal_score;type:numeric(5,2);default:0;comment:信号分 0-10"`
	SignalDelta7d   float64        `gorm:"column:signal_delta_7d;type:numeric(5,2);default:0;comment:7日信号变化"`
	PerceptionScore float64        `gorm:"column:perception_score;type:numeric(6,2);default:0;comment:市场感知分 0-100"`
	Status          StartupStatus  `gorm:"column:status;type:varchar(16);default:approved;comment:状态"`
	EnrichedAt      *time.Time     `gorm:"column:enriched_at;type:timestamptz;comment:最近一次富化时间"`
	EnrichSweeps    int            `gorm:"column:enrich_sweeps;type:int;not null;default:0;comment:定时补投enrich次数"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamptz;default:now()"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;type:timestamptz;default:now()"`
}

func (Startup) TableName() string { return "startups" }

// GodScore GOD 分项，各项 0–100
type GodScore struct {
	Total    float64 `json:"total"`
	Team     float64 `json:"team"`
	Traction float64 `json:"traction"`
	Market   float64 `json:"market"`
	Product  float64 `json:"product"`
	Vision   float64 `json:"vision"`
}

// UnmarshalJSON 兼容富化服务返回纯数字（仅总分）或对象两种形式
func (g *GodScore) UnmarshalJSON(data []byte) error {
	var total float64
	if err := json.Unmarshal(data, &total); err == nil {
		*g = GodScore{Total: total}
		return nil
	}
	type alias GodScore
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*g = GodScore(a)
	return nil
}

// GodScore 组装分项
func (s *Startup) GodScore() GodScore {
	return GodScore{
		Total:    s.GodTotal,
		Team:     s.GodTeam,
		Traction: s.GodTraction,
		Market:   s.GodMarket,
		Product:  s.GodProduct,
		Vision:   s.GodVision,
	}
}

// SetGodScore 覆盖分项
func (s *Startup) SetGodScore(g GodScore) {
	s.GodTotal = g.Total
	s.GodTeam = g.Team
	s.GodTraction = g.Traction
	s.GodMarket = g.Market
	s.GodProduct = g.Product
	s.GodVision = g.Vision
}

// SectorList 解析 sectors 列
func (s *Startup) SectorList() []string {
	return decodeStrings(s.Sectors)
}

// SignalLabels 解析 signals 列
func (s *Startup) SignalLabels() []string {
	return decodeStrings(s.Signals)
}

// StageName 阶段序号对应的阶梯名称，越界时为空
func (s *Startup) StageName() string {
	if s.Stage == nil || *s.Stage < 0 || *s.Stage >= len(StageLadder) {
		return ""
	}
	return StageLadder[*s.Stage]
}

// StageIndex 阶段名称 → 阶梯下标，支持 "Pre-Seed" / "series_a" 等写法；未知返回 -1
func StageIndex(stage string) int {
	norm := NormalizeStage(stage)
	for i, s := range StageLadder {
		if s == norm {
			return i
		}
	}
	return -1
}

// StageOf 阶段名称 → 阶梯下标指针；未知阶段返回 nil
func StageOf(stage string) *int {
	idx := StageIndex(stage)
	if idx < 0 {
		return nil
	}
	return &idx
}

// NormalizeStage 统一大小写与分隔符："Pre-Seed" → "preseed"，"Series_A" → "series a"
func NormalizeStage(stage string) string {
	s := strings.ToLower(strings.TrimSpace(stage))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "pre seed" {
		return "preseed"
	}
	if strings.HasPrefix(s, "series") && !strings.HasPrefix(s, "series ") {
		s = "series " + strings.TrimPrefix(s, "series")
	}
	return s
}

// EncodeStrings 序列化字符串列表为 JSON 列
func EncodeStrings(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return b
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
