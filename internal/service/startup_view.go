package service

import (
	"time"

	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/viewmodel"
)

// StartupView 对外返回的初创公司信息（不直接暴露数据库行）
type StartupView struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Domain         string              `json:"domain"`
	Website        string              `json:"website,omitempty"`
	LinkedInSlug   string              `json:"linkedin_slug,omitempty"`
	CrunchbaseSlug string              `json:"crunchbase_slug,omitempty"`
	Sectors        []string            `json:"sectors"`
	Stage          string              `json:"stage,omitempty"`
	GodScore       model.GodScore      `json:"god_score"`
	Signals        []string            `json:"signals"`
	Status         model.StartupStatus `json:"status"`
	EnrichedAt     *time.Time          `json:"enriched_at,omitempty"`
}

func NewStartupView(s *model.Startup) *StartupView {
	if s == nil {
		return nil
	}
	v := &StartupView{
		ID:         s.ID,
		Name:       s.Name,
		Domain:     s.Domain,
		Website:    s.Website,
		Sectors:    s.SectorList(),
		Stage:      s.StageName(),
		GodScore:   s.GodScore(),
		Signals:    s.SignalLabels(),
		Status:     s.Status,
		EnrichedAt: s.EnrichedAt,
	}
	v.GodScore.Total = viewmodel.Round1(v.GodScore.Total)
	if s.LinkedInSlug != nil {
		v.LinkedInSlug = *s.LinkedInSlug
	}
	if s.CrunchbaseSlug != nil {
		v.CrunchbaseSlug = *s.CrunchbaseSlug
	}
	if v.Sectors == nil {
		v.Sectors = []string{}
	}
	if v.Signals == nil {
		v.Signals = []string{}
	}
	return v
}

// ResolutionView POST /api/resolve 响应
type ResolutionView struct {
	Startup    *StartupView `json:"startup"`
	Confidence Confidence   `json:"confidence"`
}

// View 转换为响应结构
func (r *Resolution) View() *ResolutionView {
	return &ResolutionView{Startup: NewStartupView(r.Startup), Confidence: r.Confidence}
}
