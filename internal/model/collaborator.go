package model

// EnrichRequest 富化/打分服务请求
type EnrichRequest struct {
	URL       string `json:"url"`
	StartupID string `json:"startupId,omitempty"`
}

// EnrichResult 富化服务响应，只消费 godScore 与 inference 的固定子集
type EnrichResult struct {
	GodScore  *GodScore  `json:"godScore"`
	Inference *Inference `json:"inference"`
}

// Inference 富化推断结果；所有字段可缺省，缺省即不输出对应标签
type Inference struct {
	Sectors       []string `json:"sectors"`
	Stage         string   `json:"stage"`
	HasRevenue    *bool    `json:"has_revenue"`
	HasCustomers  *bool    `json:"has_customers"`
	IsLaunched    *bool    `json:"is_launched"`
	HasDemo       *bool    `json:"has_demo"`
	FundingAmount *float64 `json:"funding_amount"`
	TeamSignals   []string `json:"team_signals"`
}

// MatchGenRequest 匹配生成触发请求，fire-and-forget
type MatchGenRequest struct {
	StartupID string `json:"startupId"`
	Priority  string `json:"priority"`
}
