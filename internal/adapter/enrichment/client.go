package enrichment

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/adapter"
	"github.com/ugobe007/pythh-sub016/internal/config"
	"github.com/ugobe007/pythh-sub016/internal/interfaces"
	"github.com/ugobe007/pythh-sub016/internal/model"
	"github.com/ugobe007/pythh-sub016/internal/utils/httpclient"
)

// Client 富化/打分服务客户端。超时由协作方配置决定，核心不另设上限。
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *logrus.Logger
}

func NewClient(cfg *config.CollaboratorConfig, logger *logrus.Logger) interfaces.EnrichmentClient {
	return &Client{
		httpClient: httpclient.New(cfg, logger),
		endpoint:   adapter.Endpoint(cfg),
		logger:     logger,
	}
}

// Enrich POST {url, startupId?}，返回 {godScore, inference}
func (c *Client) Enrich(ctx context.Context, req *model.EnrichRequest) (*model.EnrichResult, error) {
	var out model.EnrichResult
	if err := adapter.PostJSON(ctx, c.httpClient, c.endpoint, req, &out); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"url":        req.URL,
		"startup_id": req.StartupID,
		"has_score":  out.GodScore != nil,
	}).Debug("富化服务返回")
	return &out, nil
}
