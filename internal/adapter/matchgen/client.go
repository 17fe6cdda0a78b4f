package matchgen

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

// Client 匹配生成服务客户端
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *logrus.Logger
}

func NewClient(cfg *config.CollaboratorConfig, logger *logrus.Logger) interfaces.MatchTrigger {
	return &Client{
		httpClient: httpclient.New(cfg, logger),
		endpoint:   adapter.Endpoint(cfg),
		logger:     logger,
	}
}

// TriggerMatches 只关心是否送达，响应体丢弃
func (c *Client) TriggerMatches(ctx context.Context, req *model.MatchGenRequest) error {
	return adapter.PostJSON(ctx, c.httpClient, c.endpoint, req, nil)
}
