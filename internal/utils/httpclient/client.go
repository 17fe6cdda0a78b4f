// Package httpclient 协作方调用共用的 http.Client：鉴权头、请求ID、耗时日志
package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ugobe007/pythh-sub016/internal/config"
)

const (
	defaultTimeout = 30 * time.Second
	// RequestIDHeader 每次出站请求携带，协作方日志据此关联
	RequestIDHeader = "X-Request-ID"
	userAgent       = "pythh-resolver/1.0"
)

// New 按协作方配置构建客户端。gzip 交给 net/http 透明解压，不手动声明 Accept-Encoding。
func New(cfg *config.CollaboratorConfig, logger *logrus.Logger) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = 16
	base.IdleConnTimeout = 30 * time.Second
	base.TLSHandshakeTimeout = 10 * time.Second
	if proxy := proxyFunc(cfg.Proxy, logger); proxy != nil {
		base.Proxy = proxy
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &collaboratorTransport{
			next:   base,
			token:  cfg.AuthToken,
			logger: logger,
		},
	}
}

// proxyFunc 未配置时返回 nil（沿用环境变量代理）；地址无效只告警
func proxyFunc(raw string, logger *logrus.Logger) func(*http.Request) (*url.URL, error) {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		logger.WithError(err).WithField("proxy", raw).Warn("代理地址无效，忽略")
		return nil
	}
	logger.WithField("proxy", u.Redacted()).Info("协作方客户端已配置代理")
	return http.ProxyURL(u)
}

type collaboratorTransport struct {
	next   http.RoundTripper
	token  string
	logger *logrus.Logger
}

func (t *collaboratorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip 不得修改调用方的请求
	out := req.Clone(req.Context())
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if t.token != "" && out.Header.Get("Authorization") == "" {
		out.Header.Set("Authorization", "Bearer "+t.token)
	}
	if out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(out)
	entry := t.logger.WithFields(logrus.Fields{
		"method":     out.Method,
		"host":       out.URL.Host,
		"path":       out.URL.Path,
		"request_id": out.Header.Get(RequestIDHeader),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("协作方请求失败")
		return nil, err
	}
	entry.WithField("status", resp.StatusCode).Debug("协作方请求完成")
	return resp, nil
}
