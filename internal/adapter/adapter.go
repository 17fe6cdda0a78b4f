// Package adapter 外部协作方（富化服务、匹配生成服务）的HTTP适配器公共部分
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ugobe007/pythh-sub016/internal/config"
)

// maxErrorBody 错误响应最多读取的字节数
const maxErrorBody = 512

// StatusError 协作方返回非 2xx
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s 返回状态码 %d: %s", e.Endpoint, e.Code, e.Body)
}

// Endpoint 拼接 base_url 与 path
func Endpoint(cfg *config.CollaboratorConfig) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(cfg.Path, "/")
}

// PostJSON 发送 JSON 请求；out 为 nil 时丢弃响应体。鉴权头由 client 的 transport 注入。
func PostJSON(ctx context.Context, client *http.Client, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", endpoint, err)
	}
	return nil
}
