// Package tbopen 淘宝开放平台直连（不依赖官方 SDK）。
//
// 订单明细、退款报表、处罚订单三个接口共用一个签名网关客户端，
// 同步服务在此之上做分页编排与本地落库。
package tbopen

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/logger"
)

const (
	defaultGateway = "https://eco.taobao.com/router/rest"

	MethodOrderDetailsGet = "taobao.tbk.order.details.get"
	MethodRelationRefund  = "taobao.tbk.relation.refund"
	MethodPunishOrderGet  = "taobao.tbk.sc.punish.order.get"

	timeLayout = "2006-01-02 15:04:05"
)

var (
	ErrConfigInvalid   = errors.New("tbopen config invalid")
	ErrRequestFailed   = errors.New("tbopen request failed")
	ErrResponseInvalid = errors.New("tbopen response invalid")
	ErrAPIError        = errors.New("tbopen api error")
)

// Client 淘宝开放平台网关客户端
//
// 公共参数与签名统一在 Execute 补齐，业务参数由调用方传入。
// 签名口径：sign = MD5(secret + 按 key 字典序拼接 k+v + secret) 转大写。
type Client struct {
	gateway    string
	appKey     string
	appSecret  string
	sessionKey string
	http       *http.Client
}

// NewClient 创建淘宝开放平台客户端
func NewClient(cfg config.TbConfig) (*Client, error) {
	if strings.TrimSpace(cfg.AppKey) == "" || strings.TrimSpace(cfg.AppSecret) == "" {
		return nil, fmt.Errorf("%w: app_key/app_secret is required", ErrConfigInvalid)
	}
	gateway := strings.TrimSpace(cfg.GatewayURL)
	if gateway == "" {
		gateway = defaultGateway
	}
	timeout := time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		gateway:    gateway,
		appKey:     cfg.AppKey,
		appSecret:  cfg.AppSecret,
		sessionKey: cfg.SessionKey,
		http:       &http.Client{Timeout: timeout},
	}, nil
}

// Execute 调用指定 method 并解出响应 JSON
//
// 返回 error_response 时记日志并返回 ErrAPIError，
// 上层据此中止本轮翻页而不重试。
func (c *Client) Execute(ctx context.Context, method string, bizParams map[string]string) (map[string]interface{}, error) {
	if strings.TrimSpace(method) == "" {
		return nil, fmt.Errorf("%w: method is required", ErrConfigInvalid)
	}
	params := map[string]string{
		"method":      method,
		"app_key":     c.appKey,
		"format":      "json",
		"v":           "2.0",
		"sign_method": "md5",
		"timestamp":   time.Now().Format(timeLayout),
	}
	if c.sessionKey != "" {
		params["session"] = c.sessionKey
	}
	for k, v := range bizParams {
		if strings.TrimSpace(v) == "" {
			continue
		}
		params[k] = v
	}
	params["sign"] = signMD5(params, c.appSecret)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gateway, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	var parsed map[string]interface{}
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if errResp, ok := parsed["error_response"].(map[string]interface{}); ok {
		logger.Warnw("tbopen_api_error",
			"method", method,
			"code", errResp["code"],
			"sub_code", errResp["sub_code"],
			"msg", errResp["msg"],
			"sub_msg", errResp["sub_msg"],
		)
		return nil, fmt.Errorf("%w: method=%s", ErrAPIError, method)
	}
	return parsed, nil
}

// OrderDetailsGet taobao.tbk.order.details.get
func (c *Client) OrderDetailsGet(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	return c.Execute(ctx, MethodOrderDetailsGet, params)
}

// RelationRefund taobao.tbk.relation.refund
func (c *Client) RelationRefund(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	return c.Execute(ctx, MethodRelationRefund, params)
}

// PunishOrderGet taobao.tbk.sc.punish.order.get（权限可能受限）
func (c *Client) PunishOrderGet(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	return c.Execute(ctx, MethodPunishOrderGet, params)
}

func signMD5(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(secret)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}
	sb.WriteString(secret)

	sum := md5.Sum([]byte(sb.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
