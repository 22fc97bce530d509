package dtkapi

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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tip-next/internal/config"
)

const (
	apiVersion = "v1.0.0"

	PathOrderDetails    = "/api/tb-service/get-order-details"
	PathGoodsList       = "/api/goods/get-goods-list"
	PathPullGoodsByTime = "/api/goods/pull-goods-by-time"
	PathStaleGoods      = "/api/goods/get-stale-goods-by-time"
)

var (
	ErrConfigInvalid   = errors.New("dtkapi config invalid")
	ErrRequestFailed   = errors.New("dtkapi request failed")
	ErrResponseInvalid = errors.New("dtkapi response invalid")
	ErrAPIError        = errors.New("dtkapi api error")
)

// Client 大淘客开放平台客户端
//
// 公共参数（appKey/version/nonce/timer/signRan）在 Do 里统一补齐，
// 调用方只传业务参数。
type Client struct {
	baseURL   string
	appKey    string
	appSecret string
	http      *http.Client
}

// Response 大淘客统一响应包
type Response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewClient 创建大淘客客户端
func NewClient(cfg config.DtkConfig) (*Client, error) {
	if strings.TrimSpace(cfg.AppKey) == "" || strings.TrimSpace(cfg.AppSecret) == "" {
		return nil, fmt.Errorf("%w: app_key/app_secret is required", ErrConfigInvalid)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://openapi.dataoke.com"
	}
	timeout := time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// Do 发起一次签名请求并解出 data 字段
//
// code 非 0 返回 ErrAPIError，错误信息带上平台 msg 方便排查。
func (c *Client) Do(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	query := make(map[string]string, len(params)+5)
	for k, v := range params {
		if strings.TrimSpace(v) == "" {
			continue
		}
		query[k] = v
	}
	query["appKey"] = c.appKey
	query["version"] = apiVersion
	query["nonce"] = nonce()
	query["timer"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	query["signRan"] = c.sign(query)

	endpoint := c.baseURL + path + "?" + encodeQuery(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
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

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("%w: code=%d msg=%s", ErrAPIError, envelope.Code, envelope.Msg)
	}
	return envelope.Data, nil
}

// DoMap 发起请求并把 data 解成通用 map
func (c *Client) DoMap(ctx context.Context, path string, params map[string]string) (map[string]interface{}, error) {
	data, err := c.Do(ctx, path, params)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	var result map[string]interface{}
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return result, nil
}

// sign 大淘客签名：appKey+timer+nonce 固定序拼接后接 key，MD5 转大写
func (c *Client) sign(params map[string]string) string {
	content := fmt.Sprintf("appKey=%s&timer=%s&nonce=%s&key=%s",
		params["appKey"], params["timer"], params["nonce"], c.appSecret)
	sum := md5.Sum([]byte(content))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// nonce 六位随机串，uuid 去连字符后截取
func nonce() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:6]
}

func encodeQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, params[k])
	}
	return values.Encode()
}
