package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tip-next/internal/logger"
)

// LoaderFunc 首页缓存回源函数
type LoaderFunc func(ctx context.Context) (json.RawMessage, error)

// FirstPage 首页列表缓存（全用户共享，只缓存第一页）
//
// Redis 可用时双写 Redis 与本地内存，Redis 不可用时退化为纯内存。
// 空载荷不允许写入缓存：首次回源失败或空列表不污染缓存，
// 命中到空值按 miss 处理继续回源。
type FirstPage struct {
	key    string
	ttl    time.Duration
	loader LoaderFunc

	mu        sync.Mutex
	value     json.RawMessage
	fetchedAt time.Time
}

// NewFirstPage 创建首页缓存组件
func NewFirstPage(key string, ttl time.Duration, loader LoaderFunc) *FirstPage {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &FirstPage{
		key:    key,
		ttl:    ttl,
		loader: loader,
	}
}

// GetOrRefresh 取缓存值，过期或为空时回源刷新
//
// 回源失败时返回旧值兜底（仅当旧值非空）。
func (c *FirstPage) GetOrRefresh(ctx context.Context) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh() {
		return c.value, nil
	}

	if Enabled() {
		var cached json.RawMessage
		hit, err := GetJSON(ctx, c.key, &cached)
		if err != nil {
			logger.Warnw("first_page_cache_redis_get_failed", "key", c.key, "error", err)
		}
		if hit && !isEmptyPayload(cached) {
			c.value = cached
			c.fetchedAt = time.Now()
			return cached, nil
		}
	}

	return c.refreshLocked(ctx)
}

// Refresh 强制回源刷新
//
// 周期任务提前于 TTL 调用，理论上缓存永远有值。
func (c *FirstPage) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.refreshLocked(ctx)
	return err
}

// TTL 缓存有效期
func (c *FirstPage) TTL() time.Duration {
	return c.ttl
}

func (c *FirstPage) fresh() bool {
	return !isEmptyPayload(c.value) && time.Since(c.fetchedAt) < c.ttl
}

func (c *FirstPage) refreshLocked(ctx context.Context) (json.RawMessage, error) {
	payload, err := c.loader(ctx)
	if err != nil || isEmptyPayload(payload) {
		if err != nil {
			logger.Warnw("first_page_cache_refresh_failed", "key", c.key, "error", err)
		}
		if !isEmptyPayload(c.value) {
			return c.value, nil
		}
		return payload, err
	}

	c.value = payload
	c.fetchedAt = time.Now()
	if Enabled() {
		if err := SetJSON(ctx, c.key, payload, c.ttl); err != nil {
			logger.Warnw("first_page_cache_redis_set_failed", "key", c.key, "error", err)
		}
	}
	return payload, nil
}

// isEmptyPayload 判断载荷是否等效为空：nil、空 JSON、或 list 字段为空数组
func isEmptyPayload(payload json.RawMessage) bool {
	if len(payload) == 0 {
		return true
	}
	var probe struct {
		List []json.RawMessage `json:"list"`
		Data *struct {
			List []json.RawMessage `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return true
	}
	if probe.Data != nil {
		return len(probe.Data.List) == 0
	}
	return len(probe.List) == 0
}
