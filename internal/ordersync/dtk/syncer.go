package dtk

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/dtkapi"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/ordersync/platform"
)

const (
	defaultPageSize = 100
	// 翻页保险丝：单窗口最多 500 页，游标异常时防止死循环
	maxPages = 500
	// queryType=4 按订单更新时间查询，增量同步只关心变更
	queryTypeUpdateTime = "4"

	timeLayout = "2006-01-02 15:04:05"
)

// Syncer 大淘客订单拉取器
//
// 走大淘客 /api/tb-service/get-order-details 接口，
// position_index 游标翻页，逐页回调给协调器。
type Syncer struct {
	client    *dtkapi.Client
	pageSize  int
	pageDelay time.Duration
}

// NewSyncer 创建大淘客拉取器
func NewSyncer(client *dtkapi.Client, cfg config.DtkConfig) *Syncer {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	return &Syncer{
		client:    client,
		pageSize:  pageSize,
		pageDelay: time.Duration(cfg.PageDelayMs) * time.Millisecond,
	}
}

func (s *Syncer) UnionPlatform() platform.UnionPlatform {
	return platform.UnionDTK
}

// FetchBatches 拉取时间窗口内的订单并逐页回调
//
// has_next 为假或游标不再前进即停；单页失败直接返回错误，
// 已回调的页不回滚（落库按 order_key 幂等）。
func (s *Syncer) FetchBatches(ctx context.Context, startTime, endTime time.Time, onBatch ordersync.BatchFunc) error {
	positionIndex := ""
	pageNo := 1

	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := map[string]string{
			"startTime": startTime.Format(timeLayout),
			"endTime":   endTime.Format(timeLayout),
			"queryType": queryTypeUpdateTime,
			"pageSize":  strconv.Itoa(s.pageSize),
			"pageNo":    strconv.Itoa(pageNo),
		}
		if positionIndex != "" {
			params["positionIndex"] = positionIndex
		}
		data, err := s.client.DoMap(ctx, dtkapi.PathOrderDetails, params)
		if err != nil {
			return err
		}

		orders := extractOrders(data)
		if len(orders) > 0 {
			batch := make([]ordersync.RawOrder, 0, len(orders))
			for _, raw := range orders {
				batch = append(batch, ordersync.RawOrder{
					Union:     platform.UnionDTK,
					Ecommerce: detectPlatform(raw),
					Raw:       raw,
				})
			}
			onBatch(batch)
		}

		hasNext, _ := data["has_next"].(bool)
		nextIndex := ordersync.FirstNonBlank(data, "position_index", "positionIndex")
		if !hasNext || nextIndex == "" || nextIndex == positionIndex {
			return nil
		}
		positionIndex = nextIndex
		pageNo++
		if s.pageDelay > 0 {
			time.Sleep(s.pageDelay)
		}
	}
	logger.Warnw("dtk_sync_page_ceiling", "max_pages", maxPages)
	return nil
}

// extractOrders 从响应里取订单数组 data.results.publisher_order_dto
func extractOrders(data map[string]interface{}) []map[string]interface{} {
	results, ok := data["results"].(map[string]interface{})
	if !ok {
		return nil
	}
	list, ok := results["publisher_order_dto"].([]interface{})
	if !ok {
		return nil
	}
	orders := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if raw, ok := item.(map[string]interface{}); ok {
			orders = append(orders, raw)
		}
	}
	return orders
}

// detectPlatform 从订单类型文案识别电商平台
//
// 大淘客订单目前只覆盖淘系，order_type 文案含淘系关键字即认定淘宝，
// 其余标记未知由协调器丢弃。
func detectPlatform(raw map[string]interface{}) platform.EcommercePlatform {
	text := ordersync.FirstNonBlank(raw, "order_type", "orderType")
	if text == "" {
		text = ordersync.FirstNonBlank(raw, "subsidy_type", "subsidyType")
	}
	for _, keyword := range []string{"天猫", "淘宝", "聚划算", "如意淘"} {
		if strings.Contains(text, keyword) {
			return platform.Taobao
		}
	}
	return platform.Unknown
}
