package tbopen

import (
	"context"
	"strconv"

	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/repository"
)

// 处罚报表翻页保险丝
const maxPunishPages = 2000

// PunishSyncService 淘宝处罚/违规订单补偿同步
//
// 拉取处罚订单报表后对本地订单锁单并写违规原因，
// 锁单订单在对账时应入账金额强制归零。
// 接口权限跨 appKey 有差异，无权限时调用失败只记日志。
type PunishSyncService struct {
	client *Client
	orders repository.OrderRepository
}

// NewPunishSyncService 创建处罚补偿同步服务
func NewPunishSyncService(client *Client, orders repository.OrderRepository) *PunishSyncService {
	return &PunishSyncService{
		client: client,
		orders: orders,
	}
}

// SyncByStartTime 从指定时间起拉取处罚订单，返回锁单条数
func (s *PunishSyncService) SyncByStartTime(ctx context.Context, startTime string, pageSize int) int {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	total := 0
	page := 1

	for {
		if err := ctx.Err(); err != nil {
			return total
		}
		resp, err := s.callPunish(ctx, startTime, page, pageSize)
		if err != nil {
			logger.Errorw("tb_punish_sync_call_failed",
				"start_time", startTime, "page_no", page, "error", err)
			break
		}

		list := extractPunishResults(resp)
		if len(list) == 0 {
			break
		}
		for _, item := range list {
			raw, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if s.handleOne(raw) {
				total++
			}
		}

		if len(list) < pageSize {
			break
		}
		page++
		if page > maxPunishPages {
			logger.Warnw("tb_punish_sync_page_ceiling", "start_time", startTime)
			break
		}
	}
	return total
}

func (s *PunishSyncService) callPunish(ctx context.Context, startTime string, pageNo, pageSize int) (map[string]interface{}, error) {
	params := map[string]string{
		"page_no":    strconv.Itoa(pageNo),
		"page_size":  strconv.Itoa(pageSize),
		"start_time": startTime,
		"span":       "1",
	}
	return s.client.PunishOrderGet(ctx, params)
}

// extractPunishResults 兼容 tbk_sc_punish_order_get_response -> data/result/results 等多种包法
func extractPunishResults(resp map[string]interface{}) []interface{} {
	root, ok := resp["tbk_sc_punish_order_get_response"].(map[string]interface{})
	if !ok {
		root = resp
	}

	data, ok := root["data"].(map[string]interface{})
	if !ok {
		data, ok = root["result"].(map[string]interface{})
	}
	if !ok {
		data, _ = root["results"].(map[string]interface{})
	}
	if data == nil {
		arr, _ := root["results"].([]interface{})
		return arr
	}

	if arr, ok := data["results"].([]interface{}); ok {
		return arr
	}
	arr, _ := data["data"].([]interface{})
	return arr
}

// handleOne 对单条处罚记录锁单
func (s *PunishSyncService) handleOne(raw map[string]interface{}) bool {
	tradeID := ordersync.FirstNonBlank(raw, "tb_trade_id", "tbTradeId", "trade_id", "tradeId")
	if tradeID == "" {
		return false
	}

	violationType := ordersync.FirstNonBlank(raw, "violation_type", "violationType")
	punishStatus := ordersync.FirstNonBlank(raw, "punish_status", "punishStatus")
	reason := violationType
	if reason == "" {
		reason = "punish"
	}
	if punishStatus != "" {
		reason += ":" + punishStatus
	}

	if err := s.orders.MarkPunishedByTradeID(tradeID, reason); err != nil {
		logger.Warnw("tb_punish_mark_failed", "trade_id", tradeID, "error", err)
		return false
	}
	return true
}
