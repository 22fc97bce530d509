package tbopen

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/tip-next/internal/constants"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/repository"
)

// 退款报表翻页保险丝
const maxRefundPages = 2000

// RefundSyncService 淘宝退款补偿同步
//
// 关系退款报表维度数据，用途有二：更新订单退款状态为已扣回，
// 落 order_refunds 作证据链。字段跨商家权限有差异，尽量解析失败不阻塞。
type RefundSyncService struct {
	client  *Client
	orders  repository.OrderRepository
	refunds repository.RefundRepository
}

// NewRefundSyncService 创建退款补偿同步服务
func NewRefundSyncService(client *Client, orders repository.OrderRepository, refunds repository.RefundRepository) *RefundSyncService {
	return &RefundSyncService{
		client:  client,
		orders:  orders,
		refunds: refunds,
	}
}

// SyncByStartTime 从指定日期起拉取退款报表，返回处理条数
//
// bizType 口径：1 常规渠道，2 会员运营。
func (s *RefundSyncService) SyncByStartTime(ctx context.Context, startTime string, bizType int64) int {
	total := 0
	page := int64(1)

	for {
		if err := ctx.Err(); err != nil {
			return total
		}
		resp, err := s.callRefund(ctx, startTime, bizType, page)
		if err != nil {
			logger.Errorw("tb_refund_sync_call_failed",
				"start_time", startTime, "biz_type", bizType, "page_no", page, "error", err)
			break
		}

		results := extractRefundResults(resp)
		if len(results) == 0 {
			break
		}
		for _, item := range results {
			raw, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			s.handleOne(raw)
			total++
		}

		// 接口无显式 has_next，满页继续翻，否则停止
		if len(results) < defaultPageSize {
			break
		}
		page++
		if page > maxRefundPages {
			logger.Warnw("tb_refund_sync_page_ceiling", "start_time", startTime)
			break
		}
	}
	return total
}

func (s *RefundSyncService) callRefund(ctx context.Context, startTime string, bizType, pageNo int64) (map[string]interface{}, error) {
	params := map[string]string{
		"search_option.page_size":   strconv.Itoa(defaultPageSize),
		"search_option.search_type": "1",
		"search_option.refund_type": "0",
		"search_option.start_time":  startTime,
		"search_option.page_no":     strconv.FormatInt(pageNo, 10),
		"search_option.biz_type":    strconv.FormatInt(bizType, 10),
	}
	return s.client.RelationRefund(ctx, params)
}

// extractRefundResults 兼容 tbk_relation_refund_response -> result -> data -> results 等多种包法
func extractRefundResults(resp map[string]interface{}) []interface{} {
	root, ok := resp["tbk_relation_refund_response"].(map[string]interface{})
	if !ok {
		root = resp
	}

	result, ok := root["result"].(map[string]interface{})
	if !ok {
		result, ok = root["rpc_result"].(map[string]interface{})
	}
	if !ok {
		result, _ = root["data"].(map[string]interface{})
	}

	var data map[string]interface{}
	if result != nil {
		data, ok = result["data"].(map[string]interface{})
		if !ok {
			data, _ = result["page_result"].(map[string]interface{})
		}
	}
	if data == nil {
		arr, _ := root["results"].([]interface{})
		return arr
	}

	switch results := data["results"].(type) {
	case []interface{}:
		return results
	case map[string]interface{}:
		arr, _ := results["result"].([]interface{})
		return arr
	default:
		return nil
	}
}

// handleOne 处理单条退款报表记录
func (s *RefundSyncService) handleOne(raw map[string]interface{}) {
	tradeID := ordersync.FirstNonBlank(raw, "tb_trade_id", "tbTradeId", "trade_id", "tradeId")
	if tradeID == "" {
		return
	}

	if rawJSON, err := json.Marshal(raw); err == nil {
		refund := &models.OrderRefund{
			TradeID:  tradeID,
			OrderKey: "TB_OPEN_" + tradeID,
			RawJSON:  string(rawJSON),
		}
		if err := s.refunds.Upsert(refund); err != nil {
			logger.Warnw("tb_refund_evidence_upsert_failed", "trade_id", tradeID, "error", err)
		}
	}

	// refund_status 2/3/4 表示退款成立；状态字段缺失时进了报表即视为成立
	var mapped int
	if v, ok := ordersync.FirstInt(raw, "refund_status", "refundStatus"); ok {
		if v != 2 && v != 3 && v != 4 {
			return
		}
		mapped = constants.RefundStatusConfirmed
	} else {
		mapped = constants.RefundStatusConfirmed
	}

	if err := s.orders.MarkRefundByTradeID(tradeID, mapped, refundStatusContent); err != nil {
		logger.Warnw("tb_refund_mark_failed", "trade_id", tradeID, "error", err)
	}
}
