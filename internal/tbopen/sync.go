package tbopen

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/constants"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/ordersync/platform"
	"github.com/tip-next/internal/repository"
)

const (
	defaultMaxWindowMinutes = 20
	defaultPageSize         = 100
	// 翻页保险丝，游标异常时防止死循环
	maxOrderPages = 5000

	refundStatusContent = "本单发生退款，佣金重新计算中"
)

// OrderUpserter 订单落库接口（由 service.OrderService 实现）
type OrderUpserter interface {
	UpsertOrders(orders []models.Order) (int, error)
}

// OrderSyncService 淘宝订单直连同步
//
// 订单明细接口限制单次查询时间窗，长窗口递归切分成
// 不超过 maxWindowMinutes 的小窗口逐个执行。
type OrderSyncService struct {
	client           *Client
	orders           OrderUpserter
	refunds          repository.RefundRepository
	maxWindowMinutes int
	pageSize         int
	fieldsCsv        string
	pageDelay        time.Duration
}

// NewOrderSyncService 创建淘宝直连同步服务
func NewOrderSyncService(client *Client, orders OrderUpserter, refunds repository.RefundRepository, cfg config.TbConfig) *OrderSyncService {
	maxWindow := cfg.MaxWindowMinutes
	if maxWindow <= 0 {
		maxWindow = defaultMaxWindowMinutes
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	return &OrderSyncService{
		client:           client,
		orders:           orders,
		refunds:          refunds,
		maxWindowMinutes: maxWindow,
		pageSize:         pageSize,
		fieldsCsv:        cfg.Fields,
		pageDelay:        time.Duration(cfg.PageDelayMs) * time.Millisecond,
	}
}

// SyncRange 同步时间窗口内的淘宝订单，返回落库条数
//
// orderScene 口径：1 所有订单，2 渠道订单，3 会员运营订单。
func (s *OrderSyncService) SyncRange(ctx context.Context, start, end time.Time, orderScene int64, syncType SyncType) int {
	if !start.Before(end) {
		return 0
	}
	if syncType == "" {
		syncType = SyncTypeDay
	}

	// 长窗口切分：避免触发接口时间窗限制
	window := time.Duration(s.maxWindowMinutes) * time.Minute
	if end.Sub(start) > window {
		total := 0
		cursor := start
		for cursor.Before(end) {
			next := cursor.Add(window)
			if next.After(end) {
				next = end
			}
			total += s.SyncRange(ctx, cursor, next, orderScene, syncType)
			cursor = next
		}
		return total
	}

	startStr := start.Format(timeLayout)
	endStr := end.Format(timeLayout)

	total := 0
	pageNo := 1
	positionIndex := ""

	for {
		if err := ctx.Err(); err != nil {
			return total
		}
		resp, err := s.callOrderDetails(ctx, startStr, endStr, orderScene, pageNo, positionIndex, syncType)
		if err != nil {
			logger.Errorw("tb_order_sync_call_failed",
				"start", startStr, "end", endStr, "page_no", pageNo, "error", err)
			break
		}

		page := s.parsePage(resp)
		if len(page.orders) > 0 {
			count, err := s.orders.UpsertOrders(page.orders)
			if err != nil {
				logger.Errorw("tb_order_sync_upsert_failed", "batch_size", len(page.orders), "error", err)
			} else {
				total += count
			}
		}

		if !page.hasNext {
			break
		}
		positionIndex = page.positionIndex
		pageNo++
		if pageNo > maxOrderPages {
			logger.Warnw("tb_order_sync_page_ceiling", "start", startStr, "end", endStr)
			break
		}
		if s.pageDelay > 0 {
			time.Sleep(s.pageDelay)
		}
	}
	return total
}

func (s *OrderSyncService) callOrderDetails(ctx context.Context, start, end string, orderScene int64, pageNo int, positionIndex string, syncType SyncType) (map[string]interface{}, error) {
	params := map[string]string{
		"start_time": start,
		"end_time":   end,
		"query_type": strconv.Itoa(syncType.QueryType()),
		"page_no":    strconv.Itoa(pageNo),
		"page_size":  strconv.Itoa(s.pageSize),
		"fields":     s.fieldsCsv,
	}
	if orderScene > 0 {
		params["order_scene"] = strconv.FormatInt(orderScene, 10)
	}
	if positionIndex != "" {
		params["position_index"] = positionIndex
	}
	return s.client.OrderDetailsGet(ctx, params)
}

type tbPage struct {
	orders        []models.Order
	hasNext       bool
	positionIndex string
}

// parsePage 解析 tbk_order_details_get_response -> data -> results -> publisher_order_dto
func (s *OrderSyncService) parsePage(resp map[string]interface{}) tbPage {
	root, ok := resp["tbk_order_details_get_response"].(map[string]interface{})
	if !ok {
		root = resp
	}
	data, ok := root["data"].(map[string]interface{})
	if !ok {
		data, _ = root["result"].(map[string]interface{})
	}

	var page tbPage
	if data == nil {
		return page
	}
	page.hasNext, _ = data["has_next"].(bool)
	page.positionIndex = ordersync.FirstNonBlank(data, "position_index")

	var list []interface{}
	if results, ok := data["results"].(map[string]interface{}); ok {
		list, _ = results["publisher_order_dto"].([]interface{})
	}
	if list == nil {
		list, _ = data["publisher_order_dto"].([]interface{})
	}

	for _, item := range list {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if order := s.mapOrder(raw); order != nil {
			page.orders = append(page.orders, *order)
		}
	}
	return page
}

// mapOrder 直连订单映射
//
// 与联盟侧 Mapper 不同：分佣走本地折扣时间表而非规则计算器，
// refund_tag=1 时同时落退款证据链。
func (s *OrderSyncService) mapOrder(raw map[string]interface{}) *models.Order {
	tradeID := ordersync.FirstNonBlank(raw, "trade_id", "tradeId")
	if tradeID == "" {
		return nil
	}

	payTime := ordersync.ParseTime(ordersync.FirstNonBlank(raw, "tk_paid_time", "tkPaidTime"))
	earnTime := ordersync.ParseTime(ordersync.FirstNonBlank(raw, "tk_earning_time", "tkEarningTime"))
	modifyTime := ordersync.ParseTime(ordersync.FirstNonBlank(raw, "tk_modified_time", "tkModifiedTime"))

	// 3 结算，12 付款，13 失效，14 确认收货
	var tkStatus *int
	if v, ok := ordersync.FirstInt(raw, "tk_status", "tkStatus"); ok {
		n := int(v)
		tkStatus = &n
	}
	status := constants.OrderStatusPaid
	if tkStatus != nil {
		switch *tkStatus {
		case 3:
			status = constants.OrderStatusSettled
		case 13:
			status = constants.OrderStatusInvalid
		}
	}

	var relationID, specialID, adzoneID *int64
	if v, ok := ordersync.FirstInt(raw, "relation_id", "relationId"); ok {
		relationID = &v
	}
	if v, ok := ordersync.FirstInt(raw, "special_id", "specialId"); ok {
		specialID = &v
	}
	if v, ok := ordersync.FirstInt(raw, "adzone_id", "adzoneId"); ok {
		adzoneID = &v
	}

	// 折扣比例按入账当下时间取表，不按订单支付时间
	calc := CalculateCommission(
		ordersync.FirstNonBlank(raw, "pub_share_fee", "pubShareFee"),
		ordersync.FirstNonBlank(raw, "pub_share_pre_fee", "pubSharePreFee"),
		time.Now(),
	)

	// refund_tag：0 非维权，1 维权订单
	refundStatus := constants.RefundStatusNone
	if v, ok := ordersync.FirstInt(raw, "refund_tag", "refundTag"); ok && v == 1 {
		refundStatus = constants.RefundStatusClaiming
	}

	paidAmount, _ := ordersync.FirstPositiveFloat(raw, "pay_price", "payPrice", "alipay_total_price")
	orderAmount, _ := ordersync.FirstPositiveFloat(raw, "alipay_total_price", "alipayTotalPrice")

	order := &models.Order{
		OrderKey:        "TB_OPEN_" + tradeID,
		ExternalTradeID: tradeID,
		UnionPlatform:   string(platform.UnionTbOpen), // 同步来源标记，非联盟平台
		PlatformNo:      platform.Taobao.No,
		PlatformName:    platform.Taobao.Name,
		OrderTitle:      ordersync.FirstNonBlank(raw, "item_title", "itemTitle"),
		Img:             ordersync.FirstNonBlank(raw, "item_img", "itemImg"),

		RelationID: relationID,
		SpecialID:  specialID,
		AdzoneID:   adzoneID,

		OrderAmount: models.NewMoneyFromFloat(orderAmount),
		PaidAmount:  models.NewMoneyFromFloat(paidAmount),

		GrossCommission: calc.GrossCommission,
		UserEstimateFee: calc.ShareFee,
		OrderDiscount:   calc.OrderDiscount,

		Status:       status,
		RealStatus:   tkStatus,
		RefundStatus: refundStatus,

		PayTime:    payTime,
		EarnTime:   earnTime,
		ModifyTime: modifyTime,
	}

	// sid 兼容口径：优先 relationId，其次 specialId
	if relationID != nil {
		order.Sid = strconv.FormatInt(*relationID, 10)
	} else if specialID != nil {
		order.Sid = strconv.FormatInt(*specialID, 10)
	}

	if refundStatus == constants.RefundStatusClaiming {
		order.StatusContent = refundStatusContent
		s.saveRefundEvidence(tradeID, order.OrderKey, raw)
	}

	// 预期回款：结算时间次月 20 日
	if earnTime != nil {
		bucket := time.Date(earnTime.Year(), earnTime.Month()+1, 20, 0, 0, 0, 0, earnTime.Location())
		order.PayMonth = bucket.Format("20060102")
		order.EstimateDate = bucket.Format("2006-01-02")
	}
	return order
}

// saveRefundEvidence 保存退款原始报文做证据链，失败只记日志不阻塞同步
func (s *OrderSyncService) saveRefundEvidence(tradeID, orderKey string, raw map[string]interface{}) {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		logger.Warnw("tb_refund_evidence_marshal_failed", "trade_id", tradeID, "error", err)
		return
	}
	refund := &models.OrderRefund{
		TradeID:  tradeID,
		OrderKey: orderKey,
		RawJSON:  string(rawJSON),
	}
	if err := s.refunds.Upsert(refund); err != nil {
		logger.Warnw("tb_refund_evidence_upsert_failed", "trade_id", tradeID, "error", err)
	}
}
