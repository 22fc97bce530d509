package taobao

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tip-next/internal/constants"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/ordersync/platform"
	"github.com/tip-next/internal/profit"
)

// Mapper 淘宝订单映射器
//
// 输入是联盟平台的原始订单 JSON，字段命名差异大（驼峰/下划线混用），
// 全程多键兜底取值，强容错。
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) EcommercePlatform() platform.EcommercePlatform {
	return platform.Taobao
}

// MapToOrder 原始订单映射为本站订单
//
// 三方订单号缺失时返回 nil：没有幂等身份的记录不允许落库。
func (m *Mapper) MapToOrder(raw ordersync.RawOrder, calc *profit.Calculator) *models.Order {
	obj := raw.Raw
	if obj == nil {
		return nil
	}

	tradeID := ordersync.FirstNonBlank(obj,
		"tradeId", "trade_id", "orderId", "order_id", "dsOrderSn", "ds_order_sn")
	if tradeID == "" {
		logger.Warnw("tb_order_skip_missing_trade_id", "union", string(raw.Union))
		return nil
	}
	orderKey := string(raw.Union) + "_" + tradeID

	title := ordersync.FirstNonBlank(obj,
		"itemTitle", "title", "orderTitle", "order_title", "goodsTitle", "goods_title")
	img := ordersync.FirstNonBlank(obj,
		"itemImg", "img", "mainPic", "main_pic", "pictUrl", "pict_url")
	sid := ordersync.FirstNonBlank(obj,
		"sid", "specialId", "special_id", "relationId", "relation_id", "unionId", "union_id")

	paidAmount, _ := ordersync.FirstPositiveFloat(obj,
		"payPrice", "pay_price", "alipayTotalPrice", "alipay_total_price", "paidAmount")
	orderAmount, _ := ordersync.FirstPositiveFloat(obj,
		"orderPrice", "order_price", "totalPrice", "total_price")

	// 佣金比例是百分比口径（10.5 表示 10.5%），仅存储展示，不参与净额计算
	var shareRate *float64
	if rate, ok := ordersync.FirstPositiveFloat(obj,
		"commissionRate", "commission_rate", "tkRate", "tk_rate", "shareRate", "share_rate"); ok {
		shareRate = &rate
	}

	// 佣金基数：联盟返回的可分配金额口径
	grossCommission, _ := ordersync.FirstPositiveFloat(obj,
		"pubShareFee", "pub_share_fee",
		"pubSharePreFee", "pub_share_pre_fee",
		"commission", "estimateAmount", "estimate_amount")

	payTime := ordersync.ParseTime(ordersync.FirstNonBlank(obj,
		"tkPaidTime", "payTime", "pay_time", "paidTime"))

	// 淘系状态码：12 付款，14 确认收货(未结算)，3 结算成功，13 失效
	var tkStatus *int
	if v, ok := ordersync.FirstInt(obj, "tkStatus", "tk_status", "status"); ok {
		n := int(v)
		tkStatus = &n
	}
	status := mapStatus(tkStatus)

	statusContent := ordersync.FirstNonBlank(obj, "statusContent", "status_content")
	if statusContent == "" {
		statusContent = statusText(tkStatus)
	}

	breakdown := calc.Calculate(raw.Union, platform.Taobao, payTime,
		decimal.NewFromFloat(grossCommission))

	return &models.Order{
		OrderKey:        orderKey,
		ExternalTradeID: tradeID,
		UnionPlatform:   string(raw.Union),
		PlatformNo:      platform.Taobao.No,
		PlatformName:    platform.Taobao.Name,
		OrderTitle:      title,
		Img:             img,
		Sid:             sid,

		OrderAmount: models.NewMoneyFromFloat(orderAmount),
		PaidAmount:  models.NewMoneyFromFloat(paidAmount),
		ShareRate:   shareRate,

		GrossCommission:    breakdown.GrossCommission,
		UserEstimateFee:    breakdown.UserEstimateFee,
		BaseDeductionRate:  breakdown.BaseDeductionRate,
		BaseDeductionFee:   breakdown.BaseDeductionFee,
		PlatformProfitRate: breakdown.PlatformProfitRate,
		PlatformProfitFee:  breakdown.PlatformProfitFee,
		UserShareRate:      breakdown.UserShareRate,
		// 总扣点（固定扣点 + 平台盈利），解释展示口径
		OrderDiscount: breakdown.BaseDeductionRate + breakdown.PlatformProfitRate,

		Status:        status,
		RealStatus:    tkStatus,
		StatusContent: statusContent,
		PayTime:       payTime,
	}
}

func mapStatus(tkStatus *int) int8 {
	if tkStatus == nil {
		return constants.OrderStatusPaid
	}
	switch *tkStatus {
	case 3:
		return constants.OrderStatusSettled
	case 13:
		return constants.OrderStatusInvalid
	default:
		return constants.OrderStatusPaid
	}
}

func statusText(tkStatus *int) string {
	if tkStatus == nil {
		return "已支付"
	}
	switch *tkStatus {
	case 12:
		return "已付款"
	case 14:
		return "确认收货"
	case 3:
		return "已结算"
	case 13:
		return "已失效"
	default:
		return fmt.Sprintf("未知状态(%d)", *tkStatus)
	}
}
