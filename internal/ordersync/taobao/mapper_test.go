package taobao

import (
	"encoding/json"
	"testing"

	"github.com/tip-next/internal/constants"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/ordersync/platform"
	"github.com/tip-next/internal/profit"
)

func testCalculator() *profit.Calculator {
	return profit.NewCalculator(profit.Rule{
		RuleID:             "default",
		BaseDeductionRate:  0.10,
		PlatformProfitRate: 0.05,
		UserShareRate:      1.0,
	}, nil)
}

func rawOrder(obj map[string]interface{}) ordersync.RawOrder {
	return ordersync.RawOrder{
		Union:     platform.UnionDTK,
		Ecommerce: platform.Taobao,
		Raw:       obj,
	}
}

func TestMapToOrderBasic(t *testing.T) {
	mapper := NewMapper()
	order := mapper.MapToOrder(rawOrder(map[string]interface{}{
		"trade_id":      "38050391234567890",
		"itemTitle":     "测试商品",
		"pay_price":     json.Number("59.90"),
		"pub_share_fee": json.Number("100"),
		"tk_status":     json.Number("12"),
		"tk_paid_time":  "2025-08-01 10:00:00",
		"relation_id":   "123456",
	}), testCalculator())
	if order == nil {
		t.Fatal("order should not be nil")
	}

	if order.OrderKey != "DTK_38050391234567890" {
		t.Fatalf("order key want DTK_38050391234567890 got %s", order.OrderKey)
	}
	if order.ExternalTradeID != "38050391234567890" {
		t.Fatalf("trade id mismatch: %s", order.ExternalTradeID)
	}
	if order.PlatformNo != platform.Taobao.No {
		t.Fatalf("platform no want %d got %d", platform.Taobao.No, order.PlatformNo)
	}
	if order.Status != constants.OrderStatusPaid {
		t.Fatalf("status want paid got %d", order.Status)
	}
	if order.StatusContent != "已付款" {
		t.Fatalf("status content want 已付款 got %s", order.StatusContent)
	}
	if got := order.UserEstimateFee.String(); got != "85.00" {
		t.Fatalf("user estimate fee want 85.00 got %s", got)
	}
	if got := order.PaidAmount.String(); got != "59.90" {
		t.Fatalf("paid amount want 59.90 got %s", got)
	}
	if order.PayTime == nil {
		t.Fatal("pay time should be parsed")
	}
	if diff := order.OrderDiscount - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("order discount want 0.15 got %v", order.OrderDiscount)
	}
}

func TestMapToOrderStatusMapping(t *testing.T) {
	mapper := NewMapper()
	cases := []struct {
		tkStatus   string
		wantStatus int8
		wantText   string
	}{
		{"3", constants.OrderStatusSettled, "已结算"},
		{"13", constants.OrderStatusInvalid, "已失效"},
		{"14", constants.OrderStatusPaid, "确认收货"},
		{"99", constants.OrderStatusPaid, "未知状态(99)"},
	}
	for _, tc := range cases {
		order := mapper.MapToOrder(rawOrder(map[string]interface{}{
			"trade_id":  "1",
			"tk_status": json.Number(tc.tkStatus),
		}), testCalculator())
		if order == nil {
			t.Fatalf("tk_status=%s: order is nil", tc.tkStatus)
		}
		if order.Status != tc.wantStatus {
			t.Fatalf("tk_status=%s: status want %d got %d", tc.tkStatus, tc.wantStatus, order.Status)
		}
		if order.StatusContent != tc.wantText {
			t.Fatalf("tk_status=%s: content want %s got %s", tc.tkStatus, tc.wantText, order.StatusContent)
		}
	}
}

func TestMapToOrderMissingTradeID(t *testing.T) {
	mapper := NewMapper()
	order := mapper.MapToOrder(rawOrder(map[string]interface{}{
		"itemTitle": "无订单号",
	}), testCalculator())
	if order != nil {
		t.Fatal("missing trade id should return nil")
	}
	if mapper.MapToOrder(rawOrder(nil), testCalculator()) != nil {
		t.Fatal("nil raw should return nil")
	}
}

func TestMapToOrderCommissionFallback(t *testing.T) {
	mapper := NewMapper()
	// pub_share_fee 缺失时回退 pub_share_pre_fee
	order := mapper.MapToOrder(rawOrder(map[string]interface{}{
		"trade_id":          "2",
		"pub_share_pre_fee": json.Number("10"),
	}), testCalculator())
	if order == nil {
		t.Fatal("order should not be nil")
	}
	if got := order.GrossCommission.String(); got != "10.00" {
		t.Fatalf("gross commission want 10.00 got %s", got)
	}
}
