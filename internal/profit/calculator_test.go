package profit

import (
	"testing"
	"time"

	"github.com/tip-next/internal/ordersync/platform"

	"github.com/shopspring/decimal"
)

func mustParseTime(t *testing.T, raw string) *time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.Local)
	if err != nil {
		t.Fatalf("parse time failed: %v", err)
	}
	return &parsed
}

func TestCalculateBreakdown(t *testing.T) {
	calc := NewCalculator(Rule{
		RuleID:             "default",
		BaseDeductionRate:  0.10,
		PlatformProfitRate: 0.05,
		UserShareRate:      1.0,
	}, nil)

	orderTime := mustParseTime(t, "2025-08-01 12:00:00")
	breakdown := calc.Calculate(platform.UnionDTK, platform.Taobao, orderTime, decimal.NewFromInt(100))

	if got := breakdown.UserEstimateFee.String(); got != "85.00" {
		t.Fatalf("user estimate fee want 85.00 got %s", got)
	}
	if got := breakdown.BaseDeductionFee.String(); got != "10.00" {
		t.Fatalf("base deduction fee want 10.00 got %s", got)
	}
	if got := breakdown.PlatformProfitFee.String(); got != "5.00" {
		t.Fatalf("platform profit fee want 5.00 got %s", got)
	}
	if got := breakdown.GrossCommission.String(); got != "100.00" {
		t.Fatalf("gross commission want 100.00 got %s", got)
	}
}

func TestCalculateRoundHalfUp(t *testing.T) {
	calc := NewCalculator(Rule{
		RuleID:        "default",
		UserShareRate: 1.0,
	}, nil)

	// 1.005 应四舍五入为 1.01
	breakdown := calc.Calculate(platform.UnionDTK, platform.Taobao, nil,
		decimal.RequireFromString("1.005"))
	if got := breakdown.UserEstimateFee.String(); got != "1.01" {
		t.Fatalf("rounded fee want 1.01 got %s", got)
	}
}

func TestChooseRuleLatestEffective(t *testing.T) {
	early := mustParseTime(t, "2025-01-01 00:00:00")
	late := mustParseTime(t, "2025-06-01 00:00:00")
	future := mustParseTime(t, "2030-01-01 00:00:00")

	calc := NewCalculator(Rule{
		RuleID:             "default",
		PlatformProfitRate: 0.50,
		UserShareRate:      1.0,
	}, []Rule{
		{
			RuleID:             "v1",
			Union:              platform.UnionDTK,
			Ecommerce:          platform.Taobao,
			EffectiveFrom:      early,
			PlatformProfitRate: 0.10,
			UserShareRate:      1.0,
		},
		{
			RuleID:             "v2",
			Union:              platform.UnionDTK,
			Ecommerce:          platform.Taobao,
			EffectiveFrom:      late,
			PlatformProfitRate: 0.20,
			UserShareRate:      1.0,
		},
		{
			RuleID:             "v3",
			Union:              platform.UnionDTK,
			Ecommerce:          platform.Taobao,
			EffectiveFrom:      future,
			PlatformProfitRate: 0.30,
			UserShareRate:      1.0,
		},
	})

	// 介于 v1 与 v2 之间，应命中 v1
	mid := mustParseTime(t, "2025-03-01 00:00:00")
	breakdown := calc.Calculate(platform.UnionDTK, platform.Taobao, mid, decimal.NewFromInt(100))
	if breakdown.RuleID != "v1" {
		t.Fatalf("rule want v1 got %s", breakdown.RuleID)
	}

	// 晚于 v2，应命中 v2 而不是未来的 v3
	after := mustParseTime(t, "2025-08-01 00:00:00")
	breakdown = calc.Calculate(platform.UnionDTK, platform.Taobao, after, decimal.NewFromInt(100))
	if breakdown.RuleID != "v2" {
		t.Fatalf("rule want v2 got %s", breakdown.RuleID)
	}

	// 无匹配作用域回退默认规则
	breakdown = calc.Calculate(platform.UnionZTK, platform.JD, after, decimal.NewFromInt(100))
	if breakdown.RuleID != "default" {
		t.Fatalf("rule want default got %s", breakdown.RuleID)
	}
}

func TestCalculateClampsRates(t *testing.T) {
	calc := NewCalculator(Rule{
		RuleID:             "broken",
		BaseDeductionRate:  -0.5,
		PlatformProfitRate: 2.0,
		UserShareRate:      1.5,
	}, nil)

	breakdown := calc.Calculate(platform.UnionDTK, platform.Taobao, nil, decimal.NewFromInt(100))
	if breakdown.BaseDeductionRate != 0 {
		t.Fatalf("base deduction rate want 0 got %v", breakdown.BaseDeductionRate)
	}
	if breakdown.PlatformProfitRate != 1 {
		t.Fatalf("platform profit rate want 1 got %v", breakdown.PlatformProfitRate)
	}
	// 净额池 1-0-1=0，用户可得为 0
	if got := breakdown.UserEstimateFee.String(); got != "0.00" {
		t.Fatalf("user estimate fee want 0.00 got %s", got)
	}
}
