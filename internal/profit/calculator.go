// Package profit 本站盈利/用户可得计算（配置驱动）。
//
// 把"平台盈利比率"从各同步器的 if/else 收敛到统一抽象：
// 按 (联盟平台, 电商平台, 生效时间) 选择规则，输出可落库的拆解字段。
// 规则表在启动时从配置加载后只读，保证同一输入在规则不变时结果可复现，
// 支持结算对账的回溯重算。
package profit

import (
	"math"
	"time"

	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync/platform"

	"github.com/shopspring/decimal"
)

// Rule 盈利/分成规则
//
// 口径约定：
//   - BaseDeductionRate：固定扣点（联盟服务费/固定成本，例如 0.1）
//   - PlatformProfitRate：本站平台盈利比例（可配置调整）
//   - UserShareRate：净额分给用户的比例（0.6 表示用户拿 60%）
type Rule struct {
	RuleID            string
	Union             platform.UnionPlatform
	Ecommerce         platform.EcommercePlatform
	EffectiveFrom     *time.Time // nil 表示无版本约束
	BaseDeductionRate float64
	PlatformProfitRate float64
	UserShareRate     float64
}

// Breakdown 盈利拆解结果（用于落库与展示）
type Breakdown struct {
	RuleID             string
	BaseDeductionRate  float64
	BaseDeductionFee   models.Money
	PlatformProfitRate float64
	PlatformProfitFee  models.Money
	UserShareRate      float64
	GrossCommission    models.Money
	UserEstimateFee    models.Money
}

// Calculator 盈利计算器
//
// 纯函数：输出只依赖入参与规则表，无副作用。
type Calculator struct {
	defaultRule Rule
	rules       []Rule
}

// NewCalculator 创建盈利计算器
func NewCalculator(defaultRule Rule, rules []Rule) *Calculator {
	if defaultRule.RuleID == "" {
		defaultRule.RuleID = "default"
	}
	return &Calculator{
		defaultRule: defaultRule,
		rules:       rules,
	}
}

// Calculate 按规则拆解佣金基数
//
// 净额池 = gross * (1 - 固定扣点 - 平台盈利)，
// 用户可得 = 净额池 * 用户分成比例，所有金额保留 2 位小数四舍五入。
func (c *Calculator) Calculate(
	union platform.UnionPlatform,
	ecommerce platform.EcommercePlatform,
	orderTime *time.Time,
	grossCommission decimal.Decimal,
) Breakdown {
	rule := c.chooseRule(union, ecommerce, orderTime)

	baseDeductionRate := clampRate(rule.BaseDeductionRate)
	platformProfitRate := clampRate(rule.PlatformProfitRate)
	userShareRate := clampRate(rule.UserShareRate)

	netPoolRate := clampRate(1.0 - baseDeductionRate - platformProfitRate)
	baseDeductionFee := grossCommission.Mul(decimal.NewFromFloat(baseDeductionRate))
	platformProfitFee := grossCommission.Mul(decimal.NewFromFloat(platformProfitRate))
	userEstimateFee := grossCommission.
		Mul(decimal.NewFromFloat(netPoolRate)).
		Mul(decimal.NewFromFloat(userShareRate))

	return Breakdown{
		RuleID:             rule.RuleID,
		BaseDeductionRate:  baseDeductionRate,
		BaseDeductionFee:   models.NewMoneyFromDecimal(baseDeductionFee),
		PlatformProfitRate: platformProfitRate,
		PlatformProfitFee:  models.NewMoneyFromDecimal(platformProfitFee),
		UserShareRate:      userShareRate,
		GrossCommission:    models.NewMoneyFromDecimal(grossCommission),
		UserEstimateFee:    models.NewMoneyFromDecimal(userEstimateFee),
	}
}

// chooseRule 选择 (union, ecommerce) 作用域下生效时间最新且不晚于订单时间的规则，
// 无匹配时回退到全局默认规则。
func (c *Calculator) chooseRule(
	union platform.UnionPlatform,
	ecommerce platform.EcommercePlatform,
	orderTime *time.Time,
) Rule {
	t := time.Now()
	if orderTime != nil {
		t = *orderTime
	}

	var matched *Rule
	for i := range c.rules {
		r := &c.rules[i]
		if r.Union != union || r.Ecommerce != ecommerce {
			continue
		}
		if r.EffectiveFrom != nil && r.EffectiveFrom.After(t) {
			continue
		}
		if matched == nil || effectiveFromOf(r).After(effectiveFromOf(matched)) {
			matched = r
		}
	}
	if matched != nil {
		return *matched
	}
	return c.defaultRule
}

func effectiveFromOf(r *Rule) time.Time {
	if r.EffectiveFrom == nil {
		return time.Time{}
	}
	return *r.EffectiveFrom
}

// clampRate 比率防御夹取：NaN/负数按 0，超过 1 按 1
func clampRate(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
