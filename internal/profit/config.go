package profit

import (
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/ordersync/platform"
)

const effectiveFromLayout = "2006-01-02 15:04:05"

// NewCalculatorFromConfig 从配置装配盈利计算器
//
// 规则表是只读的版本化配置：修改历史比例会静默改写历史订单口径，
// 调整只允许追加带新生效时间的规则。
func NewCalculatorFromConfig(cfg config.ProfitConfig) *Calculator {
	defaultRule := ruleFromConfig(cfg.DefaultRule)
	if defaultRule.UserShareRate == 0 {
		defaultRule.UserShareRate = 1.0
	}

	rules := make([]Rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		rule := ruleFromConfig(rc)
		if rule.Union == "" || rule.Ecommerce == platform.Unknown {
			logger.Warnw("profit_rule_scope_invalid",
				"rule_id", rc.RuleID,
				"union_platform", rc.UnionPlatform,
				"ecommerce_platform", rc.EcommercePlatform,
			)
			continue
		}
		rules = append(rules, rule)
	}
	return NewCalculator(defaultRule, rules)
}

func ruleFromConfig(rc config.ProfitRuleConfig) Rule {
	rule := Rule{
		RuleID:             rc.RuleID,
		Union:              platform.ParseUnion(rc.UnionPlatform),
		Ecommerce:          platform.ParseEcommerce(rc.EcommercePlatform),
		BaseDeductionRate:  rc.BaseDeductionRate,
		PlatformProfitRate: rc.PlatformProfitRate,
		UserShareRate:      rc.UserShareRate,
	}
	if rc.EffectiveFrom != "" {
		if t, err := time.ParseInLocation(effectiveFromLayout, rc.EffectiveFrom, time.Local); err == nil {
			rule.EffectiveFrom = &t
		} else {
			logger.Warnw("profit_rule_effective_from_invalid",
				"rule_id", rc.RuleID,
				"effective_from", rc.EffectiveFrom,
				"error", err,
			)
		}
	}
	return rule
}
