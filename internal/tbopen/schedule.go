package tbopen

import "time"

// 默认折扣（早期口径）
const defaultDiscountRate = 0.011

type discountRule struct {
	effectiveFrom time.Time
	rate          float64
}

// 折扣时间表，按生效时间倒序；取第一条不晚于当前时间的规则。
// 历史费率沿用运营确认过的数值，调整时在表头追加新行，不改旧行。
var discountRulesDesc = []discountRule{
	{mustTime("2025-09-24 00:00:00"), 0.05},
	{mustTime("2024-04-29 00:00:00"), 0.06},
	{mustTime("2024-04-23 14:30:00"), 0.07},
	{mustTime("2024-04-15 05:50:00"), 0.02},
	{mustTime("2024-04-11 17:10:00"), 0.00},
	{mustTime("2024-03-25 00:00:00"), 0.01},
	{mustTime("2023-09-12 04:00:00"), 0.02},
	{mustTime("2022-11-04 03:10:00"), 0.04},
}

// ChooseDiscountRate 按时间选择折扣比例
func ChooseDiscountRate(now time.Time) float64 {
	if now.IsZero() {
		now = time.Now()
	}
	for _, rule := range discountRulesDesc {
		if !now.Before(rule.effectiveFrom) {
			return rule.rate
		}
	}
	return defaultDiscountRate
}

func mustTime(raw string) time.Time {
	t, err := time.ParseInLocation(timeLayout, raw, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}
