package tbopen

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tip-next/internal/models"
)

// CommissionResult 淘宝直连订单的本地分佣结果
type CommissionResult struct {
	ShareFee        models.Money // 用户可得预估
	GrossCommission models.Money // 佣金基数
	OrderDiscount   float64      // 当期折扣比例（解释口径）
}

// CalculateCommission 淘宝直连分佣
//
// 基数取 pub_share_fee，恰好为 0 时回退 pub_share_pre_fee；
// shareFee = round2(基数 * (0.9 - 折扣比例))，折扣比例按 now 查时间表。
func CalculateCommission(pubShareFee, pubSharePreFee string, now time.Time) CommissionResult {
	base := safeMoney(pubShareFee)
	if base.IsZero() {
		base = safeMoney(pubSharePreFee)
	}

	rate := ChooseDiscountRate(now)
	shareFee := base.Mul(decimal.NewFromFloat(0.9 - rate))

	return CommissionResult{
		ShareFee:        models.NewMoneyFromDecimal(shareFee),
		GrossCommission: models.NewMoneyFromDecimal(base),
		OrderDiscount:   rate,
	}
}

func safeMoney(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}
