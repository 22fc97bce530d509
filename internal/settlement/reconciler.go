// Package settlement 结算对账。
//
// 订单同步只负责落库，入账统一由对账任务收口：
// 周期性扫描已归因订单，把 orders.credited_fee 收敛到应入账金额，
// 差额通过幂等流水写入用户余额。
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/constants"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/repository"
)

const defaultPageSize = 500

// 金额收敛阈值：差额小于一分视为已收敛
var epsilon = decimal.NewFromFloat(0.01)

// Reconciler 结算对账器
//
// 幂等策略：
//   - 流水幂等键 "10:{orderKey}:{old}->{desired}"，相同状态重复跑不会重复入账
//   - 某次崩溃导致 credited_fee 未回写时，幂等键挡住余额重复更新，
//     下一轮补齐锚点回写
type Reconciler struct {
	db       *gorm.DB
	orders   *repository.GormOrderRepository
	ledgers  *repository.GormLedgerRepository
	accounts *repository.GormAccountRepository
	pageSize int
}

// NewReconciler 创建对账器
func NewReconciler(db *gorm.DB, cfg config.SettlementConfig) *Reconciler {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Reconciler{
		db:       db,
		orders:   repository.NewOrderRepository(db),
		ledgers:  repository.NewLedgerRepository(db),
		accounts: repository.NewAccountRepository(db),
		pageSize: pageSize,
	}
}

// Run 全量对账，返回发生锚点变更的订单数
//
// 按 id 递增做 keyset 分页（大表下 offset 会退化），
// 一批一个事务，单条订单失败只记日志不中止整批扫描。
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	start := time.Now()
	lastID := uint(0)
	changedOrders := 0

	for {
		if err := ctx.Err(); err != nil {
			return changedOrders, err
		}
		batch, err := r.orders.ListAttributedAfterID(lastID, r.pageSize)
		if err != nil {
			return changedOrders, fmt.Errorf("settlement list orders: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		err = r.db.Transaction(func(tx *gorm.DB) error {
			for i := range batch {
				order := &batch[i]
				if order.ID > lastID {
					lastID = order.ID
				}
				if r.reconcileOne(tx, order) {
					changedOrders++
				}
			}
			return nil
		})
		if err != nil {
			return changedOrders, fmt.Errorf("settlement batch tx: %w", err)
		}
	}

	logger.Infow("settlement_reconcile_done",
		"changed_orders", changedOrders,
		"cost_ms", time.Since(start).Milliseconds(),
	)
	return changedOrders, nil
}

// reconcileOne 收敛单笔订单的入账锚点，返回是否发生变更
func (r *Reconciler) reconcileOne(tx *gorm.DB, order *models.Order) bool {
	if order.UserID == nil {
		return false
	}

	oldCredited := order.CreditedFee
	desired := desiredCredit(order)
	delta := desired.Decimal.Sub(oldCredited.Decimal)
	if delta.Abs().LessThan(epsilon) {
		return false
	}

	// 先幂等插流水，插入成功才动余额
	key := fmt.Sprintf("%d:%s:%s->%s",
		constants.LedgerTypeReconcile, order.OrderKey, oldCredited.String(), desired.String())
	entry := &models.LedgerEntry{
		UserID:         *order.UserID,
		OrderKey:       order.OrderKey,
		ChangeType:     constants.LedgerTypeReconcile,
		Amount:         models.NewMoneyFromDecimal(delta),
		IdempotencyKey: key,
	}
	inserted, err := r.ledgers.WithTx(tx).InsertIgnore(entry)
	if err != nil {
		logger.Warnw("settlement_ledger_insert_failed",
			"order_key", order.OrderKey, "error", err)
		return false
	}
	if inserted {
		if err := r.accounts.WithTx(tx).AddBalance(*order.UserID, models.NewMoneyFromDecimal(delta)); err != nil {
			logger.Warnw("settlement_balance_update_failed",
				"order_key", order.OrderKey, "user_id", *order.UserID, "error", err)
			return false
		}
		logger.Infow("settlement_reconciled",
			"order_key", order.OrderKey,
			"user_id", *order.UserID,
			"delta", delta.StringFixed(2),
			"credited", oldCredited.String()+"->"+desired.String(),
		)
	} else {
		logger.Infow("settlement_reconcile_idempotent_skip",
			"order_key", order.OrderKey,
			"user_id", *order.UserID,
			"credited", oldCredited.String()+"->"+desired.String(),
		)
	}

	// 无论流水是否真正落下，锚点都收敛到 desired
	if err := r.orders.WithTx(tx).UpdateCreditedFee(order.ID, desired); err != nil {
		logger.Warnw("settlement_anchor_update_failed",
			"order_key", order.OrderKey, "error", err)
		return false
	}
	return true
}

// desiredCredit 最终结算口径
//
// 锁单 0；失效 0（历史已入账则 delta 为负自动冲账）；
// 已结算取用户可得预估；其余状态 0。
func desiredCredit(order *models.Order) models.Money {
	if order == nil || order.Locked {
		return models.ZeroMoney()
	}
	switch order.Status {
	case constants.OrderStatusSettled:
		return order.UserEstimateFee
	default:
		return models.ZeroMoney()
	}
}
