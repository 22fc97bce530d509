package models

import (
	"time"
)

// LedgerEntry 资金流水（用于审计与幂等）
//
// 订单结算入账/冲账的唯一资金变更通道：idempotency_key 唯一，
// 冲突插入视为"已入账"空操作，保证同一状态变迁至多记账一次。
// 流水只增不改不删，冲正通过新流水表达。
type LedgerEntry struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	OrderKey       string    `gorm:"index;not null" json:"order_key"`
	ChangeType     int16     `gorm:"not null" json:"change_type"`                    // 见 constants.LedgerType*
	Amount         Money     `gorm:"type:decimal(20,2);not null" json:"amount"`      // 入账为正，冲账为负
	IdempotencyKey string    `gorm:"uniqueIndex;not null" json:"idempotency_key"`    // type:orderKey:old->desired
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
