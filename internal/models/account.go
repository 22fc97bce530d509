package models

import (
	"time"
)

// Account 用户资金账户
//
// 余额只能通过两条路径变化：结算对账成功插入的流水差额，
// 以及提现子系统的冻结/解冻/扣减。
type Account struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`        // 可用余额
	Frozen        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"frozen"`         // 提现冻结中金额
	TotalIncome   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_income"`   // 累计收益（只增）
	TotalWithdraw Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_withdraw"` // 累计提现
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}
