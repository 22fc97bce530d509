package models

import (
	"time"
)

// OrderRefund 退款/维权证据链（最小实现：保存原始 JSON）
//
// 当三方订单携带退款/处罚标记时落一行原始报文，
// 按 trade_id 幂等 upsert，便于人工核对扣回金额。
type OrderRefund struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TradeID   string    `gorm:"uniqueIndex;not null" json:"trade_id"` // 三方订单号（对应 orders.external_trade_id）
	OrderKey  string    `gorm:"index" json:"order_key"`               // 本站订单号（便于反查）
	RawJSON   string    `gorm:"type:text" json:"raw_json"`            // 原始报文
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (OrderRefund) TableName() string {
	return "order_refunds"
}
