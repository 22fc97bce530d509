package models

import (
	"time"
)

// Goods 本地商品库（大淘客选品数据）
//
// 只追求"可持续增量同步 + 失效标记"，不承诺与上游强一致。
type Goods struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	GoodsID     string     `gorm:"uniqueIndex;not null" json:"goods_id"` // 大淘客商品ID
	ItemID      string     `gorm:"index" json:"item_id"`                 // 淘宝商品ID
	Title       string     `gorm:"type:varchar(512)" json:"title"`
	MainPic     string     `gorm:"type:varchar(1024)" json:"main_pic"`
	OriginPrice Money      `gorm:"type:decimal(20,2);not null;default:0" json:"origin_price"`
	ActualPrice Money      `gorm:"type:decimal(20,2);not null;default:0" json:"actual_price"`
	CouponPrice Money      `gorm:"type:decimal(20,2);not null;default:0" json:"coupon_price"`
	CouponEndAt *time.Time `gorm:"index" json:"coupon_end_at"`
	Sales       int64      `gorm:"not null;default:0" json:"sales"`
	Stale       bool       `gorm:"not null;default:false;index" json:"stale"` // 上游已下架/失效
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (Goods) TableName() string {
	return "dtk_goods"
}
