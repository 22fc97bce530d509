package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        *int8
	UnionPlatform string
	PayMonth      string
	PayTimeFrom   *time.Time
	PayTimeTo     *time.Time
}

// LedgerListFilter 查询资金流水的过滤条件
type LedgerListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	OrderKey   string
	ChangeType *int16
}

// GoodsListFilter 查询本地商品库的过滤条件
type GoodsListFilter struct {
	Page      int
	PageSize  int
	Keyword   string
	OnlyAlive bool
}
