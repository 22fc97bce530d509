package models

import (
	"time"
)

// Order 联盟推广订单表
//
// 存储所有 CPS 平台（淘宝/京东/拼多多/唯品会）的推广订单数据，
// 由同步任务从联盟平台 API 或淘宝开放平台直连拉取。
// 同一 (联盟平台, 三方订单号) 只会存在一行：order_key 唯一，重复同步原地更新。
type Order struct {
	ID              uint   `gorm:"primarykey" json:"id"`                         // 主键
	OrderKey        string `gorm:"uniqueIndex;not null" json:"order_key"`        // 本站订单号（联盟平台前缀 + 三方订单号）
	ExternalTradeID string `gorm:"index;not null" json:"external_trade_id"`      // 三方平台订单号（对账/退款/处罚关联键）
	UnionPlatform   string `gorm:"type:varchar(32);index" json:"union_platform"` // 同步来源（DTK/ZTK/TB_OPEN/...）
	PlatformNo      int    `gorm:"index" json:"platform_no"`                     // 电商平台编号（1 淘宝 2 京东 ...）
	PlatformName    string `gorm:"type:varchar(32)" json:"platform_name"`        // 电商平台名称（冗余展示字段）

	OrderTitle string `gorm:"type:varchar(512)" json:"order_title"` // 商品标题
	Img        string `gorm:"type:varchar(1024)" json:"img"`        // 商品主图

	// 归因：联盟侧推广关系标识，解析成功后回填 user_id
	Sid        string `gorm:"type:varchar(64);index" json:"sid"` // 归因令牌（relationId/specialId/pid 等口径）
	RelationID *int64 `gorm:"index" json:"relation_id,omitempty"`
	SpecialID  *int64 `json:"special_id,omitempty"`
	AdzoneID   *int64 `json:"adzone_id,omitempty"`
	UserID     *uint  `gorm:"index" json:"user_id,omitempty"` // 归因失败时为空，不参与结算

	OrderAmount Money    `gorm:"type:decimal(20,2);not null;default:0" json:"order_amount"` // 订单成交金额
	PaidAmount  Money    `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`  // 实际支付金额
	ShareRate   *float64 `json:"share_rate,omitempty"`                                      // 联盟佣金比例（百分比口径，仅展示）

	// 分成拆解（落库口径，来自 profit.Breakdown 或 TB 本地公式）
	GrossCommission    Money   `gorm:"type:decimal(20,2);not null;default:0" json:"gross_commission"`  // 佣金基数（gross）
	UserEstimateFee    Money   `gorm:"type:decimal(20,2);not null;default:0" json:"user_estimate_fee"` // 用户可得预估（净额）
	BaseDeductionRate  float64 `gorm:"not null;default:0" json:"base_deduction_rate"`                  // 固定扣点比例
	BaseDeductionFee   Money   `gorm:"type:decimal(20,2);not null;default:0" json:"base_deduction_fee"`
	PlatformProfitRate float64 `gorm:"not null;default:0" json:"platform_profit_rate"` // 本站盈利比例
	PlatformProfitFee  Money   `gorm:"type:decimal(20,2);not null;default:0" json:"platform_profit_fee"`
	UserShareRate      float64 `gorm:"not null;default:0" json:"user_share_rate"` // 净额分给用户的比例
	OrderDiscount      float64 `gorm:"not null;default:0" json:"order_discount"`  // 总扣点（解释展示口径）

	Status        int8   `gorm:"index;not null;default:1" json:"status"`       // 0 创建 1 已支付 2 已结算 3 已失效
	RealStatus    *int   `json:"real_status,omitempty"`                        // 平台原始状态码（如淘宝 3/12/13/14）
	StatusContent string `gorm:"type:varchar(255)" json:"status_content"`      // 三方原始状态描述
	RefundStatus  int    `gorm:"not null;default:0" json:"refund_status"`      // 0 无退款 101 维权中 103 已扣回
	Locked        bool   `gorm:"not null;default:false;index" json:"locked"`   // 锁单（处罚/风控，应入账金额强制为 0）
	PunishReason  string `gorm:"type:varchar(255)" json:"punish_reason"`       // 处罚/违规原因

	// 结算锚点：上一次对账实际收敛到的入账金额，结算任务以此计算差额
	CreditedFee Money `gorm:"type:decimal(20,2);not null;default:0" json:"credited_fee"`

	PayTime      *time.Time `gorm:"index" json:"pay_time"`    // 支付时间
	EarnTime     *time.Time `gorm:"index" json:"earn_time"`   // 联盟结算时间
	ModifyTime   *time.Time `json:"modify_time"`              // 三方数据变更时间
	PayMonth     string     `gorm:"type:varchar(8);index" json:"pay_month"` // 预期回款月份桶 yyyyMMdd
	EstimateDate string     `gorm:"type:varchar(10)" json:"estimate_date"`  // 预估结算日期 yyyy-MM-dd
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
