package constants

// 订单状态（标准化四态）
const (
	OrderStatusCreated int8 = 0 // 创建/未支付
	OrderStatusPaid    int8 = 1 // 已支付
	OrderStatusSettled int8 = 2 // 已结算
	OrderStatusInvalid int8 = 3 // 已失效
)

// 退款状态常量
const (
	RefundStatusNone      = 0   // 无退款
	RefundStatusClaiming  = 101 // 维权中，佣金重新计算
	RefundStatusConfirmed = 103 // 退款已确认/已扣回
)

// 资金流水变更类型
const (
	LedgerTypeSettle    int16 = 1  // 订单结算入账
	LedgerTypeReverse   int16 = 2  // 订单冲账（结算后失效/退款导致扣减）
	LedgerTypeReconcile int16 = 10 // 对账调整（统一覆盖：结算/失效/锁单/差额）
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型常量
const (
	TaskOrderSyncRange      = "ordersync:range"
	TaskTbOrderSync         = "ordersync:tb"
	TaskTbRefundSync        = "ordersync:tb_refund"
	TaskTbPunishSync        = "ordersync:tb_punish"
	TaskSettlementReconcile = "settlement:reconcile"
	TaskGoodsSync           = "goods:sync"
	TaskGoodsStaleSync      = "goods:stale"
)
