package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/tip-next/internal/constants"
)

const (
	// TaskOrderSyncRange 联盟订单同步任务
	TaskOrderSyncRange = constants.TaskOrderSyncRange
	// TaskTbOrderSync 淘宝直连订单同步任务
	TaskTbOrderSync = constants.TaskTbOrderSync
	// TaskTbRefundSync 淘宝退款补偿同步任务
	TaskTbRefundSync = constants.TaskTbRefundSync
	// TaskTbPunishSync 淘宝处罚补偿同步任务
	TaskTbPunishSync = constants.TaskTbPunishSync
	// TaskSettlementReconcile 结算对账任务
	TaskSettlementReconcile = constants.TaskSettlementReconcile
	// TaskGoodsSync 商品同步任务
	TaskGoodsSync = constants.TaskGoodsSync
	// TaskGoodsStaleSync 失效商品标记任务
	TaskGoodsStaleSync = constants.TaskGoodsStaleSync
)

// OrderSyncRangePayload 联盟订单同步载荷
//
// StartTime/EndTime 留空时按 [now - LookbackMinutes, now] 计算窗口。
type OrderSyncRangePayload struct {
	StartTime       string `json:"start_time,omitempty"` // yyyy-MM-dd HH:mm:ss
	EndTime         string `json:"end_time,omitempty"`
	LookbackMinutes int    `json:"lookback_minutes,omitempty"`
}

// TbOrderSyncPayload 淘宝直连订单同步载荷
type TbOrderSyncPayload struct {
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	LookbackMinutes int    `json:"lookback_minutes,omitempty"`
	OrderScene      int64  `json:"order_scene,omitempty"`
	SyncType        string `json:"sync_type,omitempty"`
}

// TbRefundSyncPayload 淘宝退款补偿载荷
type TbRefundSyncPayload struct {
	StartTime string `json:"start_time,omitempty"` // 留空取当日零点
	BizType   int64  `json:"biz_type,omitempty"`
}

// TbPunishSyncPayload 淘宝处罚补偿载荷
type TbPunishSyncPayload struct {
	StartTime string `json:"start_time,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
}

// SettlementReconcilePayload 结算对账载荷（全量扫描，无参数）
type SettlementReconcilePayload struct{}

// GoodsSyncPayload 商品同步载荷
type GoodsSyncPayload struct{}

// GoodsStaleSyncPayload 失效商品标记载荷
type GoodsStaleSyncPayload struct{}

func newTask(name string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(name, body), nil
}

// NewOrderSyncRangeTask 创建联盟订单同步任务
func NewOrderSyncRangeTask(payload OrderSyncRangePayload) (*asynq.Task, error) {
	return newTask(TaskOrderSyncRange, payload)
}

// NewTbOrderSyncTask 创建淘宝直连订单同步任务
func NewTbOrderSyncTask(payload TbOrderSyncPayload) (*asynq.Task, error) {
	return newTask(TaskTbOrderSync, payload)
}

// NewTbRefundSyncTask 创建淘宝退款补偿任务
func NewTbRefundSyncTask(payload TbRefundSyncPayload) (*asynq.Task, error) {
	return newTask(TaskTbRefundSync, payload)
}

// NewTbPunishSyncTask 创建淘宝处罚补偿任务
func NewTbPunishSyncTask(payload TbPunishSyncPayload) (*asynq.Task, error) {
	return newTask(TaskTbPunishSync, payload)
}

// NewSettlementReconcileTask 创建结算对账任务
func NewSettlementReconcileTask() (*asynq.Task, error) {
	return newTask(TaskSettlementReconcile, SettlementReconcilePayload{})
}

// NewGoodsSyncTask 创建商品同步任务
func NewGoodsSyncTask() (*asynq.Task, error) {
	return newTask(TaskGoodsSync, GoodsSyncPayload{})
}

// NewGoodsStaleSyncTask 创建失效商品标记任务
func NewGoodsStaleSyncTask() (*asynq.Task, error) {
	return newTask(TaskGoodsStaleSync, GoodsStaleSyncPayload{})
}
