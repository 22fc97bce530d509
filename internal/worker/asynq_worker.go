package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/provider"
	"github.com/tip-next/internal/queue"
	"github.com/tip-next/internal/tbopen"

	"github.com/hibiken/asynq"
)

const (
	timeLayout         = "2006-01-02 15:04:05"
	defaultLookback    = 30 * time.Minute
	defaultTbRefundBiz = 2
	defaultPunishSize  = 50
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderSyncRange, c.handleOrderSyncRange)
	mux.HandleFunc(queue.TaskTbOrderSync, c.handleTbOrderSync)
	mux.HandleFunc(queue.TaskTbRefundSync, c.handleTbRefundSync)
	mux.HandleFunc(queue.TaskTbPunishSync, c.handleTbPunishSync)
	mux.HandleFunc(queue.TaskSettlementReconcile, c.handleSettlementReconcile)
	mux.HandleFunc(queue.TaskGoodsSync, c.handleGoodsSync)
	mux.HandleFunc(queue.TaskGoodsStaleSync, c.handleGoodsStaleSync)
}

// resolveWindow 解析同步窗口：载荷优先，缺省回看 lookback 分钟
func resolveWindow(startStr, endStr string, lookbackMinutes int) (time.Time, time.Time) {
	end := time.Now()
	if endStr != "" {
		if t, err := time.ParseInLocation(timeLayout, endStr, time.Local); err == nil {
			end = t
		}
	}
	lookback := defaultLookback
	if lookbackMinutes > 0 {
		lookback = time.Duration(lookbackMinutes) * time.Minute
	}
	start := end.Add(-lookback)
	if startStr != "" {
		if t, err := time.ParseInLocation(timeLayout, startStr, time.Local); err == nil {
			start = t
		}
	}
	return start, end
}

func (c *Consumer) handleOrderSyncRange(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderSyncRangePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_sync_unmarshal_failed", "error", err)
		return err
	}
	if c.Coordinator == nil {
		logger.Warnw("worker_order_sync_skip_no_coordinator")
		return nil
	}
	start, end := resolveWindow(payload.StartTime, payload.EndTime, payload.LookbackMinutes)
	total := c.Coordinator.SyncRange(ctx, start, end)
	logger.Infow("worker_order_sync_done", "start", start.Format(timeLayout), "end", end.Format(timeLayout), "total", total)
	return nil
}

func (c *Consumer) handleTbOrderSync(ctx context.Context, task *asynq.Task) error {
	var payload queue.TbOrderSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tb_order_sync_unmarshal_failed", "error", err)
		return err
	}
	if c.TbOrderSync == nil {
		logger.Warnw("worker_tb_order_sync_skip_no_client")
		return nil
	}
	start, end := resolveWindow(payload.StartTime, payload.EndTime, payload.LookbackMinutes)
	syncType := tbopen.ParseSyncType(payload.SyncType)
	total := c.TbOrderSync.SyncRange(ctx, start, end, payload.OrderScene, syncType)
	logger.Infow("worker_tb_order_sync_done",
		"start", start.Format(timeLayout), "end", end.Format(timeLayout),
		"sync_type", string(syncType), "total", total)
	return nil
}

func (c *Consumer) handleTbRefundSync(ctx context.Context, task *asynq.Task) error {
	var payload queue.TbRefundSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tb_refund_sync_unmarshal_failed", "error", err)
		return err
	}
	if c.TbRefundSync == nil {
		logger.Warnw("worker_tb_refund_sync_skip_no_client")
		return nil
	}
	startTime := payload.StartTime
	if startTime == "" {
		now := time.Now()
		startTime = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).Format(timeLayout)
	}
	bizType := payload.BizType
	if bizType <= 0 {
		bizType = defaultTbRefundBiz
	}
	total := c.TbRefundSync.SyncByStartTime(ctx, startTime, bizType)
	logger.Infow("worker_tb_refund_sync_done", "start", startTime, "biz_type", bizType, "total", total)
	return nil
}

func (c *Consumer) handleTbPunishSync(ctx context.Context, task *asynq.Task) error {
	var payload queue.TbPunishSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tb_punish_sync_unmarshal_failed", "error", err)
		return err
	}
	if c.TbPunishSync == nil {
		logger.Warnw("worker_tb_punish_sync_skip_no_client")
		return nil
	}
	startTime := payload.StartTime
	if startTime == "" {
		now := time.Now()
		startTime = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).Format(timeLayout)
	}
	pageSize := payload.PageSize
	if pageSize <= 0 {
		pageSize = defaultPunishSize
	}
	total := c.TbPunishSync.SyncByStartTime(ctx, startTime, pageSize)
	logger.Infow("worker_tb_punish_sync_done", "start", startTime, "total", total)
	return nil
}

func (c *Consumer) handleSettlementReconcile(ctx context.Context, task *asynq.Task) error {
	if c.Reconciler == nil {
		logger.Warnw("worker_settlement_reconcile_skip_nil")
		return nil
	}
	processed, err := c.Reconciler.Run(ctx)
	if err != nil {
		logger.Errorw("worker_settlement_reconcile_failed", "processed", processed, "error", err)
		return err
	}
	logger.Infow("worker_settlement_reconcile_done", "processed", processed)
	return nil
}

func (c *Consumer) handleGoodsSync(ctx context.Context, task *asynq.Task) error {
	if c.GoodsSync == nil {
		logger.Debugw("worker_goods_sync_skip_disabled")
		return nil
	}
	c.GoodsSync.SyncGoods(ctx)
	c.GoodsSync.CleanupExpiredCoupon()
	if c.GoodsFirstPage != nil {
		if err := c.GoodsFirstPage.Refresh(ctx); err != nil {
			logger.Warnw("worker_goods_first_page_refresh_failed", "error", err)
		}
	}
	return nil
}

func (c *Consumer) handleGoodsStaleSync(ctx context.Context, task *asynq.Task) error {
	if c.GoodsSync == nil {
		logger.Debugw("worker_goods_stale_sync_skip_disabled")
		return nil
	}
	c.GoodsSync.SyncStaleGoods(ctx)
	return nil
}
