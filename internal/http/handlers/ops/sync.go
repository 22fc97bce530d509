package ops

import (
	"github.com/tip-next/internal/http/response"
	"github.com/tip-next/internal/queue"

	"github.com/gin-gonic/gin"
)

// TriggerOrderSyncRequest 联盟订单同步触发请求
type TriggerOrderSyncRequest struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LookbackMinutes int    `json:"lookback_minutes"`
}

// TriggerOrderSync 手动触发联盟订单同步
func (h *Handler) TriggerOrderSync(c *gin.Context) {
	var req TriggerOrderSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "请求参数错误")
		return
	}
	if !h.queueReady(c) {
		return
	}
	if err := h.QueueClient.EnqueueOrderSyncRange(queue.OrderSyncRangePayload{
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		LookbackMinutes: req.LookbackMinutes,
	}); err != nil {
		response.Error(c, response.CodeInternal, "任务入队失败")
		return
	}
	response.Success(c, gin.H{"enqueued": true})
}

// TriggerTbSyncRequest 淘宝直连同步触发请求
type TriggerTbSyncRequest struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LookbackMinutes int    `json:"lookback_minutes"`
	OrderScene      int64  `json:"order_scene"`
	SyncType        string `json:"sync_type"`
}

// TriggerTbSync 手动触发淘宝直连订单同步
func (h *Handler) TriggerTbSync(c *gin.Context) {
	var req TriggerTbSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "请求参数错误")
		return
	}
	if !h.queueReady(c) {
		return
	}
	if err := h.QueueClient.EnqueueTbOrderSync(queue.TbOrderSyncPayload{
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		LookbackMinutes: req.LookbackMinutes,
		OrderScene:      req.OrderScene,
		SyncType:        req.SyncType,
	}); err != nil {
		response.Error(c, response.CodeInternal, "任务入队失败")
		return
	}
	response.Success(c, gin.H{"enqueued": true})
}

// TriggerTbRefundSyncRequest 淘宝退款补偿触发请求
type TriggerTbRefundSyncRequest struct {
	StartTime string `json:"start_time"`
	BizType   int64  `json:"biz_type"`
}

// TriggerTbRefundSync 手动触发淘宝退款补偿
func (h *Handler) TriggerTbRefundSync(c *gin.Context) {
	var req TriggerTbRefundSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "请求参数错误")
		return
	}
	if !h.queueReady(c) {
		return
	}
	if err := h.QueueClient.EnqueueTbRefundSync(queue.TbRefundSyncPayload{
		StartTime: req.StartTime,
		BizType:   req.BizType,
	}); err != nil {
		response.Error(c, response.CodeInternal, "任务入队失败")
		return
	}
	response.Success(c, gin.H{"enqueued": true})
}

// TriggerTbPunishSyncRequest 淘宝处罚补偿触发请求
type TriggerTbPunishSyncRequest struct {
	StartTime string `json:"start_time"`
	PageSize  int    `json:"page_size"`
}

// TriggerTbPunishSync 手动触发淘宝处罚补偿
func (h *Handler) TriggerTbPunishSync(c *gin.Context) {
	var req TriggerTbPunishSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "请求参数错误")
		return
	}
	if !h.queueReady(c) {
		return
	}
	if err := h.QueueClient.EnqueueTbPunishSync(queue.TbPunishSyncPayload{
		StartTime: req.StartTime,
		PageSize:  req.PageSize,
	}); err != nil {
		response.Error(c, response.CodeInternal, "任务入队失败")
		return
	}
	response.Success(c, gin.H{"enqueued": true})
}

// TriggerSettlementReconcile 手动触发结算对账
func (h *Handler) TriggerSettlementReconcile(c *gin.Context) {
	if !h.queueReady(c) {
		return
	}
	if err := h.QueueClient.EnqueueSettlementReconcile(); err != nil {
		response.Error(c, response.CodeInternal, "任务入队失败")
		return
	}
	response.Success(c, gin.H{"enqueued": true})
}

// TriggerGoodsSync 手动触发商品同步
func (h *Handler) TriggerGoodsSync(c *gin.Context) {
	if h.GoodsSync == nil {
		response.Error(c, response.CodeBadRequest, "商品同步未启用")
		return
	}
	if !h.queueReady(c) {
		return
	}
	if err := h.QueueClient.EnqueueGoodsSync(); err != nil {
		response.Error(c, response.CodeInternal, "任务入队失败")
		return
	}
	response.Success(c, gin.H{"enqueued": true})
}

func (h *Handler) queueReady(c *gin.Context) bool {
	if h.QueueClient == nil || !h.QueueClient.Enabled() {
		response.Error(c, response.CodeInternal, "队列未启用")
		return false
	}
	return true
}
