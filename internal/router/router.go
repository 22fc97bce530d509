package router

import (
	"fmt"
	"strings"

	"github.com/tip-next/internal/cache"
	"github.com/tip-next/internal/config"
	opshandlers "github.com/tip-next/internal/http/handlers/ops"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
//
// 仅暴露健康检查与运维触发接口，无业务端路由。
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	opsHandler := opshandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "tip"
	}
	triggerRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:ops_trigger", redisPrefix),
		WindowSeconds: 60,
		MaxRequests:   30,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	ops := r.Group("/ops")
	{
		query := ops.Group("")
		{
			query.GET("/orders", opsHandler.ListOrders)
			query.GET("/account", opsHandler.GetAccount)
			query.GET("/ledgers", opsHandler.ListLedgers)
			query.GET("/goods", opsHandler.ListGoods)
			query.GET("/goods/first-page", opsHandler.GoodsFirstPage)
		}

		trigger := ops.Group("")
		trigger.Use(RateLimitMiddleware(cache.Client(), triggerRule, KeyByIP))
		{
			trigger.POST("/sync/orders", opsHandler.TriggerOrderSync)
			trigger.POST("/sync/tb", opsHandler.TriggerTbSync)
			trigger.POST("/sync/tb/refund", opsHandler.TriggerTbRefundSync)
			trigger.POST("/sync/tb/punish", opsHandler.TriggerTbPunishSync)
			trigger.POST("/settlement/reconcile", opsHandler.TriggerSettlementReconcile)
			trigger.POST("/goods/sync", opsHandler.TriggerGoodsSync)
		}
	}

	return r
}
