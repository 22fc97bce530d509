package provider

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/tip-next/internal/cache"
	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/dtkapi"
	"github.com/tip-next/internal/goods"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/ordersync/dtk"
	"github.com/tip-next/internal/ordersync/taobao"
	"github.com/tip-next/internal/profit"
	"github.com/tip-next/internal/queue"
	"github.com/tip-next/internal/repository"
	"github.com/tip-next/internal/service"
	"github.com/tip-next/internal/settlement"
	"github.com/tip-next/internal/tbopen"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo    repository.UserRepository
	OrderRepo   repository.OrderRepository
	LedgerRepo  repository.LedgerRepository
	AccountRepo repository.AccountRepository
	RefundRepo  repository.RefundRepository
	GoodsRepo   repository.GoodsRepository

	// Services
	OrderService   *service.OrderService
	AccountService *service.AccountService

	// 同步/结算链路
	ProfitCalculator *profit.Calculator
	Coordinator      *ordersync.Coordinator
	TbOrderSync      *tbopen.OrderSyncService
	TbRefundSync     *tbopen.RefundSyncService
	TbPunishSync     *tbopen.PunishSyncService
	Reconciler       *settlement.Reconciler
	GoodsSync        *goods.SyncService
	GoodsFirstPage   *cache.FirstPage

	DtkClient *dtkapi.Client
	TbClient  *tbopen.Client
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()
	c.initSyncPipeline()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.AccountRepo = repository.NewAccountRepository(db)
	c.RefundRepo = repository.NewRefundRepository(db)
	c.GoodsRepo = repository.NewGoodsRepository(db)
}

func (c *Container) initServices() {
	c.OrderService = service.NewOrderService(c.OrderRepo, c.UserRepo)
	c.AccountService = service.NewAccountService(c.AccountRepo, c.LedgerRepo)
}

// initSyncPipeline 装配同步与结算链路
//
// 外部平台凭据缺失时对应组件留空，worker 侧跳过并记日志，
// 保证单平台配置缺失不拖垮整个进程。
func (c *Container) initSyncPipeline() {
	c.ProfitCalculator = profit.NewCalculatorFromConfig(c.Config.Profit)
	c.Reconciler = settlement.NewReconciler(models.DB, c.Config.Settlement)

	var fetchers []ordersync.Fetcher
	dtkClient, err := dtkapi.NewClient(c.Config.Dtk)
	if err != nil {
		logger.Warnw("provider_dtk_client_disabled", "error", err)
	} else {
		c.DtkClient = dtkClient
		fetchers = append(fetchers, dtk.NewSyncer(dtkClient, c.Config.Dtk))
	}

	mappers := []ordersync.Mapper{taobao.NewMapper()}
	c.Coordinator = ordersync.NewCoordinator(fetchers, mappers, c.ProfitCalculator, c.OrderService)

	tbClient, err := tbopen.NewClient(c.Config.Tb)
	if err != nil {
		logger.Warnw("provider_tb_client_disabled", "error", err)
	} else {
		c.TbClient = tbClient
		c.TbOrderSync = tbopen.NewOrderSyncService(tbClient, c.OrderService, c.RefundRepo, c.Config.Tb)
		c.TbRefundSync = tbopen.NewRefundSyncService(tbClient, c.OrderRepo, c.RefundRepo)
		c.TbPunishSync = tbopen.NewPunishSyncService(tbClient, c.OrderRepo)
	}

	if c.Config.Goods.Enabled && c.DtkClient != nil {
		c.GoodsSync = goods.NewSyncService(c.DtkClient, c.GoodsRepo, c.Config.Goods)
		c.GoodsFirstPage = cache.NewFirstPage("goods:first_page", c.Config.Goods.CacheTTL(), c.goodsFirstPageLoader())
	}
}

// goodsFirstPageLoader 首页商品列表回源：大淘客选品接口第一页
func (c *Container) goodsFirstPageLoader() cache.LoaderFunc {
	pageSize := c.Config.Goods.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return func(ctx context.Context) (json.RawMessage, error) {
		data, err := c.DtkClient.Do(ctx, dtkapi.PathGoodsList, map[string]string{
			"pageId":   "1",
			"pageSize": strconv.Itoa(pageSize),
		})
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}
