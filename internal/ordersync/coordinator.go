package ordersync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/profit"
)

// 联盟拉取任务的并发上限：任务是 I/O 密集（HTTP），8 足够打满常见配额
const syncWorkerLimit = 8

// OrderUpserter 订单落库接口（由 service.OrderService 实现）
type OrderUpserter interface {
	UpsertOrders(orders []models.Order) (int, error)
}

// Coordinator 订单同步总协调器
//
// 编排两层适配器：并行驱动每个联盟平台的 Fetcher，
// 按批次将 RawOrder 路由到对应电商平台的 Mapper，映射结果分批落库。
// 单个联盟的失败只影响自己，不取消兄弟任务。
type Coordinator struct {
	fetchers []Fetcher
	mappers  map[int]Mapper // 电商平台编号 -> Mapper
	calc     *profit.Calculator
	orders   OrderUpserter
}

// NewCoordinator 创建协调器并注册适配器
//
// 同一电商平台注册多个 Mapper 时先注册者生效。
func NewCoordinator(fetchers []Fetcher, mappers []Mapper, calc *profit.Calculator, orders OrderUpserter) *Coordinator {
	mapperMap := make(map[int]Mapper, len(mappers))
	for _, m := range mappers {
		if m == nil {
			continue
		}
		no := m.EcommercePlatform().No
		if _, exists := mapperMap[no]; !exists {
			mapperMap[no] = m
		}
	}
	return &Coordinator{
		fetchers: fetchers,
		mappers:  mapperMap,
		calc:     calc,
		orders:   orders,
	}
}

// SyncRange 同步指定时间范围内的所有联盟订单，返回落库条数
//
// 订单写入按 order_key 幂等，重复执行同一窗口不产生重复数据，
// 因此跨联盟的任意交错执行顺序都是可接受的。
func (c *Coordinator) SyncRange(ctx context.Context, startTime, endTime time.Time) int {
	if len(c.fetchers) == 0 {
		logger.Warnw("order_sync_skip_no_fetcher")
		return 0
	}

	logger.Infow("order_sync_start",
		"start", startTime.Format(timeLayout),
		"end", endTime.Format(timeLayout),
		"unions", len(c.fetchers),
	)
	syncStart := time.Now()

	var totalUpsert atomic.Int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, syncWorkerLimit)

	for _, fetcher := range c.fetchers {
		if fetcher == nil {
			continue
		}
		wg.Add(1)
		go func(f Fetcher) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			count := c.syncUnion(ctx, f, startTime, endTime)
			totalUpsert.Add(int64(count))
		}(fetcher)
	}
	wg.Wait()

	logger.Infow("order_sync_done",
		"total_upsert", totalUpsert.Load(),
		"cost_ms", time.Since(syncStart).Milliseconds(),
	)
	return int(totalUpsert.Load())
}

// syncUnion 驱动单个联盟平台的流式拉取并消费每个批次
func (c *Coordinator) syncUnion(ctx context.Context, fetcher Fetcher, startTime, endTime time.Time) int {
	union := string(fetcher.UnionPlatform())
	logger.Infow("union_sync_start", "union", union)
	unionStart := time.Now()

	var upserted int
	err := fetcher.FetchBatches(ctx, startTime, endTime, func(batch []RawOrder) {
		count := c.consumeBatch(batch)
		if count > 0 {
			upserted += count
			logger.Infow("union_sync_progress", "union", union, "batch_upsert", count)
		}
	})
	if err != nil {
		logger.Errorw("union_sync_failed", "union", union, "error", err)
	}

	logger.Infow("union_sync_done",
		"union", union,
		"upserted", upserted,
		"cost_ms", time.Since(unionStart).Milliseconds(),
	)
	return upserted
}

// consumeBatch 将一批原始订单映射并落库
//
// 无匹配 Mapper 属于配置缺口：记日志丢弃，不算运行时错误；
// 单条映射崩溃隔离处理，不影响同批其他订单。
func (c *Coordinator) consumeBatch(batch []RawOrder) int {
	if len(batch) == 0 {
		return 0
	}
	toUpsert := make([]models.Order, 0, len(batch))
	for _, raw := range batch {
		mapper, ok := c.mappers[raw.Ecommerce.No]
		if !ok {
			logger.Warnw("order_sync_no_mapper",
				"ecommerce_platform", raw.Ecommerce.Name,
				"union_platform", string(raw.Union),
			)
			continue
		}
		order := c.mapOne(mapper, raw)
		if order != nil {
			toUpsert = append(toUpsert, *order)
		}
	}
	if len(toUpsert) == 0 {
		return 0
	}
	count, err := c.orders.UpsertOrders(toUpsert)
	if err != nil {
		logger.Errorw("order_sync_upsert_failed",
			"batch_size", len(toUpsert),
			"error", err,
		)
		return 0
	}
	return count
}

func (c *Coordinator) mapOne(mapper Mapper, raw RawOrder) (order *models.Order) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("order_map_panic",
				"ecommerce_platform", raw.Ecommerce.Name,
				"union_platform", string(raw.Union),
				"panic", r,
			)
			order = nil
		}
	}()
	return mapper.MapToOrder(raw, c.calc)
}
