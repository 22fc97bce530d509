// Package goods 本地商品库同步（基于大淘客选品接口）。
//
// 只操作本地 dtk_goods 表，不承诺与上游强一致，
// 追求可持续增量同步、失效标记与过期券清理。
package goods

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/dtkapi"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/repository"
)

const (
	defaultPageSize = 100
	pageDelay       = 200 * time.Millisecond

	// 增量/失效同步的回看窗口
	incrementalLookback = 10 * time.Minute
)

// SyncService 商品同步服务
//
// 所有同步入口共用一把进程级 try-lock：拿不到锁直接放弃本次触发，
// 避免定时任务与手动触发重叠执行互相踩踏。
type SyncService struct {
	client      *dtkapi.Client
	goodsRepo   repository.GoodsRepository
	pageSize    int
	lockTimeout time.Duration

	lock chan struct{}
}

// NewSyncService 创建商品同步服务
func NewSyncService(client *dtkapi.Client, goodsRepo repository.GoodsRepository, cfg config.GoodsConfig) *SyncService {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	return &SyncService{
		client:      client,
		goodsRepo:   goodsRepo,
		pageSize:    pageSize,
		lockTimeout: cfg.LockTimeout(),
		lock:        make(chan struct{}, 1),
	}
}

// SyncGoods 商品同步入口：空库全量，否则按时间窗增量
func (s *SyncService) SyncGoods(ctx context.Context) {
	if !s.tryLock("sync_goods") {
		return
	}
	defer s.unlock()

	count, err := s.goodsRepo.Count()
	if err != nil {
		logger.Errorw("goods_count_failed", "error", err)
		return
	}
	if count == 0 {
		s.syncFull(ctx)
	} else {
		s.syncIncremental(ctx)
	}
}

// SyncStaleGoods 同步失效商品：按时间窗拉取下架商品并本地标记
func (s *SyncService) SyncStaleGoods(ctx context.Context) {
	if !s.tryLock("sync_stale_goods") {
		return
	}
	defer s.unlock()

	end := time.Now()
	start := end.Add(-incrementalLookback)
	logger.Infow("goods_stale_sync_start")

	pageID := 1
	for {
		staleIDs, err := s.fetchStaleIDs(ctx, pageID, start, end)
		if err != nil {
			logger.Errorw("goods_stale_sync_page_failed", "page_id", pageID, "error", err)
			return
		}
		if len(staleIDs) == 0 {
			return
		}
		marked, err := s.goodsRepo.MarkStale(staleIDs)
		if err != nil {
			logger.Errorw("goods_stale_mark_failed", "page_id", pageID, "error", err)
			return
		}
		logger.Infow("goods_stale_sync_page", "page_id", pageID, "stale", len(staleIDs), "marked", marked)
		pageID++
		time.Sleep(pageDelay)
	}
}

// CleanupExpiredCoupon 删除优惠券已过期的商品，返回删除条数
func (s *SyncService) CleanupExpiredCoupon() int64 {
	if !s.tryLock("cleanup_expired_coupon") {
		return 0
	}
	defer s.unlock()

	deleted, err := s.goodsRepo.DeleteExpiredCoupon(time.Now())
	if err != nil {
		logger.Errorw("goods_cleanup_failed", "error", err)
		return 0
	}
	logger.Infow("goods_cleanup_done", "deleted", deleted)
	return deleted
}

func (s *SyncService) syncFull(ctx context.Context) {
	logger.Infow("goods_full_sync_start")
	pageID := 1
	for {
		params := map[string]string{
			"pageId":   strconv.Itoa(pageID),
			"pageSize": strconv.Itoa(s.pageSize),
		}
		list, err := s.fetchGoodsPage(ctx, dtkapi.PathGoodsList, params)
		if err != nil {
			logger.Errorw("goods_full_sync_page_failed", "page_id", pageID, "error", err)
			return
		}
		if len(list) == 0 {
			logger.Infow("goods_full_sync_done", "pages", pageID-1)
			return
		}
		s.saveBatch(list, pageID)
		pageID++
		time.Sleep(pageDelay)
	}
}

func (s *SyncService) syncIncremental(ctx context.Context) {
	logger.Infow("goods_incremental_sync_start")
	end := time.Now()
	start := end.Add(-incrementalLookback)

	pageID := 1
	for {
		params := map[string]string{
			"pageId":    strconv.Itoa(pageID),
			"pageSize":  strconv.Itoa(s.pageSize),
			"startTime": start.Format("2006-01-02 15:04:05"),
			"endTime":   end.Format("2006-01-02 15:04:05"),
		}
		list, err := s.fetchGoodsPage(ctx, dtkapi.PathPullGoodsByTime, params)
		if err != nil {
			logger.Errorw("goods_incremental_sync_page_failed", "page_id", pageID, "error", err)
			return
		}
		if len(list) == 0 {
			return
		}
		s.saveBatch(list, pageID)
		pageID++
		time.Sleep(pageDelay)
	}
}

func (s *SyncService) saveBatch(list []models.Goods, pageID int) {
	// 按 goodsId 排序落库，降低并发更新时的死锁概率
	sort.Slice(list, func(i, j int) bool { return list[i].GoodsID < list[j].GoodsID })
	count, err := s.goodsRepo.UpsertBatch(list)
	if err != nil {
		logger.Errorw("goods_upsert_failed", "page_id", pageID, "error", err)
		return
	}
	logger.Infow("goods_sync_page", "page_id", pageID, "count", count)
}

// fetchGoodsPage 拉取一页商品并映射为本地实体
func (s *SyncService) fetchGoodsPage(ctx context.Context, path string, params map[string]string) ([]models.Goods, error) {
	data, err := s.client.DoMap(ctx, path, params)
	if err != nil {
		return nil, err
	}
	rawList, _ := data["list"].([]interface{})
	goods := make([]models.Goods, 0, len(rawList))
	for _, item := range rawList {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if g := mapGoods(raw); g != nil {
			goods = append(goods, *g)
		}
	}
	return goods, nil
}

func (s *SyncService) fetchStaleIDs(ctx context.Context, pageID int, start, end time.Time) ([]string, error) {
	params := map[string]string{
		"pageId":    strconv.Itoa(pageID),
		"pageSize":  strconv.Itoa(s.pageSize),
		"startTime": start.Format("2006-01-02 15:04:05"),
		"endTime":   end.Format("2006-01-02 15:04:05"),
	}
	data, err := s.client.DoMap(ctx, dtkapi.PathStaleGoods, params)
	if err != nil {
		return nil, err
	}
	rawList, _ := data["list"].([]interface{})
	ids := make([]string, 0, len(rawList))
	for _, item := range rawList {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if id := ordersync.FirstNonBlank(raw, "goodsId", "goods_id", "id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// mapGoods 大淘客商品报文映射为本地实体，缺 goodsId 的记录丢弃
func mapGoods(raw map[string]interface{}) *models.Goods {
	goodsID := ordersync.FirstNonBlank(raw, "goodsId", "goods_id")
	if goodsID == "" {
		return nil
	}
	originPrice, _ := ordersync.FirstNonNegativeFloat(raw, "originalPrice", "original_price")
	actualPrice, _ := ordersync.FirstNonNegativeFloat(raw, "actualPrice", "actual_price")
	couponPrice, _ := ordersync.FirstNonNegativeFloat(raw, "couponPrice", "coupon_price")
	sales, _ := ordersync.FirstInt(raw, "monthSales", "month_sales", "sales")

	return &models.Goods{
		GoodsID:     goodsID,
		ItemID:      ordersync.FirstNonBlank(raw, "itemId", "item_id"),
		Title:       ordersync.FirstNonBlank(raw, "title", "dtitle"),
		MainPic:     ordersync.FirstNonBlank(raw, "mainPic", "main_pic"),
		OriginPrice: models.NewMoneyFromFloat(originPrice),
		ActualPrice: models.NewMoneyFromFloat(actualPrice),
		CouponPrice: models.NewMoneyFromFloat(couponPrice),
		CouponEndAt: ordersync.ParseTime(ordersync.FirstNonBlank(raw, "couponEndTime", "coupon_end_time")),
		Sales:       sales,
	}
}

// tryLock 进程级 try-lock，超时放弃
func (s *SyncService) tryLock(task string) bool {
	timeout := s.lockTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	select {
	case s.lock <- struct{}{}:
		return true
	case <-time.After(timeout):
		logger.Warnw("goods_sync_lock_busy", "task", task)
		return false
	}
}

func (s *SyncService) unlock() {
	<-s.lock
}
