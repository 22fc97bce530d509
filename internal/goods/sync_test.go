package goods

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/dtkapi"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/repository"
)

func setupGoodsTest(t *testing.T, handler http.HandlerFunc) (*gorm.DB, *SyncService) {
	t.Helper()
	dsn := fmt.Sprintf("file:goods_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Goods{}); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}

	var client *dtkapi.Client
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		client, err = dtkapi.NewClient(config.DtkConfig{
			BaseURL:   server.URL,
			AppKey:    "test-key",
			AppSecret: "test-secret",
		})
		if err != nil {
			t.Fatalf("创建客户端失败: %v", err)
		}
	}
	service := NewSyncService(client, repository.NewGoodsRepository(db), config.GoodsConfig{PageSize: 50})
	return db, service
}

func goodsCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Goods{}).Count(&count).Error; err != nil {
		t.Fatalf("统计商品失败: %v", err)
	}
	return count
}

func TestSyncGoodsFullWhenEmpty(t *testing.T) {
	pages := 0
	db, service := setupGoodsTest(t, func(w http.ResponseWriter, r *http.Request) {
		// 空库走全量接口；第二页返回空列表终止翻页
		if r.URL.Path != dtkapi.PathGoodsList {
			t.Errorf("path = %s, want %s", r.URL.Path, dtkapi.PathGoodsList)
		}
		pages++
		if pages == 1 {
			w.Write([]byte(`{"code":0,"msg":"ok","data":{"list":[
				{"goodsId":"g1","itemId":"i1","title":"商品一","actualPrice":19.9,"monthSales":120},
				{"goodsId":"g2","title":"商品二","couponPrice":5}
			]}}`))
			return
		}
		w.Write([]byte(`{"code":0,"msg":"ok","data":{"list":[]}}`))
	})

	service.SyncGoods(context.Background())

	if got := goodsCount(t, db); got != 2 {
		t.Fatalf("goods count = %d, want 2", got)
	}
	var g models.Goods
	if err := db.Where("goods_id = ?", "g1").First(&g).Error; err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if g.ActualPrice.String() != "19.90" || g.Sales != 120 {
		t.Errorf("g1 = %+v", g)
	}
}

func TestSyncGoodsIncrementalWhenNotEmpty(t *testing.T) {
	var gotPath string
	db, service := setupGoodsTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"code":0,"msg":"ok","data":{"list":[]}}`))
	})
	if err := db.Create(&models.Goods{GoodsID: "seed"}).Error; err != nil {
		t.Fatalf("预置商品失败: %v", err)
	}

	service.SyncGoods(context.Background())

	if gotPath != dtkapi.PathPullGoodsByTime {
		t.Fatalf("非空库应走增量接口, path = %s", gotPath)
	}
}

func TestSyncStaleGoodsMarks(t *testing.T) {
	pages := 0
	db, service := setupGoodsTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != dtkapi.PathStaleGoods {
			t.Errorf("path = %s, want %s", r.URL.Path, dtkapi.PathStaleGoods)
		}
		pages++
		if pages == 1 {
			w.Write([]byte(`{"code":0,"msg":"ok","data":{"list":[{"goodsId":"g1"}]}}`))
			return
		}
		w.Write([]byte(`{"code":0,"msg":"ok","data":{"list":[]}}`))
	})
	if err := db.Create(&models.Goods{GoodsID: "g1"}).Error; err != nil {
		t.Fatalf("预置商品失败: %v", err)
	}

	service.SyncStaleGoods(context.Background())

	var g models.Goods
	if err := db.Where("goods_id = ?", "g1").First(&g).Error; err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if !g.Stale {
		t.Error("商品应被标记失效")
	}
}

func TestCleanupExpiredCoupon(t *testing.T) {
	db, service := setupGoodsTest(t, nil)

	expired := time.Now().Add(-time.Hour)
	alive := time.Now().Add(24 * time.Hour)
	if err := db.Create(&models.Goods{GoodsID: "old", CouponEndAt: &expired}).Error; err != nil {
		t.Fatalf("预置商品失败: %v", err)
	}
	if err := db.Create(&models.Goods{GoodsID: "new", CouponEndAt: &alive}).Error; err != nil {
		t.Fatalf("预置商品失败: %v", err)
	}

	if deleted := service.CleanupExpiredCoupon(); deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if got := goodsCount(t, db); got != 1 {
		t.Fatalf("goods count = %d, want 1", got)
	}
}

func TestTryLockBusy(t *testing.T) {
	_, service := setupGoodsTest(t, nil)
	service.lockTimeout = 10 * time.Millisecond

	if !service.tryLock("a") {
		t.Fatal("首个持锁应成功")
	}
	if service.tryLock("b") {
		t.Fatal("锁被占用时应放弃")
	}
	service.unlock()
	if !service.tryLock("c") {
		t.Fatal("释放后应可再次持锁")
	}
	service.unlock()
}
