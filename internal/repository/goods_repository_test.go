package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tip-next/internal/models"
)

func setupGoodsRepoTest(t *testing.T) *GormGoodsRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:goods_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Goods{}); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return NewGoodsRepository(db)
}

func TestGoodsUpsertBatch(t *testing.T) {
	repo := setupGoodsRepoTest(t)

	count, err := repo.UpsertBatch([]models.Goods{
		{GoodsID: "g1", Title: "保温杯"},
		{GoodsID: "g2", Title: "雨伞"},
	})
	if err != nil {
		t.Fatalf("落库失败: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// 重复 goodsId 原地更新
	if _, err := repo.UpsertBatch([]models.Goods{{GoodsID: "g1", Title: "保温杯升级款"}}); err != nil {
		t.Fatalf("二次落库失败: %v", err)
	}
	total, err := repo.Count()
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
}

func TestGoodsListKeywordAndAlive(t *testing.T) {
	repo := setupGoodsRepoTest(t)
	if _, err := repo.UpsertBatch([]models.Goods{
		{GoodsID: "g1", Title: "不锈钢保温杯", ItemID: "item1"},
		{GoodsID: "g2", Title: "折叠雨伞", ItemID: "item2", Stale: true},
		{GoodsID: "g3", Title: "玻璃保温杯", ItemID: "item3", Stale: true},
	}); err != nil {
		t.Fatalf("落库失败: %v", err)
	}

	_, total, err := repo.List(GoodsListFilter{Keyword: "保温杯", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("关键词查询失败: %v", err)
	}
	if total != 2 {
		t.Errorf("keyword total = %d, want 2", total)
	}

	list, total, err := repo.List(GoodsListFilter{Keyword: "保温杯", OnlyAlive: true, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("在售过滤失败: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].GoodsID != "g1" {
		t.Errorf("alive list = %+v, total = %d", list, total)
	}

	// 关键词命中 item_id 口径
	_, total, err = repo.List(GoodsListFilter{Keyword: "item2", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("item_id 查询失败: %v", err)
	}
	if total != 1 {
		t.Errorf("item_id total = %d, want 1", total)
	}
}
