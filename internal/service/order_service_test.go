package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/repository"
)

func setupOrderServiceTest(t *testing.T) (*gorm.DB, *OrderService) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return db, NewOrderService(repository.NewOrderRepository(db), repository.NewUserRepository(db))
}

func createUser(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

func int64Ptr(v int64) *int64 {
	return &v
}

func fetchOrder(t *testing.T, db *gorm.DB, orderKey string) *models.Order {
	t.Helper()
	var order models.Order
	if err := db.Where("order_key = ?", orderKey).First(&order).Error; err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	return &order
}

func TestUpsertOrdersAttributesByRelationID(t *testing.T) {
	db, service := setupOrderServiceTest(t)
	user := createUser(t, db, &models.User{Nickname: "甲", RelationID: int64Ptr(2233)})

	count, err := service.UpsertOrders([]models.Order{{
		OrderKey:        "TB_OPEN_1",
		ExternalTradeID: "1",
		RelationID:      int64Ptr(2233),
	}})
	if err != nil {
		t.Fatalf("落库失败: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	order := fetchOrder(t, db, "TB_OPEN_1")
	if order.UserID == nil || *order.UserID != user.ID {
		t.Fatalf("user id = %v, want %d", order.UserID, user.ID)
	}
}

func TestUpsertOrdersAttributesBySid(t *testing.T) {
	db, service := setupOrderServiceTest(t)
	special := createUser(t, db, &models.User{Nickname: "乙", SpecialID: int64Ptr(9900)})
	pdd := createUser(t, db, &models.User{Nickname: "丙", PddPid: "pdd_abc"})

	if _, err := service.UpsertOrders([]models.Order{
		{OrderKey: "DTK_10", ExternalTradeID: "10", Sid: "9900"},    // 数字令牌走 relation/special
		{OrderKey: "DTK_11", ExternalTradeID: "11", Sid: "pdd_abc"}, // 非数字令牌走 pdd/jd/union
		{OrderKey: "DTK_12", ExternalTradeID: "12", Sid: "no_such"},
	}); err != nil {
		t.Fatalf("落库失败: %v", err)
	}

	if order := fetchOrder(t, db, "DTK_10"); order.UserID == nil || *order.UserID != special.ID {
		t.Errorf("DTK_10 user id = %v, want %d", order.UserID, special.ID)
	}
	if order := fetchOrder(t, db, "DTK_11"); order.UserID == nil || *order.UserID != pdd.ID {
		t.Errorf("DTK_11 user id = %v, want %d", order.UserID, pdd.ID)
	}
	if order := fetchOrder(t, db, "DTK_12"); order.UserID != nil {
		t.Errorf("DTK_12 user id = %v, want nil", order.UserID)
	}
}

func TestUpsertOrdersPreservesHistoricalAttribution(t *testing.T) {
	db, service := setupOrderServiceTest(t)
	user := createUser(t, db, &models.User{Nickname: "丁", RelationID: int64Ptr(7788)})

	if _, err := service.UpsertOrders([]models.Order{{
		OrderKey:        "TB_OPEN_20",
		ExternalTradeID: "20",
		RelationID:      int64Ptr(7788),
	}}); err != nil {
		t.Fatalf("首次落库失败: %v", err)
	}
	original := fetchOrder(t, db, "TB_OPEN_20")

	// 重复同步丢失归因令牌时保留历史 user_id
	if _, err := service.UpsertOrders([]models.Order{{
		OrderKey:        "TB_OPEN_20",
		ExternalTradeID: "20",
		OrderTitle:      "更新标题",
	}}); err != nil {
		t.Fatalf("二次落库失败: %v", err)
	}

	order := fetchOrder(t, db, "TB_OPEN_20")
	if order.ID != original.ID {
		t.Errorf("id = %d, want %d (原地更新)", order.ID, original.ID)
	}
	if order.UserID == nil || *order.UserID != user.ID {
		t.Errorf("user id = %v, 历史归因应保留", order.UserID)
	}
	if order.OrderTitle != "更新标题" {
		t.Errorf("title = %s", order.OrderTitle)
	}
}
