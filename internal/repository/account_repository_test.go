package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tip-next/internal/models"
)

func setupAccountRepoTest(t *testing.T) *GormAccountRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:account_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return NewAccountRepository(db)
}

func TestGetOrCreate(t *testing.T) {
	repo := setupAccountRepoTest(t)

	account, err := repo.GetOrCreate(1)
	if err != nil {
		t.Fatalf("创建账户失败: %v", err)
	}
	if account.UserID != 1 {
		t.Fatalf("user id = %d", account.UserID)
	}
	if account.Balance.String() != "0.00" {
		t.Errorf("初始余额 = %s, want 0.00", account.Balance.String())
	}

	again, err := repo.GetOrCreate(1)
	if err != nil {
		t.Fatalf("二次获取失败: %v", err)
	}
	if again.ID != account.ID {
		t.Errorf("重复创建: %d != %d", again.ID, account.ID)
	}

	if _, err := repo.GetOrCreate(0); err == nil {
		t.Error("user id 为 0 应报错")
	}
}

func TestAddBalanceTracksTotalIncome(t *testing.T) {
	repo := setupAccountRepoTest(t)

	// 正向入账同时累计收益，账户不存在时自动创建
	if err := repo.AddBalance(2, models.NewMoneyFromFloat(30.00)); err != nil {
		t.Fatalf("入账失败: %v", err)
	}
	// 冲账只动余额
	if err := repo.AddBalance(2, models.NewMoneyFromFloat(-10.00)); err != nil {
		t.Fatalf("冲账失败: %v", err)
	}

	account, err := repo.GetByUserID(2)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if account.Balance.String() != "20.00" {
		t.Errorf("balance = %s, want 20.00", account.Balance.String())
	}
	if account.TotalIncome.String() != "30.00" {
		t.Errorf("total income = %s, want 30.00", account.TotalIncome.String())
	}

	// 零金额是空操作
	if err := repo.AddBalance(2, models.ZeroMoney()); err != nil {
		t.Fatalf("零金额应为空操作: %v", err)
	}
}

func TestFreezeUnfreezeDeduct(t *testing.T) {
	repo := setupAccountRepoTest(t)
	if err := repo.AddBalance(3, models.NewMoneyFromFloat(50.00)); err != nil {
		t.Fatalf("入账失败: %v", err)
	}

	// 余额不足时拒绝冻结
	if err := repo.Freeze(3, models.NewMoneyFromFloat(80.00)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("超额冻结 err = %v, want ErrInsufficientBalance", err)
	}

	if err := repo.Freeze(3, models.NewMoneyFromFloat(30.00)); err != nil {
		t.Fatalf("冻结失败: %v", err)
	}
	account, _ := repo.GetByUserID(3)
	if account.Balance.String() != "20.00" || account.Frozen.String() != "30.00" {
		t.Fatalf("冻结后 balance = %s frozen = %s", account.Balance.String(), account.Frozen.String())
	}

	// 提现驳回：解冻回到余额
	if err := repo.Unfreeze(3, models.NewMoneyFromFloat(10.00)); err != nil {
		t.Fatalf("解冻失败: %v", err)
	}
	// 打款成功：扣减冻结并累计提现
	if err := repo.DeductFrozen(3, models.NewMoneyFromFloat(20.00)); err != nil {
		t.Fatalf("扣减失败: %v", err)
	}

	account, _ = repo.GetByUserID(3)
	if account.Balance.String() != "30.00" {
		t.Errorf("balance = %s, want 30.00", account.Balance.String())
	}
	if account.Frozen.String() != "0.00" {
		t.Errorf("frozen = %s, want 0.00", account.Frozen.String())
	}
	if account.TotalWithdraw.String() != "20.00" {
		t.Errorf("total withdraw = %s, want 20.00", account.TotalWithdraw.String())
	}

	// 冻结余额不足时拒绝扣减
	if err := repo.DeductFrozen(3, models.NewMoneyFromFloat(1.00)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("超额扣减 err = %v, want ErrInsufficientBalance", err)
	}
}
