package repository

import (
	"errors"

	"github.com/tip-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientBalance 余额不足
var ErrInsufficientBalance = errors.New("insufficient balance")

// AccountRepository 资金账户数据访问接口
type AccountRepository interface {
	GetByUserID(userID uint) (*models.Account, error)
	GetOrCreate(userID uint) (*models.Account, error)
	AddBalance(userID uint, delta models.Money) error
	Freeze(userID uint, amount models.Money) error
	Unfreeze(userID uint, amount models.Money) error
	DeductFrozen(userID uint, amount models.Money) error
	WithTx(tx *gorm.DB) *GormAccountRepository
}

// GormAccountRepository GORM 资金账户仓储实现
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建资金账户仓储
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAccountRepository) WithTx(tx *gorm.DB) *GormAccountRepository {
	if tx == nil {
		return r
	}
	return &GormAccountRepository{db: tx}
}

// GetByUserID 按用户ID获取资金账户
func (r *GormAccountRepository) GetByUserID(userID uint) (*models.Account, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.Account
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetOrCreate 获取资金账户，不存在时创建零账户
func (r *GormAccountRepository) GetOrCreate(userID uint) (*models.Account, error) {
	if userID == 0 {
		return nil, errors.New("user id is zero")
	}
	account, err := r.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.Account{UserID: userID}
	// 并发创建竞争时落在唯一约束上，冲突方重查即可
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(account).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

// AddBalance 余额增量更新（入账为正，冲账为负）
//
// 正向变更同时累计 total_income，负向只动余额。
func (r *GormAccountRepository) AddBalance(userID uint, delta models.Money) error {
	if userID == 0 || delta.Decimal.IsZero() {
		return nil
	}
	if _, err := r.GetOrCreate(userID); err != nil {
		return err
	}
	assignments := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", delta),
	}
	if delta.Decimal.IsPositive() {
		assignments["total_income"] = gorm.Expr("total_income + ?", delta)
	}
	return r.db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Updates(assignments).Error
}

// Freeze 冻结余额（提现申请）
func (r *GormAccountRepository) Freeze(userID uint, amount models.Money) error {
	result := r.db.Model(&models.Account{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance - ?", amount),
			"frozen":  gorm.Expr("frozen + ?", amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// Unfreeze 解冻余额（提现失败/驳回）
func (r *GormAccountRepository) Unfreeze(userID uint, amount models.Money) error {
	result := r.db.Model(&models.Account{}).
		Where("user_id = ? AND frozen >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"frozen":  gorm.Expr("frozen - ?", amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// DeductFrozen 扣减冻结金额（提现打款成功）
func (r *GormAccountRepository) DeductFrozen(userID uint, amount models.Money) error {
	result := r.db.Model(&models.Account{}).
		Where("user_id = ? AND frozen >= ?", userID, amount).
		Updates(map[string]interface{}{
			"frozen":         gorm.Expr("frozen - ?", amount),
			"total_withdraw": gorm.Expr("total_withdraw + ?", amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}
