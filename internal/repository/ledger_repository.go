package repository

import (
	"errors"
	"strings"

	"github.com/tip-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository 资金流水数据访问接口
type LedgerRepository interface {
	InsertIgnore(entry *models.LedgerEntry) (bool, error)
	GetByIdempotencyKey(key string) (*models.LedgerEntry, error)
	List(filter LedgerListFilter) ([]models.LedgerEntry, int64, error)
	WithTx(tx *gorm.DB) *GormLedgerRepository
}

// GormLedgerRepository GORM 资金流水仓储实现
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建资金流水仓储
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) *GormLedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// InsertIgnore 幂等插入流水
//
// idempotency_key 冲突时不报错不更新，返回 false 表示"已入账"。
// 返回 true 才允许调用方应用余额变更。
func (r *GormLedgerRepository) InsertIgnore(entry *models.LedgerEntry) (bool, error) {
	if entry == nil || strings.TrimSpace(entry.IdempotencyKey) == "" {
		return false, errors.New("ledger entry idempotency key is empty")
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByIdempotencyKey 按幂等键查询流水
func (r *GormLedgerRepository) GetByIdempotencyKey(key string) (*models.LedgerEntry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var entry models.LedgerEntry
	if err := r.db.Where("idempotency_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// List 分页查询资金流水
func (r *GormLedgerRepository) List(filter LedgerListFilter) ([]models.LedgerEntry, int64, error) {
	query := r.db.Model(&models.LedgerEntry{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderKey != "" {
		query = query.Where("order_key = ?", filter.OrderKey)
	}
	if filter.ChangeType != nil {
		query = query.Where("change_type = ?", *filter.ChangeType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var entries []models.LedgerEntry
	if err := query.Order("id desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
