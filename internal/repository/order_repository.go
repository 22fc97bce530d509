package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tip-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	GetByOrderKey(orderKey string) (*models.Order, error)
	GetByOrderKeys(orderKeys []string) ([]models.Order, error)
	UpsertBatch(orders []models.Order) (int, error)
	ListAttributedAfterID(lastID uint, limit int) ([]models.Order, error)
	UpdateCreditedFee(orderID uint, desired models.Money) error
	MarkRefundByTradeID(tradeID string, refundStatus int, statusContent string) error
	MarkPunishedByTradeID(tradeID string, reason string) error
	List(filter OrderListFilter) ([]models.Order, int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByOrderKey 按本站订单号查询
func (r *GormOrderRepository) GetByOrderKey(orderKey string) (*models.Order, error) {
	orderKey = strings.TrimSpace(orderKey)
	if orderKey == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Where("order_key = ?", orderKey).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderKeys 批量按本站订单号查询
func (r *GormOrderRepository) GetByOrderKeys(orderKeys []string) ([]models.Order, error) {
	if len(orderKeys) == 0 {
		return []models.Order{}, nil
	}
	var orders []models.Order
	if err := r.db.Where("order_key IN ?", orderKeys).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpsertBatch 批量插入或按 order_key 原地更新
//
// 并发安全依赖 order_key 唯一约束，不另加锁：
// 同一批次内相同 order_key 后写覆盖先写，跨批次后执行者覆盖先执行者。
func (r *GormOrderRepository) UpsertBatch(orders []models.Order) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"external_trade_id", "union_platform", "platform_no", "platform_name",
			"order_title", "img", "sid", "relation_id", "special_id", "adzone_id", "user_id",
			"order_amount", "paid_amount", "share_rate",
			"gross_commission", "user_estimate_fee",
			"base_deduction_rate", "base_deduction_fee",
			"platform_profit_rate", "platform_profit_fee",
			"user_share_rate", "order_discount",
			"status", "real_status", "status_content", "refund_status",
			"pay_time", "earn_time", "modify_time", "pay_month", "estimate_date",
			"updated_at",
		}),
	}).Create(&orders)
	if result.Error != nil {
		return 0, result.Error
	}
	return len(orders), nil
}

// ListAttributedAfterID 按 id 递增的 keyset 分页扫描已归因订单
//
// 结算对账必须用 keyset 分页：offset 在大表且有并发写入时会退化并漏读/重读。
func (r *GormOrderRepository) ListAttributedAfterID(lastID uint, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 500
	}
	var orders []models.Order
	if err := r.db.Where("user_id IS NOT NULL AND id > ?", lastID).
		Order("id asc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateCreditedFee 回写结算锚点
func (r *GormOrderRepository) UpdateCreditedFee(orderID uint, desired models.Money) error {
	if orderID == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"credited_fee": desired,
			"updated_at":   time.Now(),
		}).Error
}

// MarkRefundByTradeID 按三方订单号更新退款状态
func (r *GormOrderRepository) MarkRefundByTradeID(tradeID string, refundStatus int, statusContent string) error {
	tradeID = strings.TrimSpace(tradeID)
	if tradeID == "" {
		return nil
	}
	return r.db.Model(&models.Order{}).
		Where("external_trade_id = ?", tradeID).
		Updates(map[string]interface{}{
			"refund_status":  refundStatus,
			"status_content": statusContent,
			"updated_at":     time.Now(),
		}).Error
}

// MarkPunishedByTradeID 按三方订单号锁单并记录处罚原因
func (r *GormOrderRepository) MarkPunishedByTradeID(tradeID string, reason string) error {
	tradeID = strings.TrimSpace(tradeID)
	if tradeID == "" {
		return nil
	}
	return r.db.Model(&models.Order{}).
		Where("external_trade_id = ?", tradeID).
		Updates(map[string]interface{}{
			"locked":         true,
			"punish_reason":  reason,
			"status_content": "订单处罚/违规：" + reason,
			"updated_at":     time.Now(),
		}).Error
}

// List 分页查询订单
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UnionPlatform != "" {
		query = query.Where("union_platform = ?", filter.UnionPlatform)
	}
	if filter.PayMonth != "" {
		query = query.Where("pay_month = ?", filter.PayMonth)
	}
	if filter.PayTimeFrom != nil {
		query = query.Where("pay_time >= ?", *filter.PayTimeFrom)
	}
	if filter.PayTimeTo != nil {
		query = query.Where("pay_time <= ?", *filter.PayTimeTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
