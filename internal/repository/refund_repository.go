package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tip-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefundRepository 退款证据链数据访问接口
type RefundRepository interface {
	Upsert(refund *models.OrderRefund) error
	GetByTradeID(tradeID string) (*models.OrderRefund, error)
}

// GormRefundRepository GORM 退款证据链仓储实现
type GormRefundRepository struct {
	db *gorm.DB
}

// NewRefundRepository 创建退款证据链仓储
func NewRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// Upsert 按 trade_id 幂等落证据，重复同步覆盖原始报文
func (r *GormRefundRepository) Upsert(refund *models.OrderRefund) error {
	if refund == nil || strings.TrimSpace(refund.TradeID) == "" {
		return errors.New("refund trade id is empty")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trade_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"order_key":  refund.OrderKey,
			"raw_json":   refund.RawJSON,
			"updated_at": time.Now(),
		}),
	}).Create(refund).Error
}

// GetByTradeID 按三方订单号查询证据
func (r *GormRefundRepository) GetByTradeID(tradeID string) (*models.OrderRefund, error) {
	tradeID = strings.TrimSpace(tradeID)
	if tradeID == "" {
		return nil, nil
	}
	var refund models.OrderRefund
	if err := r.db.Where("trade_id = ?", tradeID).First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}
