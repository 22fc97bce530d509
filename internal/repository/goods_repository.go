package repository

import (
	"time"

	"github.com/tip-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoodsRepository 本地商品库数据访问接口
type GoodsRepository interface {
	Count() (int64, error)
	UpsertBatch(goods []models.Goods) (int, error)
	MarkStale(goodsIDs []string) (int64, error)
	DeleteExpiredCoupon(before time.Time) (int64, error)
	List(filter GoodsListFilter) ([]models.Goods, int64, error)
}

// GormGoodsRepository GORM 本地商品库仓储实现
type GormGoodsRepository struct {
	db *gorm.DB
}

// NewGoodsRepository 创建本地商品库仓储
func NewGoodsRepository(db *gorm.DB) *GormGoodsRepository {
	return &GormGoodsRepository{db: db}
}

// Count 统计商品总数
func (r *GormGoodsRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Goods{}).Count(&count).Error
	return count, err
}

// UpsertBatch 批量插入或按 goods_id 原地更新
func (r *GormGoodsRepository) UpsertBatch(goods []models.Goods) (int, error) {
	if len(goods) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "goods_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"item_id", "title", "main_pic",
			"origin_price", "actual_price", "coupon_price", "coupon_end_at",
			"sales", "stale", "updated_at",
		}),
	}).Create(&goods)
	if result.Error != nil {
		return 0, result.Error
	}
	return len(goods), nil
}

// MarkStale 批量标记失效商品
func (r *GormGoodsRepository) MarkStale(goodsIDs []string) (int64, error) {
	if len(goodsIDs) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Goods{}).
		Where("goods_id IN ?", goodsIDs).
		Updates(map[string]interface{}{
			"stale":      true,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// DeleteExpiredCoupon 清理优惠券已过期的商品
func (r *GormGoodsRepository) DeleteExpiredCoupon(before time.Time) (int64, error) {
	result := r.db.Where("coupon_end_at IS NOT NULL AND coupon_end_at < ?", before).
		Delete(&models.Goods{})
	return result.RowsAffected, result.Error
}

// List 分页查询商品
func (r *GormGoodsRepository) List(filter GoodsListFilter) ([]models.Goods, int64, error) {
	query := r.db.Model(&models.Goods{})
	if filter.Keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"title", "item_id"})
		if argCount > 0 {
			query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
		}
	}
	if filter.OnlyAlive {
		query = query.Where("stale = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var goods []models.Goods
	if err := query.Order("id desc").Find(&goods).Error; err != nil {
		return nil, 0, err
	}
	return goods, total, nil
}
