package service

import (
	"strconv"

	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/repository"
)

// OrderService 订单服务
//
// 同步链路的落库收口：解析归因、保留历史归因、批量 upsert。
// 不触发任何入账，结算统一由对账任务处理。
type OrderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, userRepo repository.UserRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

// UpsertOrders 批量插入或更新订单，返回落库条数
//
// 归因解析失败不覆盖历史 user_id：重复同步时旧归因优先保留。
func (s *OrderService) UpsertOrders(orders []models.Order) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	orderKeys := make([]string, 0, len(orders))
	for i := range orders {
		orderKeys = append(orderKeys, orders[i].OrderKey)
	}
	existing, err := s.orderRepo.GetByOrderKeys(orderKeys)
	if err != nil {
		return 0, err
	}
	existingMap := make(map[string]*models.Order, len(existing))
	for i := range existing {
		existingMap[existing[i].OrderKey] = &existing[i]
	}

	for i := range orders {
		order := &orders[i]
		if userID := s.resolveUserID(order); userID != nil {
			order.UserID = userID
		}
		if old, ok := existingMap[order.OrderKey]; ok {
			order.ID = old.ID
			if order.UserID == nil {
				order.UserID = old.UserID
			}
		}
	}

	count, err := s.orderRepo.UpsertBatch(orders)
	if err != nil {
		return 0, err
	}
	logger.Infow("order_upsert_done", "count", count)
	return count, nil
}

// GetByOrderKey 按本站订单号查询
func (s *OrderService) GetByOrderKey(orderKey string) (*models.Order, error) {
	return s.orderRepo.GetByOrderKey(orderKey)
}

// List 订单列表查询
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// resolveUserID 归因令牌解析用户
//
// 优先走拆分字段 relationId/specialId（口径更可审计），
// 再按 sid 依次尝试 relationId、specialId、pddPid、jdAuthId、unionId。
func (s *OrderService) resolveUserID(order *models.Order) *uint {
	if order == nil {
		return nil
	}

	if order.RelationID != nil {
		if user := s.lookup(func() (*models.User, error) {
			return s.userRepo.GetByRelationID(*order.RelationID)
		}); user != nil {
			return &user.ID
		}
	}
	if order.SpecialID != nil {
		if user := s.lookup(func() (*models.User, error) {
			return s.userRepo.GetBySpecialID(*order.SpecialID)
		}); user != nil {
			return &user.ID
		}
	}

	if order.Sid == "" {
		return nil
	}
	if numeric, err := strconv.ParseInt(order.Sid, 10, 64); err == nil {
		if user := s.lookup(func() (*models.User, error) {
			return s.userRepo.GetByRelationID(numeric)
		}); user != nil {
			return &user.ID
		}
		if user := s.lookup(func() (*models.User, error) {
			return s.userRepo.GetBySpecialID(numeric)
		}); user != nil {
			return &user.ID
		}
		return nil
	}

	// 非数字令牌：拼多多推广位 / 京东授权 / 联盟 unionId
	for _, fn := range []func() (*models.User, error){
		func() (*models.User, error) { return s.userRepo.GetByPddPid(order.Sid) },
		func() (*models.User, error) { return s.userRepo.GetByJdAuthID(order.Sid) },
		func() (*models.User, error) { return s.userRepo.GetByUnionID(order.Sid) },
	} {
		if user := s.lookup(fn); user != nil {
			return &user.ID
		}
	}
	return nil
}

func (s *OrderService) lookup(fn func() (*models.User, error)) *models.User {
	user, err := fn()
	if err != nil {
		logger.Warnw("order_attribution_lookup_failed", "error", err)
		return nil
	}
	return user
}
