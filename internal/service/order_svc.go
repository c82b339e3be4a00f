package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/model"
	"food_order_api/internal/policy"
	"food_order_api/internal/repository"
	"food_order_api/internal/validation"
)

// ==================== OrderService 订单服务 ====================

// OrderService 订单服务
type OrderService struct {
	orderRepo repository.OrderRepository
	menuRepo  repository.MenuRepository
	log       *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, menuRepo repository.MenuRepository, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{orderRepo: orderRepo, menuRepo: menuRepo, log: log}
}

// ==================== 下单 ====================

// Create 为当前用户创建订单
// 订单归属于 actor，重复的菜单项只记录一次
func (s *OrderService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateOrderRequest) (*dto.OrderInfo, error) {
	if !actor.Authenticated() {
		return nil, policy.ErrAuthenticationRequired
	}

	if len(req.MenuItems) == 0 {
		return nil, FieldError("menu_items", "This list may not be empty.")
	}

	ids := uniqueIDs(req.MenuItems)

	existing, err := s.menuRepo.FindExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}

	fields := validation.FieldErrors{}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			fields.Add("menu_items", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	order := &model.Order{
		CustomerID: actor.ID,
		Items:      make([]model.OrderMenuItem, len(ids)),
	}
	for i, id := range ids {
		order.Items[i] = model.OrderMenuItem{MenuItemID: id}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int64s("menu_items", order.MenuItemIDs()),
	)
	return toOrderInfo(order), nil
}

// ==================== 查询 ====================

// List 全部订单
func (s *OrderService) List(ctx context.Context) ([]*dto.OrderInfo, error) {
	return s.list(ctx, repository.OrderFilter{})
}

// Get 订单详情
func (s *OrderService) Get(ctx context.Context, id int64) (*dto.OrderInfo, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return toOrderInfo(order), nil
}

// CustomerOrders 员工看到全部订单，顾客只看到自己的订单
func (s *OrderService) CustomerOrders(ctx context.Context, actor policy.Actor) ([]*dto.OrderInfo, error) {
	if !actor.Authenticated() {
		return nil, policy.ErrAuthenticationRequired
	}
	if actor.IsStaff() {
		return s.list(ctx, repository.OrderFilter{})
	}
	return s.list(ctx, repository.OrderFilter{CustomerID: actor.ID})
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter) ([]*dto.OrderInfo, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.OrderInfo, len(orders))
	for i := range orders {
		list[i] = toOrderInfo(&orders[i])
	}
	return list, nil
}

// ==================== 辅助方法 ====================

// uniqueIDs 去重并保持原有顺序
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toOrderInfo(order *model.Order) *dto.OrderInfo {
	return &dto.OrderInfo{
		ID:        order.ID,
		Customer:  order.CustomerID,
		MenuItems: order.MenuItemIDs(),
		CreatedAt: order.CreatedAt,
	}
}
