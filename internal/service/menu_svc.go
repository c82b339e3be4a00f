package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/model"
	"food_order_api/internal/repository"
	"food_order_api/internal/validation"
)

// 价格字段 decimal(6,2)
const (
	priceMaxDecimalPlaces = 2
	priceMaxWholeDigits   = 4
	priceMaxInputLength   = 1000
)

const msgNotNull = "This field may not be null."

// ==================== MenuService 菜单服务 ====================

// MenuService 菜单服务
type MenuService struct {
	menuRepo repository.MenuRepository
	log      *zap.Logger
}

// NewMenuService 创建菜单服务
func NewMenuService(menuRepo repository.MenuRepository, log *zap.Logger) *MenuService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MenuService{menuRepo: menuRepo, log: log}
}

// ==================== 查询 ====================

// List 全部菜单项
func (s *MenuService) List(ctx context.Context) ([]*dto.MenuItemInfo, error) {
	return s.list(ctx, repository.MenuFilter{})
}

// Discounted 打折的菜单项
func (s *MenuService) Discounted(ctx context.Context) ([]*dto.MenuItemInfo, error) {
	yes := true
	return s.list(ctx, repository.MenuFilter{IsDiscounted: &yes})
}

// Drinks 饮品
func (s *MenuService) Drinks(ctx context.Context) ([]*dto.MenuItemInfo, error) {
	yes := true
	return s.list(ctx, repository.MenuFilter{IsDrink: &yes})
}

func (s *MenuService) list(ctx context.Context, filter repository.MenuFilter) ([]*dto.MenuItemInfo, error) {
	items, err := s.menuRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.MenuItemInfo, len(items))
	for i := range items {
		list[i] = toMenuItemInfo(&items[i])
	}
	return list, nil
}

// Get 菜单项详情
func (s *MenuService) Get(ctx context.Context, id int64) (*dto.MenuItemInfo, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMenuItemInfo(item), nil
}

// ==================== 增删改 ====================

// Create 创建菜单项
func (s *MenuService) Create(ctx context.Context, req *dto.CreateMenuItemRequest) (*dto.MenuItemInfo, error) {
	item := &model.MenuItem{}
	if err := applyCreate(item, req); err != nil {
		return nil, err
	}

	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("menu item created", zap.Int64("menu_item_id", item.ID), zap.String("name", item.Name))
	return toMenuItemInfo(item), nil
}

// Replace 整体更新（PUT）
func (s *MenuService) Replace(ctx context.Context, id int64, req *dto.CreateMenuItemRequest) (*dto.MenuItemInfo, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCreate(item, req); err != nil {
		return nil, err
	}

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("menu item replaced", zap.Int64("menu_item_id", item.ID))
	return toMenuItemInfo(item), nil
}

// Update 部分更新（PATCH），只修改请求中出现的字段
func (s *MenuService) Update(ctx context.Context, id int64, req *dto.UpdateMenuItemRequest) (*dto.MenuItemInfo, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := validation.Struct(req)
	if fields == nil {
		fields = validation.FieldErrors{}
	}
	for _, name := range req.NullFields {
		fields.Add(name, msgNotNull)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			fields.Add("name", "This field may not be blank.")
		}
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			fields.Add("description", "This field may not be blank.")
		}
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		price, msg := parsePrice(string(*req.Price))
		if msg != "" {
			fields.Add("price", msg)
		}
		item.Price = price
	}
	if req.IsDiscounted != nil {
		item.IsDiscounted = *req.IsDiscounted
	}
	if req.IsDrink != nil {
		item.IsDrink = *req.IsDrink
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("menu item updated", zap.Int64("menu_item_id", item.ID))
	return toMenuItemInfo(item), nil
}

// Delete 删除菜单项，已有订单中的该项一并移除
func (s *MenuService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.menuRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMenuItemNotFound
	}

	s.log.Info("menu item deleted", zap.Int64("menu_item_id", id))
	return nil
}

// ==================== 辅助方法 ====================

func (s *MenuService) getItem(ctx context.Context, id int64) (*model.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}
	return item, nil
}

// applyCreate 校验完整请求并写入 item
func applyCreate(item *model.MenuItem, req *dto.CreateMenuItemRequest) error {
	fields := validation.Struct(req)
	if fields == nil {
		fields = validation.FieldErrors{}
	}

	name := strings.TrimSpace(req.Name)
	if _, bad := fields["name"]; !bad && name == "" {
		fields.Add("name", "This field may not be blank.")
	}
	description := strings.TrimSpace(req.Description)
	if _, bad := fields["description"]; !bad && description == "" {
		fields.Add("description", "This field may not be blank.")
	}

	var price decimal.Decimal
	if req.Price != nil {
		var msg string
		if price, msg = parsePrice(string(*req.Price)); msg != "" {
			fields.Add("price", msg)
		}
	}

	// null 覆盖 required 等其它错误
	for _, f := range req.NullFields {
		fields[f] = []string{msgNotNull}
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}

	item.Name = name
	item.Description = description
	item.Price = price
	item.IsDiscounted = req.IsDiscounted
	item.IsDrink = req.IsDrink
	return nil
}

// parsePrice 解析价格，失败时返回错误信息
// 最多 4 位整数、2 位小数，不能为负
// 位数只看指数和系数，不做会按指数展开的比较运算
func parsePrice(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if len(raw) > priceMaxInputLength {
		return decimal.Zero, "String value too large."
	}
	if raw == "" || raw == "null" {
		return decimal.Zero, "A valid number is required."
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "A valid number is required."
	}

	if d.Exponent() < -priceMaxDecimalPlaces {
		return decimal.Zero, "Ensure that there are no more than 2 decimal places."
	}
	// 0e100 之类的写法直接归零
	if d.IsZero() {
		return decimal.Zero, ""
	}
	if wholeDigits(d) > priceMaxWholeDigits {
		return decimal.Zero, "Ensure that there are no more than 4 digits before the decimal point."
	}
	if d.IsNegative() {
		return decimal.Zero, "Ensure this value is greater than or equal to 0."
	}
	return d, ""
}

// wholeDigits 整数部分位数，d 非零且指数 >= -2
func wholeDigits(d decimal.Decimal) int64 {
	digits := int64(len(d.Coefficient().Text(10)))
	if d.IsNegative() {
		digits--
	}
	return digits + int64(d.Exponent())
}

func toMenuItemInfo(item *model.MenuItem) *dto.MenuItemInfo {
	return &dto.MenuItemInfo{
		ID:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price.StringFixed(priceMaxDecimalPlaces),
		IsDiscounted: item.IsDiscounted,
		IsDrink:      item.IsDrink,
	}
}
