package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"food_order_api/internal/model"
)

// MenuFilter 菜单筛选条件，nil 表示不限
type MenuFilter struct {
	IsDiscounted *bool
	IsDrink      *bool
}

// ==================== MenuRepository 菜单仓库 ====================

// MenuRepository 菜单仓库接口
type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	GetByID(ctx context.Context, id int64) (*model.MenuItem, error)
	FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter MenuFilter) ([]model.MenuItem, error)
}

type menuRepository struct {
	db *gorm.DB
}

// NewMenuRepository 创建菜单仓库
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID 不存在返回 nil, nil
func (r *menuRepository) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindExistingIDs 返回 ids 中实际存在的 ID
func (r *menuRepository) FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	if len(ids) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.MenuItem{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	return found, err
}

func (r *menuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete 物理删除菜单项及其订单关联，返回是否删除了记录
func (r *menuRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", id).Delete(&model.OrderMenuItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.MenuItem{}, id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// List 按 ID 升序列出菜单项
func (r *menuRepository) List(ctx context.Context, filter MenuFilter) ([]model.MenuItem, error) {
	query := r.db.WithContext(ctx).Model(&model.MenuItem{})

	if filter.IsDiscounted != nil {
		query = query.Where("is_discounted = ?", *filter.IsDiscounted)
	}
	if filter.IsDrink != nil {
		query = query.Where("is_drink = ?", *filter.IsDrink)
	}

	var items []model.MenuItem
	err := query.Order("id ASC").Find(&items).Error
	return items, err
}
