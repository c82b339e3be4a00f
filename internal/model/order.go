package model

import (
	"slices"
	"time"
)

// ==================== Order 订单 ====================

// Order 顾客订单
// 订单与菜单项是多对多关系，通过显式的关联表 OrderMenuItem 表示，
// 关联表以 (order_id, menu_item_id) 为主键，同一菜单项在一个订单中只出现一次
type Order struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	CustomerID int64 `gorm:"index;not null"`
	Customer   *User `gorm:"foreignKey:CustomerID"`

	Items []OrderMenuItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	// 仅创建时写入
	CreatedAt time.Time `gorm:"<-:create;autoCreateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// MenuItemIDs 订单包含的菜单项 ID（升序）
func (o *Order) MenuItemIDs() []int64 {
	ids := make([]int64, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.MenuItemID
	}
	slices.Sort(ids)
	return ids
}

// OrderMenuItem 订单-菜单项关联
type OrderMenuItem struct {
	OrderID    int64     `gorm:"primaryKey;autoIncrement:false"`
	MenuItemID int64     `gorm:"primaryKey;autoIncrement:false;index"`
	MenuItem   *MenuItem `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
}

func (OrderMenuItem) TableName() string {
	return "order_menu_items"
}
