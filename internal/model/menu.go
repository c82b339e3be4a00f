package model

import "github.com/shopspring/decimal"

// MenuItem 菜单项
type MenuItem struct {
	BaseModel
	AuditMixin
	Name         string          `gorm:"size:100;not null"`
	Description  string          `gorm:"type:text;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	IsDiscounted bool            `gorm:"default:false;index"`
	IsDrink      bool            `gorm:"default:false;index"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
