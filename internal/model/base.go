package model

import "time"

// BaseModel 公共字段
// 本系统的资源都是物理删除，不带 DeletedAt
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditMixin 审计字段，由 middleware.RegisterAuditCallbacks 自动填充
type AuditMixin struct {
	CreatedBy int64 `gorm:"index;comment:创建人ID" json:"-"`
	UpdatedBy int64 `gorm:"comment:更新人ID" json:"-"`
}

// All 需要迁移的全部模型，顺序即建表顺序
func All() []interface{} {
	return []interface{}{
		&User{},
		&MenuItem{},
		&Order{},
		&OrderMenuItem{},
	}
}
