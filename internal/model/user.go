package model

import "time"

// ==================== 角色 ====================

// Role 用户角色，员工与顾客互斥
type Role string

const (
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleStaff || r == RoleCustomer
}

// IsStaff 是否员工
func (r Role) IsStaff() bool {
	return r == RoleStaff
}

// ==================== User 用户 ====================

// User 用户（员工 / 顾客）
type User struct {
	BaseModel
	Username    string `gorm:"size:150;uniqueIndex;not null"`
	Password    string `gorm:"size:128;not null" json:"-"` // bcrypt 哈希
	Email       string `gorm:"size:254;not null"`
	FirstName   string `gorm:"size:150"`
	LastName    string `gorm:"size:150"`
	Role        Role   `gorm:"size:20;index;not null;default:customer"`
	IsActive    bool   `gorm:"default:true"`
	LastLoginAt *time.Time

	// 删除用户时级联删除其订单
	Orders []Order `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}
