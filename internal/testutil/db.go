// Package testutil 提供测试用的内存数据库和数据构造函数。
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food_order_api/internal/model"
)

// NewDB 创建独立的 SQLite 内存数据库并迁移全部模型
// 每个测试使用唯一的库名，共享缓存保证同一测试内多个连接看到同一份数据
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateUser 直接写入一个用户，密码为 password
func CreateUser(t testing.TB, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateMenuItem 直接写入一个菜单项
func CreateMenuItem(t testing.TB, db *gorm.DB, name, price string, discounted, drink bool) *model.MenuItem {
	t.Helper()

	item := &model.MenuItem{
		Name:         name,
		Description:  name + " description",
		Price:        decimal.RequireFromString(price),
		IsDiscounted: discounted,
		IsDrink:      drink,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create menu item %s: %v", name, err)
	}
	return item
}
