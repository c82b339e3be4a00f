package middleware

import (
	"context"
	"reflect"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ==================== 审计上下文 ====================

// AuditContext Key
type auditContextKey struct{}

// AuditInfo 审计信息
type AuditInfo struct {
	UserID   int64
	Username string
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, userID int64, username string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{
		UserID:   userID,
		Username: username,
	})
}

// GetAuditInfo 从 context 获取审计信息
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// GetAuditUserID 从 context 获取审计用户 ID
func GetAuditUserID(ctx context.Context) int64 {
	if info := GetAuditInfo(ctx); info != nil {
		return info.UserID
	}
	return 0
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件
// 将当前 Actor 注入 request context，供 GORM 回调填充 CreatedBy/UpdatedBy
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor.Authenticated() {
			ctx := WithAuditInfo(c.Request.Context(), actor.ID, actor.Username)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// ==================== GORM 回调 ====================

// RegisterAuditCallbacks 注册 GORM 审计回调
// 仅对含 CreatedBy/UpdatedBy 字段的模型生效
func RegisterAuditCallbacks(db *gorm.DB) error {
	err := db.Callback().Create().Before("gorm:create").Register("audit:create", func(tx *gorm.DB) {
		userID := GetAuditUserID(tx.Statement.Context)
		if userID == 0 {
			return
		}

		setAuditField(tx, "CreatedBy", userID, true)
		setAuditField(tx, "UpdatedBy", userID, true)
	})
	if err != nil {
		return err
	}

	return db.Callback().Update().Before("gorm:update").Register("audit:update", func(tx *gorm.DB) {
		userID := GetAuditUserID(tx.Statement.Context)
		if userID == 0 {
			return
		}

		// 更新时总是覆盖 UpdatedBy
		setAuditField(tx, "UpdatedBy", userID, false)
	})
}

// setAuditField 设置审计字段，onlyZero 为 true 时不覆盖已有值
func setAuditField(tx *gorm.DB, fieldName string, value int64, onlyZero bool) {
	if tx.Statement.Schema == nil {
		return
	}

	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	ctx := tx.Statement.Context
	set := func(rv reflect.Value) {
		if _, isZero := field.ValueOf(ctx, rv); isZero || !onlyZero {
			_ = field.Set(ctx, rv, value)
		}
	}

	switch tx.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		set(tx.Statement.ReflectValue)
	case reflect.Slice, reflect.Array:
		for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
			set(reflect.Indirect(tx.Statement.ReflectValue.Index(i)))
		}
	}
}
