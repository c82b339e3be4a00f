package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"food_order_api/internal/model"
	"food_order_api/internal/policy"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey       string        // 签名密钥
	AccessTokenTTL  time.Duration // Access Token 有效期
	RefreshTokenTTL time.Duration // Refresh Token 有效期
	Issuer          string        // 签发者
}

// DefaultJWTConfig 默认配置，仅用于测试，生产环境由 config 覆盖
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:       "food-order-secret-key-change-in-production",
		AccessTokenTTL:  2 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "food-order-api",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// GetJWTConfig 获取 JWT 配置
func GetJWTConfig() *JWTConfig {
	return jwtConfig
}

// Token 类型，写在 Subject 中
const (
	TokenSubjectAccess  = "access"
	TokenSubjectRefresh = "refresh"
)

// ==================== Claims 定义 ====================

// UserClaims 用户声明
type UserClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Actor 转换为权限判定使用的身份
func (c *UserClaims) Actor() policy.Actor {
	return policy.Actor{
		ID:       c.UserID,
		Username: c.Username,
		Role:     model.Role(c.Role),
	}
}

// ==================== Token 生成 ====================

func generateToken(subject string, ttl time.Duration, userID int64, username, role string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// GenerateAccessToken 生成 Access Token
func GenerateAccessToken(userID int64, username, role string) (string, error) {
	return generateToken(TokenSubjectAccess, jwtConfig.AccessTokenTTL, userID, username, role)
}

// GenerateRefreshToken 生成 Refresh Token
func GenerateRefreshToken(userID int64, username, role string) (string, error) {
	return generateToken(TokenSubjectRefresh, jwtConfig.RefreshTokenTTL, userID, username, role)
}

// GenerateTokenPair 生成 Token 对
func GenerateTokenPair(userID int64, username, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = GenerateAccessToken(userID, username, role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = GenerateRefreshToken(userID, username, role)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ==================== Token 解析 ====================

// ParseToken 解析 Token
func ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	}, jwt.WithIssuer(jwtConfig.Issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// ContextKeyActor 当前身份在 gin.Context 中的 key
const ContextKeyActor = "actor"

// ActorLoader 按用户 ID 读取当前身份，ok 为 false 表示用户不存在或已停用
type ActorLoader interface {
	LoadActor(ctx context.Context, userID int64) (actor policy.Actor, ok bool, err error)
}

// Authenticate 解析 Bearer Token 并注入 Actor
// 未携带 Authorization 时以匿名身份继续，是否放行交给 Authorize；
// 携带了但格式错误、过期或类型不对时直接返回 401。
// loader 非 nil 时角色和启用状态以 loader 返回为准，停用的用户立即失去访问权限；
// loader 为 nil 时只信任 Token 中的声明
func Authenticate(loader ActorLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextKeyActor, policy.Anonymous())
			c.Next()
			return
		}

		// 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortUnauthorized(c, "invalid authorization header, expected: Bearer {token}")
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "token is invalid or expired")
			return
		}

		// 只接受 Access Token
		if claims.Subject != TokenSubjectAccess {
			abortUnauthorized(c, "token type is not access")
			return
		}

		actor := claims.Actor()
		if loader != nil {
			current, ok, err := loader.LoadActor(c.Request.Context(), claims.UserID)
			if err != nil {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": "internal server error",
				})
				return
			}
			if !ok {
				abortUnauthorized(c, "user not found or inactive")
				return
			}
			actor = current
		}

		c.Set(ContextKeyActor, actor)

		c.Next()
	}
}

// Authorize 按权限表判定当前 Actor 能否访问
func Authorize(resource policy.Resource, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Authorize(CurrentActor(c), resource, action); err != nil {
			AbortWithPolicyError(c, err)
			return
		}
		c.Next()
	}
}

// AbortWithPolicyError 输出 401 / 403 并终止请求
func AbortWithPolicyError(c *gin.Context, err error) {
	if errors.Is(err, policy.ErrAuthenticationRequired) {
		abortUnauthorized(c, err.Error())
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"code":    http.StatusForbidden,
		"message": err.Error(),
	})
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}

// ==================== 辅助函数 ====================

// CurrentActor 从 Context 获取当前身份，未经过 Authenticate 时视为匿名
func CurrentActor(c *gin.Context) policy.Actor {
	if v, exists := c.Get(ContextKeyActor); exists {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}

// GetUserID 从 Context 获取用户 ID，匿名为 0
func GetUserID(c *gin.Context) int64 {
	return CurrentActor(c).ID
}
