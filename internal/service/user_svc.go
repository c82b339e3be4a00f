package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/middleware"
	"food_order_api/internal/model"
	"food_order_api/internal/policy"
	"food_order_api/internal/repository"
	"food_order_api/internal/validation"
)

const msgUsernameTaken = "A user with that username already exists."

// usernamePattern 字母（含 Unicode）、数字和 @/./+/-/_
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ==================== UserService 用户服务 ====================

// UserService 用户服务
type UserService struct {
	userRepo repository.UserRepository
	limiter  *middleware.LoginLimiter
	log      *zap.Logger
}

// NewUserService 创建用户服务，limiter 为 nil 时不限流
func NewUserService(userRepo repository.UserRepository, limiter *middleware.LoginLimiter, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, limiter: limiter, log: log}
}

// ==================== 注册 ====================

// Register 注册用户，角色由调用方（注册入口）决定
func (s *UserService) Register(ctx context.Context, role model.Role, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	if !role.Valid() {
		return nil, FieldError("role", "Invalid role.")
	}

	fields := validation.Struct(req)
	if fields == nil {
		fields = validation.FieldErrors{}
	}
	if _, bad := fields["username"]; !bad && !usernamePattern.MatchString(req.Username) {
		fields.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if _, bad := fields["password"]; !bad && strings.TrimSpace(req.Password) == "" {
		fields.Add("password", "This field may not be blank.")
	}
	if _, bad := fields["username"]; !bad {
		exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			fields.Add("username", msgUsernameTaken)
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  req.Username,
		Password:  string(hashedPassword),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册同名用户时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, FieldError("username", msgUsernameTaken)
		}
		return nil, err
	}

	s.log.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return s.toUserInfo(user), nil
}

// ==================== 认证相关 ====================

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	key := middleware.LoginKey(req.Username)
	if s.limiter != nil {
		if res := s.limiter.Check(key); !res.Allowed {
			return nil, &RetryAfterError{RetryAfter: res.RetryAfter}
		}
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	// 验证密码
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		if s.limiter != nil {
			if res := s.limiter.Fail(key); !res.Allowed {
				s.log.Warn("login locked", zap.String("username", req.Username), zap.Duration("retry_after", res.RetryAfter))
			}
		}
		return nil, ErrInvalidCredentials
	}

	// 检查状态
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	if s.limiter != nil {
		s.limiter.Reset(key)
	}

	// 生成 Token
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	// 更新最后登录时间
	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(cfg.AccessTokenTTL),
		User:         s.toUserInfo(user),
	}, nil
}

// RefreshToken 刷新 Token
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject != middleware.TokenSubjectRefresh {
		return nil, ErrInvalidToken
	}

	// 重新读取用户，角色以数据库为准
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
	}, nil
}

// LoadActor 按 ID 重新读取用户，供认证中间件确认角色和启用状态
func (s *UserService) LoadActor(ctx context.Context, userID int64) (policy.Actor, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return policy.Actor{}, false, err
	}
	if user == nil || !user.IsActive {
		return policy.Actor{}, false, nil
	}
	return policy.Actor{ID: user.ID, Username: user.Username, Role: user.Role}, true, nil
}

// ==================== 查询 ====================

// GetProfile 当前用户信息
func (s *UserService) GetProfile(ctx context.Context, actor policy.Actor) (*dto.UserInfo, error) {
	if !actor.Authenticated() {
		return nil, policy.ErrAuthenticationRequired
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	// Token 对应的用户已不存在
	if user == nil {
		return nil, ErrInvalidToken
	}
	return s.toUserInfo(user), nil
}

// ListUsers 全部用户
func (s *UserService) ListUsers(ctx context.Context) ([]*dto.UserInfo, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.UserInfo, len(users))
	for i := range users {
		list[i] = s.toUserInfo(&users[i])
	}
	return list, nil
}

// GetUserByID 用户详情
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.toUserInfo(user), nil
}

// CountRegisteredCustomers 非员工用户数
func (s *UserService) CountRegisteredCustomers(ctx context.Context) (*dto.RegisteredCustomersResponse, error) {
	count, err := s.userRepo.CountExcludingRole(ctx, model.RoleStaff)
	if err != nil {
		return nil, err
	}
	return &dto.RegisteredCustomersResponse{RegisteredCustomers: count}, nil
}

// ==================== 辅助方法 ====================

// toUserInfo 转换为 DTO
func (s *UserService) toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		IsStaff:     user.Role.IsStaff(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
