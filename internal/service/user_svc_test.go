package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/middleware"
	"food_order_api/internal/model"
	"food_order_api/internal/policy"
	"food_order_api/internal/repository"
	"food_order_api/internal/testutil"
)

// ==================== 测试辅助 ====================

func setupUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := testutil.NewDB(t)
	limiter := middleware.NewLoginLimiter(3, time.Minute)
	return NewUserService(repository.NewUserRepository(db), limiter, nil), db
}

func registerReq(username string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-pass",
	}
}

// ==================== 注册 ====================

func TestUserService_Register(t *testing.T) {
	svc, db := setupUserService(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, model.RoleCustomer, registerReq("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, "customer", info.Role)
	assert.False(t, info.IsStaff)

	var user model.User
	require.NoError(t, db.First(&user, info.ID).Error)
	assert.NotEqual(t, "s3cret-pass", user.Password, "密码必须哈希存储")
	assert.True(t, user.IsActive)

	staff, err := svc.Register(ctx, model.RoleStaff, registerReq("bob"))
	require.NoError(t, err)
	assert.True(t, staff.IsStaff)
}

func TestUserService_Register_UnicodeUsername(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	for _, name := range []string{"josé", "名前", "ünal.b+1@x"} {
		info, err := svc.Register(ctx, model.RoleCustomer, &dto.RegisterRequest{
			Username: name,
			Email:    "u@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err, name)
		assert.Equal(t, name, info.Username)
	}

	_, err := svc.Register(ctx, model.RoleCustomer, &dto.RegisterRequest{
		Username: "josé!",
		Email:    "u@example.com",
		Password: "s3cret-pass",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RoleCustomer, registerReq("alice"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.RoleStaff, registerReq("alice"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"A user with that username already exists."}, verr.Fields["username"])
}

func TestUserService_Register_Invalid(t *testing.T) {
	svc, _ := setupUserService(t)

	tests := []struct {
		name  string
		req   *dto.RegisterRequest
		field string
	}{
		{"缺少用户名", &dto.RegisterRequest{Email: "a@example.com", Password: "x"}, "username"},
		{"缺少密码", &dto.RegisterRequest{Username: "a", Email: "a@example.com"}, "password"},
		{"空白密码", &dto.RegisterRequest{Username: "a", Email: "a@example.com", Password: "   "}, "password"},
		{"邮箱格式", &dto.RegisterRequest{Username: "a", Email: "nope", Password: "x"}, "email"},
		{"用户名字符", &dto.RegisterRequest{Username: "a b", Email: "a@example.com", Password: "x"}, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), model.RoleCustomer, tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

// ==================== 登录 ====================

func TestUserService_Login(t *testing.T) {
	svc, db := setupUserService(t)
	user := testutil.CreateUser(t, db, "carol", model.RoleStaff)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "carol", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := middleware.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, middleware.TokenSubjectAccess, claims.Subject)
	assert.True(t, claims.Actor().IsStaff())
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	svc, db := setupUserService(t)
	testutil.CreateUser(t, db, "dave", model.RoleCustomer)
	ctx := context.Background()

	_, err := svc.Login(ctx, &dto.LoginRequest{Username: "dave", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_Throttled(t *testing.T) {
	svc, db := setupUserService(t)
	testutil.CreateUser(t, db, "erin", model.RoleCustomer)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, &dto.LoginRequest{Username: "erin", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// 锁定期间即使密码正确也拒绝
	_, err := svc.Login(ctx, &dto.LoginRequest{Username: "ERIN", Password: "password"})
	var retry *RetryAfterError
	require.ErrorAs(t, err, &retry)
	assert.True(t, errors.Is(err, ErrTooManyAttempts))
	assert.Greater(t, retry.RetryAfter, time.Duration(0))
}

func TestUserService_Login_Disabled(t *testing.T) {
	svc, db := setupUserService(t)
	user := testutil.CreateUser(t, db, "frank", model.RoleCustomer)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "frank", Password: "password"})
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestUserService_LoadActor(t *testing.T) {
	svc, db := setupUserService(t)
	user := testutil.CreateUser(t, db, "hana", model.RoleStaff)
	ctx := context.Background()

	actor, ok, err := svc.LoadActor(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, "hana", actor.Username)
	assert.True(t, actor.IsStaff())

	_, ok, err = svc.LoadActor(ctx, user.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	_, ok, err = svc.LoadActor(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserService_RefreshToken(t *testing.T) {
	svc, db := setupUserService(t)
	testutil.CreateUser(t, db, "gina", model.RoleCustomer)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "gina", Password: "password"})
	require.NoError(t, err)

	resp, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Access Token 不能用来刷新
	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// ==================== 查询 ====================

func TestUserService_Profile(t *testing.T) {
	svc, db := setupUserService(t)
	user := testutil.CreateUser(t, db, "hank", model.RoleCustomer)
	ctx := context.Background()

	info, err := svc.GetProfile(ctx, policy.Actor{ID: user.ID, Username: user.Username, Role: user.Role})
	require.NoError(t, err)
	assert.Equal(t, "hank", info.Username)

	_, err = svc.GetProfile(ctx, policy.Anonymous())
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)

	_, err = svc.GetProfile(ctx, policy.Actor{ID: 999, Role: model.RoleCustomer})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_ListAndGet(t *testing.T) {
	svc, db := setupUserService(t)
	a := testutil.CreateUser(t, db, "ivy", model.RoleStaff)
	testutil.CreateUser(t, db, "jack", model.RoleCustomer)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ivy", users[0].Username)

	info, err := svc.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, info.IsStaff)

	_, err = svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_CountRegisteredCustomers(t *testing.T) {
	svc, db := setupUserService(t)
	ctx := context.Background()

	resp, err := svc.CountRegisteredCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.RegisteredCustomers)

	testutil.CreateUser(t, db, "staff", model.RoleStaff)
	testutil.CreateUser(t, db, "c1", model.RoleCustomer)
	testutil.CreateUser(t, db, "c2", model.RoleCustomer)

	resp, err = svc.CountRegisteredCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RegisteredCustomers)
}
