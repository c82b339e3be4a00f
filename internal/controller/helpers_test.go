package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"food_order_api/internal/middleware"
	"food_order_api/internal/model"
	"food_order_api/internal/policy"
	"food_order_api/internal/repository"
	"food_order_api/internal/service"
	"food_order_api/internal/testutil"
	"food_order_api/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Install()
}

// ==================== 测试环境 ====================

type testEnv struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

// newTestEnv 真实的 service + SQLite，只挂载被测控制器
func newTestEnv(t *testing.T) *testEnv {
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo, middleware.NewLoginLimiter(2, time.Minute), nil)
	menuSvc := service.NewMenuService(menuRepo, nil)
	orderSvc := service.NewOrderService(orderRepo, menuRepo, nil)

	menuCtl := NewMenuController(menuSvc)
	orderCtl := NewOrderController(orderSvc)
	userCtl := NewUserController(userSvc)
	authCtl := NewAuthController(userSvc)

	r := gin.New()
	r.Use(middleware.Authenticate(userSvc))

	guard := middleware.Authorize
	r.GET("/menus/", guard(policy.ResourceMenuItem, policy.ActionList), menuCtl.List)
	r.POST("/menus/", guard(policy.ResourceMenuItem, policy.ActionCreate), menuCtl.Create)
	r.GET("/menus/discounted/", guard(policy.ResourceMenuItem, policy.ActionDiscounted), menuCtl.Discounted)
	r.GET("/menus/drinks/", guard(policy.ResourceMenuItem, policy.ActionDrinks), menuCtl.Drinks)
	r.GET("/menus/:id/", guard(policy.ResourceMenuItem, policy.ActionRetrieve), menuCtl.Get)
	r.PUT("/menus/:id/", guard(policy.ResourceMenuItem, policy.ActionUpdate), menuCtl.Replace)
	r.PATCH("/menus/:id/", guard(policy.ResourceMenuItem, policy.ActionUpdate), menuCtl.Update)
	r.DELETE("/menus/:id/", guard(policy.ResourceMenuItem, policy.ActionDelete), menuCtl.Delete)

	r.GET("/orders/", guard(policy.ResourceOrder, policy.ActionList), orderCtl.List)
	r.POST("/orders/", guard(policy.ResourceOrder, policy.ActionCreate), orderCtl.Create)
	r.GET("/orders/customer_orders/", guard(policy.ResourceOrder, policy.ActionCustomerOrders), orderCtl.CustomerOrders)
	r.GET("/orders/:id/", guard(policy.ResourceOrder, policy.ActionRetrieve), orderCtl.Get)

	r.GET("/users/", guard(policy.ResourceUser, policy.ActionList), userCtl.List)
	r.GET("/users/profile/", guard(policy.ResourceUser, policy.ActionProfile), userCtl.GetProfile)
	r.GET("/users/registered_customers/", guard(policy.ResourceUser, policy.ActionRegisteredCustomers), userCtl.RegisteredCustomers)
	r.GET("/users/:id/", guard(policy.ResourceUser, policy.ActionRetrieve), userCtl.Get)
	r.POST("/register/customer/", userCtl.RegisterCustomer)
	r.POST("/register/staff/", userCtl.RegisterStaff)

	r.POST("/auth/login/", authCtl.Login)
	r.POST("/auth/refresh/", authCtl.RefreshToken)

	return &testEnv{t: t, db: db, r: r}
}

// user 创建用户并返回其 Access Token
func (e *testEnv) user(username string, role model.Role) (*model.User, string) {
	u := testutil.CreateUser(e.t, e.db, username, role)
	token, err := middleware.GenerateAccessToken(u.ID, u.Username, string(u.Role))
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

