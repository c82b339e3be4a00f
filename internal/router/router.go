package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food_order_api/internal/controller"
	"food_order_api/internal/middleware"
	"food_order_api/internal/policy"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	Auth  *controller.AuthController
	User  *controller.UserController
	Menu  *controller.MenuController
	Order *controller.OrderController
}

// SetupRouter 创建 gin 引擎并注册全部路由
// 每个路由在进入控制器前按权限表判定一次；actors 用于确认 Token 对应用户仍然有效
func SetupRouter(ctls *Controllers, actors middleware.ActorLoader, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.Authenticate(actors),
		middleware.AuditContext(),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "not found"})
	})

	guard := middleware.Authorize

	// 认证
	auth := r.Group("/auth")
	{
		// POST /auth/login/
		auth.POST("/login/", guard(policy.ResourceAuth, policy.ActionLogin), ctls.Auth.Login)
		// POST /auth/refresh/
		auth.POST("/refresh/", guard(policy.ResourceAuth, policy.ActionRefresh), ctls.Auth.RefreshToken)
	}

	// 注册，角色由入口决定
	register := r.Group("/register")
	{
		register.POST("/customer/", guard(policy.ResourceRegistration, policy.ActionRegisterCustomer), ctls.User.RegisterCustomer)
		register.POST("/staff/", guard(policy.ResourceRegistration, policy.ActionRegisterStaff), ctls.User.RegisterStaff)
	}

	// 菜单
	menus := r.Group("/menus")
	{
		menus.GET("/", guard(policy.ResourceMenuItem, policy.ActionList), ctls.Menu.List)
		menus.POST("/", guard(policy.ResourceMenuItem, policy.ActionCreate), ctls.Menu.Create)
		menus.GET("/discounted/", guard(policy.ResourceMenuItem, policy.ActionDiscounted), ctls.Menu.Discounted)
		menus.GET("/drinks/", guard(policy.ResourceMenuItem, policy.ActionDrinks), ctls.Menu.Drinks)
		menus.GET("/:id/", guard(policy.ResourceMenuItem, policy.ActionRetrieve), ctls.Menu.Get)
		menus.PUT("/:id/", guard(policy.ResourceMenuItem, policy.ActionUpdate), ctls.Menu.Replace)
		menus.PATCH("/:id/", guard(policy.ResourceMenuItem, policy.ActionUpdate), ctls.Menu.Update)
		menus.DELETE("/:id/", guard(policy.ResourceMenuItem, policy.ActionDelete), ctls.Menu.Delete)
	}

	// 用户
	users := r.Group("/users")
	{
		users.GET("/", guard(policy.ResourceUser, policy.ActionList), ctls.User.List)
		users.GET("/profile/", guard(policy.ResourceUser, policy.ActionProfile), ctls.User.GetProfile)
		users.GET("/registered_customers/", guard(policy.ResourceUser, policy.ActionRegisteredCustomers), ctls.User.RegisteredCustomers)
		users.GET("/:id/", guard(policy.ResourceUser, policy.ActionRetrieve), ctls.User.Get)
	}

	// 订单
	orders := r.Group("/orders")
	{
		orders.GET("/", guard(policy.ResourceOrder, policy.ActionList), ctls.Order.List)
		orders.POST("/", guard(policy.ResourceOrder, policy.ActionCreate), ctls.Order.Create)
		orders.GET("/customer_orders/", guard(policy.ResourceOrder, policy.ActionCustomerOrders), ctls.Order.CustomerOrders)
		orders.GET("/:id/", guard(policy.ResourceOrder, policy.ActionRetrieve), ctls.Order.Get)
	}

	return r
}
