package main

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"food_order_api/internal/controller"
	"food_order_api/internal/middleware"
	"food_order_api/internal/repository"
	"food_order_api/internal/router"
	"food_order_api/internal/service"
)

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Router      *gin.Engine
}

// Repositories 仓库集合
type Repositories struct {
	User  repository.UserRepository
	Menu  repository.MenuRepository
	Order repository.OrderRepository
}

// Services 服务集合
type Services struct {
	User  *service.UserService
	Menu  *service.MenuService
	Order *service.OrderService
}

// initDependencies 初始化所有依赖
func initDependencies(app *App) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:  repository.NewUserRepository(app.DB),
		Menu:  repository.NewMenuRepository(app.DB),
		Order: repository.NewOrderRepository(app.DB),
	}

	// -------- 业务服务 --------
	limiter := middleware.NewLoginLimiter(app.Config.Auth.LoginMaxAttempts, app.Config.Auth.LoginLockout)
	services := &Services{
		User:  service.NewUserService(repos.User, limiter, app.Log.Named("user")),
		Menu:  service.NewMenuService(repos.Menu, app.Log.Named("menu")),
		Order: service.NewOrderService(repos.Order, repos.Menu, app.Log.Named("order")),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:  controller.NewAuthController(services.User),
		User:  controller.NewUserController(services.User),
		Menu:  controller.NewMenuController(services.Menu),
		Order: controller.NewOrderController(services.Order),
	}

	return &Dependencies{
		DB:          app.DB,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Router:      router.SetupRouter(controllers, services.User, app.Log),
	}
}
