package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/middleware"
	"food_order_api/internal/model"
	"food_order_api/internal/service"
)

// ==================== UserController 用户控制器 ====================

// UserController 用户控制器
type UserController struct {
	userService *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ==================== 注册接口 ====================

// RegisterCustomer 顾客注册
// @Summary 顾客注册
// @Tags Register
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Router /register/customer/ [post]
func (c *UserController) RegisterCustomer(ctx *gin.Context) {
	c.register(ctx, model.RoleCustomer)
}

// RegisterStaff 员工注册
// @Summary 员工注册
// @Tags Register
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Router /register/staff/ [post]
func (c *UserController) RegisterStaff(ctx *gin.Context) {
	c.register(ctx, model.RoleStaff)
}

// register 角色只由入口决定
func (c *UserController) register(ctx *gin.Context, role model.Role) {
	var req dto.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.Register(ctx.Request.Context(), role, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

// ==================== 用户接口 ====================

// GetProfile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} map[string]interface{}
// @Router /users/profile/ [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// List 用户列表（员工）
// @Summary 用户列表
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserInfo
// @Failure 403 {object} map[string]interface{}
// @Router /users/ [get]
func (c *UserController) List(ctx *gin.Context) {
	list, err := c.userService.ListUsers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// Get 用户详情（员工）
// @Summary 用户详情
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserInfo
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id}/ [get]
func (c *UserController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// RegisteredCustomers 顾客数量（员工）
// @Summary 顾客数量
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RegisteredCustomersResponse
// @Router /users/registered_customers/ [get]
func (c *UserController) RegisteredCustomers(ctx *gin.Context) {
	resp, err := c.userService.CountRegisteredCustomers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
