package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/middleware"
	"food_order_api/internal/service"
)

// ==================== OrderController 订单控制器 ====================

// OrderController 订单控制器
type OrderController struct {
	orderService *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// List 全部订单（员工）
// @Summary 订单列表
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.OrderInfo
// @Router /orders/ [get]
func (c *OrderController) List(ctx *gin.Context) {
	list, err := c.orderService.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// Get 订单详情（员工）
// @Summary 订单详情
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单 ID"
// @Success 200 {object} dto.OrderInfo
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id}/ [get]
func (c *OrderController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	order, err := c.orderService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// Create 下单
// @Summary 下单
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrderRequest true "菜单项 ID 列表"
// @Success 201 {object} dto.OrderInfo
// @Failure 400 {object} map[string]interface{}
// @Router /orders/ [post]
func (c *OrderController) Create(ctx *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(ctx, &req) {
		return
	}

	order, err := c.orderService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// CustomerOrders 当前用户的订单，员工返回全部
// @Summary 我的订单
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.OrderInfo
// @Router /orders/customer_orders/ [get]
func (c *OrderController) CustomerOrders(ctx *gin.Context) {
	list, err := c.orderService.CustomerOrders(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}
