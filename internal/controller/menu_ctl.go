package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/service"
)

// ==================== MenuController 菜单控制器 ====================

// MenuController 菜单控制器
type MenuController struct {
	menuService *service.MenuService
}

// NewMenuController 创建菜单控制器
func NewMenuController(menuService *service.MenuService) *MenuController {
	return &MenuController{menuService: menuService}
}

// ==================== 查询接口 ====================

// List 菜单列表
// @Summary 菜单列表
// @Tags Menu
// @Produce json
// @Success 200 {array} dto.MenuItemInfo
// @Router /menus/ [get]
func (c *MenuController) List(ctx *gin.Context) {
	list, err := c.menuService.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// Get 菜单项详情
// @Summary 菜单项详情
// @Tags Menu
// @Produce json
// @Param id path int true "菜单项 ID"
// @Success 200 {object} dto.MenuItemInfo
// @Failure 404 {object} map[string]interface{}
// @Router /menus/{id}/ [get]
func (c *MenuController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	item, err := c.menuService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Discounted 打折菜单
// @Summary 打折菜单
// @Tags Menu
// @Produce json
// @Success 200 {array} dto.MenuItemInfo
// @Router /menus/discounted/ [get]
func (c *MenuController) Discounted(ctx *gin.Context) {
	list, err := c.menuService.Discounted(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// Drinks 饮品
// @Summary 饮品
// @Tags Menu
// @Produce json
// @Success 200 {array} dto.MenuItemInfo
// @Router /menus/drinks/ [get]
func (c *MenuController) Drinks(ctx *gin.Context) {
	list, err := c.menuService.Drinks(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// ==================== 管理接口（员工） ====================

// Create 创建菜单项
// @Summary 创建菜单项
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMenuItemRequest true "菜单项"
// @Success 201 {object} dto.MenuItemInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /menus/ [post]
func (c *MenuController) Create(ctx *gin.Context) {
	var req dto.CreateMenuItemRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.menuService.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, item)
}

// Replace 整体更新菜单项
// @Summary 整体更新菜单项
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜单项 ID"
// @Param request body dto.CreateMenuItemRequest true "菜单项"
// @Success 200 {object} dto.MenuItemInfo
// @Router /menus/{id}/ [put]
func (c *MenuController) Replace(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req dto.CreateMenuItemRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.menuService.Replace(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Update 部分更新菜单项
// @Summary 部分更新菜单项
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜单项 ID"
// @Param request body dto.UpdateMenuItemRequest true "需要修改的字段"
// @Success 200 {object} dto.MenuItemInfo
// @Router /menus/{id}/ [patch]
func (c *MenuController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateMenuItemRequest
	if !bindJSON(ctx, &req) {
		return
	}

	item, err := c.menuService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Delete 删除菜单项
// @Summary 删除菜单项
// @Tags Menu
// @Security BearerAuth
// @Param id path int true "菜单项 ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /menus/{id}/ [delete]
func (c *MenuController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := c.menuService.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
