package dto

import "time"

// CreateOrderRequest 下单请求
// 订单归属于当前登录用户，请求体中的 customer 字段不会被读取
type CreateOrderRequest struct {
	MenuItems []int64 `json:"menu_items" binding:"required"`
}

// OrderInfo 订单
type OrderInfo struct {
	ID        int64     `json:"id"`
	Customer  int64     `json:"customer"`
	MenuItems []int64   `json:"menu_items"`
	CreatedAt time.Time `json:"created_at"`
}
