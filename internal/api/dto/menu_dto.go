package dto

import (
	"bytes"
	"encoding/json"
	"sort"
)

// PriceInput 价格输入，接受 "10.00" 或 10.00 两种写法，保留原始文本，
// 由 service 解析为定点小数，避免经过 float64
type PriceInput string

// UnmarshalJSON 实现 json.Unmarshaler
func (p *PriceInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PriceInput(s)
		return nil
	}
	*p = PriceInput(b)
	return nil
}

// menuFields 菜单请求中可写的字段
var menuFields = map[string]struct{}{
	"name":          {},
	"description":   {},
	"price":         {},
	"is_discounted": {},
	"is_drink":      {},
}

// nullFields 请求体中显式为 null 的菜单字段（升序）
func nullFields(b []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	var nulls []string
	for name, v := range raw {
		if _, ok := menuFields[name]; !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulls = append(nulls, name)
		}
	}
	sort.Strings(nulls)
	return nulls, nil
}

// ==================== 请求 ====================

// CreateMenuItemRequest 创建 / 整体更新菜单项
type CreateMenuItemRequest struct {
	Name         string      `json:"name" binding:"required,max=100"`
	Description  string      `json:"description" binding:"required"`
	Price        *PriceInput `json:"price" binding:"required"`
	IsDiscounted bool        `json:"is_discounted"`
	IsDrink      bool        `json:"is_drink"`

	// NullFields 显式传了 null 的字段，不能为 null
	NullFields []string `json:"-"`
}

// UnmarshalJSON 记录显式为 null 的字段
func (r *CreateMenuItemRequest) UnmarshalJSON(b []byte) error {
	type plain CreateMenuItemRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	nulls, err := nullFields(b)
	if err != nil {
		return err
	}
	*r = CreateMenuItemRequest(p)
	r.NullFields = nulls
	return nil
}

// UpdateMenuItemRequest 部分更新菜单项，nil 表示不修改
type UpdateMenuItemRequest struct {
	Name         *string     `json:"name" binding:"omitempty,max=100"`
	Description  *string     `json:"description"`
	Price        *PriceInput `json:"price"`
	IsDiscounted *bool       `json:"is_discounted"`
	IsDrink      *bool       `json:"is_drink"`

	// NullFields 显式传了 null 的字段，与未传区分
	NullFields []string `json:"-"`
}

// UnmarshalJSON 记录显式为 null 的字段
func (r *UpdateMenuItemRequest) UnmarshalJSON(b []byte) error {
	type plain UpdateMenuItemRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	nulls, err := nullFields(b)
	if err != nil {
		return err
	}
	*r = UpdateMenuItemRequest(p)
	r.NullFields = nulls
	return nil
}

// ==================== 响应 ====================

// MenuItemInfo 菜单项
// 价格固定输出两位小数的字符串
type MenuItemInfo struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	IsDiscounted bool   `json:"is_discounted"`
	IsDrink      bool   `json:"is_drink"`
}
