// Package policy 集中定义接口访问权限。
//
// 所有规则写在 Rules 表中，每个请求只在进入控制器之前判定一次。
package policy

import (
	"errors"

	"food_order_api/internal/model"
)

var (
	// ErrAuthenticationRequired 未提供或提供了无效的凭证
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	// ErrForbidden 已认证但角色不足
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// ==================== Actor ====================

// Actor 发起请求的身份，ID 为 0 表示匿名
type Actor struct {
	ID       int64
	Username string
	Role     model.Role
}

// Anonymous 匿名身份
func Anonymous() Actor {
	return Actor{}
}

// Authenticated 是否已认证
func (a Actor) Authenticated() bool {
	return a.ID > 0
}

// IsStaff 是否员工
func (a Actor) IsStaff() bool {
	return a.Authenticated() && a.Role.IsStaff()
}

// ==================== 资源与动作 ====================

// Resource 受保护资源
type Resource string

const (
	ResourceMenuItem     Resource = "menu_item"
	ResourceUser         Resource = "user"
	ResourceOrder        Resource = "order"
	ResourceRegistration Resource = "registration"
	ResourceAuth         Resource = "auth"
)

// Action 资源上的动作
type Action string

const (
	ActionList                Action = "list"
	ActionRetrieve            Action = "retrieve"
	ActionCreate              Action = "create"
	ActionUpdate              Action = "update"
	ActionDelete              Action = "delete"
	ActionDiscounted          Action = "discounted"
	ActionDrinks              Action = "drinks"
	ActionProfile             Action = "profile"
	ActionRegisteredCustomers Action = "registered_customers"
	ActionCustomerOrders      Action = "customer_orders"
	ActionRegisterCustomer    Action = "register_customer"
	ActionRegisterStaff       Action = "register_staff"
	ActionLogin               Action = "login"
	ActionRefresh             Action = "refresh"
)

// Audience 允许访问的人群
type Audience int

const (
	Anyone Audience = iota
	AuthenticatedOnly
	StaffOnly
)

func (a Audience) String() string {
	switch a {
	case Anyone:
		return "anyone"
	case AuthenticatedOnly:
		return "authenticated"
	case StaffOnly:
		return "staff"
	}
	return "unknown"
}

// Rule 一条权限规则
type Rule struct {
	Resource Resource
	Actions  []Action
	Audience Audience
}

// Rules 权限表，按顺序匹配，未命中一律拒绝
//
// Order.customer_orders 对所有已认证用户开放，返回范围由 OrderService 按角色决定：
// 员工看到全部订单，顾客只看到自己的订单
var Rules = []Rule{
	{ResourceMenuItem, []Action{ActionCreate, ActionUpdate, ActionDelete}, StaffOnly},
	{ResourceMenuItem, []Action{ActionList, ActionRetrieve, ActionDiscounted, ActionDrinks}, Anyone},

	{ResourceUser, []Action{ActionList, ActionRetrieve}, StaffOnly},
	{ResourceUser, []Action{ActionProfile}, AuthenticatedOnly},
	{ResourceUser, []Action{ActionRegisteredCustomers}, StaffOnly},

	{ResourceOrder, []Action{ActionList, ActionRetrieve}, StaffOnly},
	{ResourceOrder, []Action{ActionCreate}, AuthenticatedOnly},
	{ResourceOrder, []Action{ActionCustomerOrders}, AuthenticatedOnly},

	{ResourceRegistration, []Action{ActionRegisterCustomer, ActionRegisterStaff}, Anyone},
	{ResourceAuth, []Action{ActionLogin, ActionRefresh}, Anyone},
}

// Lookup 查找 (resource, action) 对应的规则
func Lookup(resource Resource, action Action) (Audience, bool) {
	for _, rule := range Rules {
		if rule.Resource != resource {
			continue
		}
		for _, a := range rule.Actions {
			if a == action {
				return rule.Audience, true
			}
		}
	}
	return 0, false
}

// Authorize 判定 actor 能否在 resource 上执行 action
// 返回 nil 表示放行；匿名访问需认证的接口返回 ErrAuthenticationRequired，
// 已认证但无权限返回 ErrForbidden
func Authorize(actor Actor, resource Resource, action Action) error {
	audience, ok := Lookup(resource, action)
	if !ok {
		if !actor.Authenticated() {
			return ErrAuthenticationRequired
		}
		return ErrForbidden
	}

	switch audience {
	case Anyone:
		return nil
	case AuthenticatedOnly:
		if !actor.Authenticated() {
			return ErrAuthenticationRequired
		}
		return nil
	case StaffOnly:
		if !actor.Authenticated() {
			return ErrAuthenticationRequired
		}
		if !actor.IsStaff() {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}
