package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/model"
	"food_order_api/internal/testutil"
)

func TestMenuController_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)

	w := env.do(http.MethodPost, "/menus/", staff, map[string]interface{}{
		"name":        "Pizza",
		"description": "Margherita",
		"price":       "10.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.MenuItemInfo](t, w)
	assert.Equal(t, "10.00", created.Price)

	w = env.do(http.MethodGet, fmt.Sprintf("/menus/%d/", created.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.MenuItemInfo](t, w)
	assert.Equal(t, created, got)
}

func TestMenuController_NumericPrice(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)

	w := env.do(http.MethodPost, "/menus/", staff, `{"name":"Tea","description":"Green","price":3.5,"is_drink":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "3.50", decode[dto.MenuItemInfo](t, w).Price)
}

func TestMenuController_Create_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	_, customer := env.user("customer", model.RoleCustomer)
	body := map[string]interface{}{"name": "Pizza", "description": "x", "price": "10.00"}

	w := env.do(http.MethodPost, "/menus/", customer, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/menus/", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	env.db.Model(&model.MenuItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestMenuController_Create_Invalid(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)

	w := env.do(http.MethodPost, "/menus/", staff, map[string]interface{}{"name": "Pizza"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, []string{"This field is required."}, body.Errors["description"])
	assert.Equal(t, []string{"This field is required."}, body.Errors["price"])

	w = env.do(http.MethodPost, "/menus/", staff, map[string]interface{}{"name": "Pizza", "description": "x", "price": "12345"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Errors, "price")

	w = env.do(http.MethodPost, "/menus/", staff, `{"name": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuController_UpdatePrice(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)
	item := testutil.CreateMenuItem(t, env.db, "Burger", "8.99", false, false)
	path := fmt.Sprintf("/menus/%d/", item.ID)

	for _, p := range []string{"12.00", "0.10", "9999.99", "0.01"} {
		w := env.do(http.MethodPatch, path, staff, map[string]string{"price": p})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, p, decode[dto.MenuItemInfo](t, w).Price)
	}
}

func TestMenuController_Update_Null(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)
	item := testutil.CreateMenuItem(t, env.db, "Burger", "8.99", false, false)
	path := fmt.Sprintf("/menus/%d/", item.ID)

	w := env.do(http.MethodPatch, path, staff, `{"price": null, "name": null}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	assert.Equal(t, []string{"This field may not be null."}, body.Errors["price"])
	assert.Equal(t, []string{"This field may not be null."}, body.Errors["name"])

	w = env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, "8.99", decode[dto.MenuItemInfo](t, w).Price)
}

func TestMenuController_Create_HugeExponent(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)

	w := env.do(http.MethodPost, "/menus/", staff, `{"name":"Pizza","description":"x","price":1e1000000000}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		[]string{"Ensure that there are no more than 4 digits before the decimal point."},
		decode[errorBody](t, w).Errors["price"],
	)
}

func TestMenuController_Replace(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)
	item := testutil.CreateMenuItem(t, env.db, "Burger", "8.99", true, false)

	w := env.do(http.MethodPut, fmt.Sprintf("/menus/%d/", item.ID), staff, map[string]interface{}{
		"name": "Veggie Burger", "description": "No meat", "price": "9.50",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[dto.MenuItemInfo](t, w)
	assert.Equal(t, "Veggie Burger", got.Name)
	assert.False(t, got.IsDiscounted)

	// PUT 缺字段
	w = env.do(http.MethodPut, fmt.Sprintf("/menus/%d/", item.ID), staff, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuController_Delete(t *testing.T) {
	env := newTestEnv(t)
	_, staff := env.user("staff", model.RoleStaff)
	_, customer := env.user("customer", model.RoleCustomer)
	item := testutil.CreateMenuItem(t, env.db, "Burger", "8.99", false, false)
	path := fmt.Sprintf("/menus/%d/", item.ID)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, path, customer, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, path, staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, path, staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, "", nil).Code)
}

func TestMenuController_NotFound(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/menus/999/", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/menus/abc/", "", nil).Code)
}

func TestMenuController_Filters(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateMenuItem(t, env.db, "Burger", "8.00", false, false)
	testutil.CreateMenuItem(t, env.db, "Fries", "2.50", true, false)
	testutil.CreateMenuItem(t, env.db, "Water", "1.00", false, true)

	w := env.do(http.MethodGet, "/menus/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]dto.MenuItemInfo](t, w)
	assert.Len(t, all, 3)

	discounted := decode[[]dto.MenuItemInfo](t, env.do(http.MethodGet, "/menus/discounted/", "", nil))
	drinks := decode[[]dto.MenuItemInfo](t, env.do(http.MethodGet, "/menus/drinks/", "", nil))

	require.Len(t, discounted, 1)
	assert.Equal(t, "Fries", discounted[0].Name)
	require.Len(t, drinks, 1)
	assert.Equal(t, "Water", drinks[0].Name)

	// 折扣项是列表按 is_discounted 过滤的子集，且与饮品不相交
	ids := map[int64]bool{}
	for _, it := range all {
		if it.IsDiscounted {
			ids[it.ID] = true
		}
	}
	for _, it := range discounted {
		assert.True(t, ids[it.ID])
		assert.NotEqual(t, drinks[0].ID, it.ID)
	}
}
