package handlers

import (
	"bytes"
	"catalog-service/app/server/apperr"
	"catalog-service/app/server/middlewares"
	"catalog-service/app/server/models"
	"encoding/json"
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
)

type ItemCreateInput struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category"`
	Price    int     `json:"price"`
	Stock    int     `json:"stock"`
	Image    *string `json:"image"`
	TypeID   *uint   `json:"TypeId"`
	BrandID  *uint   `json:"BrandId"`
}

// ItemBulkInput 批量创建时四个字段都必须提供
type ItemBulkInput struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    *int    `json:"price" validate:"required"`
	Stock    *int    `json:"stock" validate:"required"`
	Image    *string `json:"image"`
	TypeID   *uint   `json:"TypeId"`
	BrandID  *uint   `json:"BrandId"`
}

// Nullable tells an absent field apart from an explicit null.
// Set is true whenever the key is present; Value is nil for null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// ItemUpdateInput 没有所有者字段，请求体中的 UserId 会被忽略
// 可空字段显式传 null 会清空
type ItemUpdateInput struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *int             `json:"price"`
	Stock    *int             `json:"stock"`
	Image    Nullable[string] `json:"image"`
	TypeID   Nullable[uint]   `json:"TypeId"`
	BrandID  Nullable[uint]   `json:"BrandId"`
}

func (req *ItemUpdateInput) updates() map[string]any {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Image.Set {
		updates["image"] = req.Image.Value
	}
	if req.TypeID.Set {
		updates["type_id"] = req.TypeID.Value
	}
	if req.BrandID.Set {
		updates["brand_id"] = req.BrandID.Value
	}
	return updates
}

func (a *App) callerID(c echo.Context) (uint, *apperr.Error) {
	user, ok := middlewares.ClaimsFrom(c)
	if !ok || user.ID == 0 {
		return 0, apperr.New(apperr.NotAuthenticated, http.StatusUnauthorized, "User not authenticated")
	}
	return user.ID, nil
}

func (a *App) ItemList(c echo.Context) error {
	items, err := a.store.ListItems(c.Request().Context())
	if err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusOK, "Items retrieved", items)
}

func (a *App) ItemSearch(c echo.Context) error {
	items, err := a.store.SearchItems(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusOK, "Items retrieved", items)
}

func (a *App) ItemGet(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	item, err := a.store.GetItem(c.Request().Context(), id)
	if err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusOK, "Item retrieved", item)
}

func (a *App) ItemCreate(c echo.Context) error {
	// 所有者来自令牌
	owner, aerr := a.callerID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	var req ItemCreateInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}
	if aerr := a.checkRequired(&req, ""); aerr != nil {
		return a.er(c, aerr)
	}

	item := models.Item{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Image:    req.Image,
		UserID:   &owner,
		TypeID:   req.TypeID,
		BrandID:  req.BrandID,
	}
	if err := a.store.CreateItem(c.Request().Context(), &item); err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusCreated, "Item created", &item)
}

func (a *App) ItemCreateBulk(c echo.Context) error {
	owner, aerr := a.callerID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	var req []ItemBulkInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}
	if len(req) == 0 {
		return a.er(c, apperr.New(apperr.InvalidInput, http.StatusBadRequest, "Request body must be a non-empty array"))
	}

	// 先全部检查，再一次性写入
	items := make([]*models.Item, 0, len(req))
	for i := range req {
		if aerr := a.checkRequired(&req[i], fmt.Sprintf("items[%d]: ", i)); aerr != nil {
			return a.er(c, aerr)
		}
		items = append(items, &models.Item{
			Name:     req[i].Name,
			Category: req[i].Category,
			Price:    *req[i].Price,
			Stock:    *req[i].Stock,
			Image:    req[i].Image,
			UserID:   &owner,
			TypeID:   req[i].TypeID,
			BrandID:  req[i].BrandID,
		})
	}

	if err := a.store.CreateItems(c.Request().Context(), items); err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusCreated, "Items created", items)
}

func (a *App) ItemEdit(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	var req ItemUpdateInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}

	item, err := a.store.UpdateItem(c.Request().Context(), id, req.updates())
	if err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusOK, "Item updated", item)
}

func (a *App) ItemDelete(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	if err := a.store.DeleteItem(c.Request().Context(), id); err != nil {
		return a.er(c, storeErr(err, "Item"))
	}

	return a.ok(c, http.StatusOK, "Item deleted", nil)
}
