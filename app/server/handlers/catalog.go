package handlers

import (
	"catalog-service/app/server/models"
	"github.com/labstack/echo/v4"
	"net/http"
)

type BrandInput struct {
	Name    string `json:"name" validate:"required"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

type BrandUpdateInput struct {
	Name    *string `json:"name"`
	City    *string `json:"city"`
	Region  *string `json:"region"`
	Country *string `json:"country"`
}

type TypeInput struct {
	Name string `json:"name" validate:"required"`
}

func (a *App) BrandList(c echo.Context) error {
	brands, err := a.store.ListBrands(c.Request().Context())
	if err != nil {
		return a.er(c, storeErr(err, "Brand"))
	}
	return a.ok(c, http.StatusOK, "Brands retrieved", brands)
}

func (a *App) BrandSearch(c echo.Context) error {
	brands, err := a.store.SearchBrands(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return a.er(c, storeErr(err, "Brand"))
	}
	return a.ok(c, http.StatusOK, "Brands retrieved", brands)
}

func (a *App) BrandGet(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}
	brand, err := a.store.GetBrand(c.Request().Context(), id)
	if err != nil {
		return a.er(c, storeErr(err, "Brand"))
	}
	return a.ok(c, http.StatusOK, "Brand retrieved", brand)
}

func (a *App) BrandCreate(c echo.Context) error {
	var req BrandInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}
	if aerr := a.checkRequired(&req, ""); aerr != nil {
		return a.er(c, aerr)
	}

	brand := models.Brand{
		Name:    req.Name,
		City:    req.City,
		Region:  req.Region,
		Country: req.Country,
	}
	if err := a.store.CreateBrand(c.Request().Context(), &brand); err != nil {
		return a.er(c, storeErr(err, "Brand"))
	}
	return a.ok(c, http.StatusCreated, "Brand created", &brand)
}

func (a *App) BrandEdit(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}
	var req BrandUpdateInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Region != nil {
		updates["region"] = *req.Region
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}

	brand, err := a.store.UpdateBrand(c.Request().Context(), id, updates)
	if err != nil {
		return a.er(c, storeErr(err, "Brand"))
	}
	return a.ok(c, http.StatusOK, "Brand updated", brand)
}

func (a *App) BrandDelete(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}
	if err := a.store.DeleteBrand(c.Request().Context(), id); err != nil {
		return a.er(c, storeErr(err, "Brand"))
	}
	return a.ok(c, http.StatusOK, "Brand deleted", nil)
}

func (a *App) TypeList(c echo.Context) error {
	types, err := a.store.ListTypes(c.Request().Context())
	if err != nil {
		return a.er(c, storeErr(err, "Type"))
	}
	return a.ok(c, http.StatusOK, "Types retrieved", types)
}

func (a *App) TypeSearch(c echo.Context) error {
	types, err := a.store.SearchTypes(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return a.er(c, storeErr(err, "Type"))
	}
	return a.ok(c, http.StatusOK, "Types retrieved", types)
}

func (a *App) TypeGet(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}
	t, err := a.store.GetType(c.Request().Context(), id)
	if err != nil {
		return a.er(c, storeErr(err, "Type"))
	}
	return a.ok(c, http.StatusOK, "Type retrieved", t)
}

func (a *App) TypeCreate(c echo.Context) error {
	var req TypeInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}
	if aerr := a.checkRequired(&req, ""); aerr != nil {
		return a.er(c, aerr)
	}

	t := models.Type{Name: req.Name}
	if err := a.store.CreateType(c.Request().Context(), &t); err != nil {
		return a.er(c, storeErr(err, "Type"))
	}
	return a.ok(c, http.StatusCreated, "Type created", &t)
}

func (a *App) TypeEdit(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}
	var req TypeInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}
	if aerr := a.checkRequired(&req, ""); aerr != nil {
		return a.er(c, aerr)
	}

	t, err := a.store.UpdateType(c.Request().Context(), id, map[string]any{"name": req.Name})
	if err != nil {
		return a.er(c, storeErr(err, "Type"))
	}
	return a.ok(c, http.StatusOK, "Type updated", t)
}

func (a *App) TypeDelete(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}
	if err := a.store.DeleteType(c.Request().Context(), id); err != nil {
		return a.er(c, storeErr(err, "Type"))
	}
	return a.ok(c, http.StatusOK, "Type deleted", nil)
}
