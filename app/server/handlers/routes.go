package handlers

import (
	"catalog-service/app/server/middlewares"
	"github.com/labstack/echo/v4"
)

func (a *App) RegisterHandlers(e *echo.Echo) {
	authn := middlewares.Authentication(a.jwt, a.l)
	ownsItem := middlewares.Authorization(middlewares.OwnerLookupFunc(a.store.ItemOwnerID), a.l)
	isSelf := middlewares.Authorization(middlewares.OwnerLookupFunc(a.store.UserOwnerID), a.l)

	e.GET("/healthz", a.HealthCheck)

	api := e.Group("/api")
	api.GET("", a.Root)

	users := api.Group("/users")
	users.GET("", a.UserList)
	users.GET("/search", a.UserSearch)
	users.GET("/:id", a.UserGet)
	users.POST("", a.UserRegister)
	users.POST("/bulk", a.UserRegisterBulk)
	users.POST("/login", a.UserLogin)
	users.PUT("/:id", a.UserEdit, authn, isSelf)
	users.DELETE("/:id", a.UserDelete, authn, isSelf)

	items := api.Group("/items")
	items.GET("", a.ItemList)
	items.GET("/search", a.ItemSearch)
	items.GET("/:id", a.ItemGet, authn)
	items.POST("", a.ItemCreate, authn)
	items.POST("/bulk", a.ItemCreateBulk, authn)
	items.PUT("/:id", a.ItemEdit, authn, ownsItem)
	items.DELETE("/:id", a.ItemDelete, authn, ownsItem)

	brands := api.Group("/brands")
	brands.GET("", a.BrandList)
	brands.GET("/search", a.BrandSearch)
	brands.GET("/:id", a.BrandGet)
	brands.POST("", a.BrandCreate, authn)
	brands.PUT("/:id", a.BrandEdit, authn)
	brands.DELETE("/:id", a.BrandDelete, authn)

	types := api.Group("/types")
	types.GET("", a.TypeList)
	types.GET("/search", a.TypeSearch)
	types.GET("/:id", a.TypeGet)
	types.POST("", a.TypeCreate, authn)
	types.PUT("/:id", a.TypeEdit, authn)
	types.DELETE("/:id", a.TypeDelete, authn)
}
