package handlers

import (
	"catalog-service/app/server/auth"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (a *App) UserList(c echo.Context) error {
	users, err := a.store.ListUsers(c.Request().Context())
	if err != nil {
		return a.er(c, storeErr(err, "User"))
	}

	return a.ok(c, http.StatusOK, "Users retrieved", users)
}

func (a *App) UserSearch(c echo.Context) error {
	users, err := a.store.SearchUsers(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return a.er(c, storeErr(err, "User"))
	}

	return a.ok(c, http.StatusOK, "Users retrieved", users)
}

func (a *App) UserGet(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	user, err := a.store.GetUser(c.Request().Context(), id)
	if err != nil {
		return a.er(c, storeErr(err, "User"))
	}

	return a.ok(c, http.StatusOK, "User retrieved", user)
}

func (a *App) UserRegister(c echo.Context) error {
	// 绑定请求体
	var req auth.RegisterInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}

	user, err := a.auth.Register(c.Request().Context(), req)
	if err != nil {
		return a.er(c, err)
	}

	return a.ok(c, http.StatusCreated, "User registered successfully", user)
}

func (a *App) UserRegisterBulk(c echo.Context) error {
	// 绑定请求体
	var req []auth.RegisterInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}

	users, err := a.auth.RegisterBulk(c.Request().Context(), req)
	if err != nil {
		return a.er(c, err)
	}

	return a.ok(c, http.StatusCreated, "Users registered successfully", users)
}

func (a *App) UserLogin(c echo.Context) error {
	// 绑定请求体
	var req auth.LoginInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}

	token, err := a.auth.Login(c.Request().Context(), req)
	if err != nil {
		return a.er(c, err)
	}

	return c.JSON(http.StatusOK, &LoginEnvelope{
		Success:     true,
		Message:     "Login successful",
		AccessToken: token,
		ExpiresIn:   int64(a.jwt.Expiry().Seconds()),
	})
}

// UserEdit 只能修改自己，由 Authorization 中间件保证
func (a *App) UserEdit(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	var req auth.UpdateInput
	if aerr := a.bind(c, &req); aerr != nil {
		return a.er(c, aerr)
	}

	user, err := a.auth.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return a.er(c, err)
	}

	return a.ok(c, http.StatusOK, "User updated", user)
}

func (a *App) UserDelete(c echo.Context) error {
	id, aerr := a.paramID(c)
	if aerr != nil {
		return a.er(c, aerr)
	}

	if err := a.store.DeleteUser(c.Request().Context(), id); err != nil {
		return a.er(c, storeErr(err, "User"))
	}

	return a.ok(c, http.StatusOK, "User deleted", nil)
}
