package handlers

import (
	"catalog-service/app/server/auth"
	"catalog-service/app/server/jwt"
	"catalog-service/app/server/store"
	"catalog-service/app/server/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type App struct {
	l        *zap.Logger         // 日志
	store    *store.Store        // 数据访问
	auth     *auth.Service       // 注册与登录
	jwt      *jwt.JWT            // JWT ，用于无状态验证
	validate *validator.Validate // 请求体必填字段检查
}

func NewApp(l *zap.Logger, st *store.Store, authService *auth.Service, j *jwt.JWT) *App {
	return &App{
		l:        l,
		store:    st,
		auth:     authService,
		jwt:      j,
		validate: utils.NewValidator(),
	}
}
