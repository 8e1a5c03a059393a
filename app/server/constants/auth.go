package constants

// 令牌传输
const (
	HeaderAuthorization = "Authorization"
	HeaderLegacyToken   = "access_token" // 旧客户端使用的单独请求头
	AuthSchemeBearer    = "bearer"
)

// echo.Context 中保存的键
const (
	ContextKeyClaims = "claims"
)
