package config

import "strings"

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	HashArgon2id = "argon2id"
	HashBcrypt   = "bcrypt"

	// DevSignatureSecretKey 仅在开发模式下、未设置 JWT_SECRET 时使用，生产环境会拒绝启动
	DevSignatureSecretKey = "change_me_in_production"
)

// Config is loaded once at startup and only read afterwards.
type Config struct {
	// 基础配置
	Mode               string `envconfig:"MODE" default:"development"` // development / production
	Listen             string `envconfig:"LISTEN" default:":1323"`     // 监听地址
	DBDriver           string `envconfig:"DB_DRIVER" default:"postgres"`
	DBConnectionString string `envconfig:"DB_CONN" required:"true"` // 数据库连接字符串（sqlite 下为文件路径或 DSN）
	APIDocs            *bool  `envconfig:"API_DOCS"`                // 未设置时非生产环境默认开启
	APIDocsToken       string `envconfig:"API_DOCS_TOKEN"`          // 设置后访问文档需携带 X-Docs-Token 请求头

	// 安全相关
	SignatureSecretKey string   `envconfig:"JWT_SECRET"`                 // 签名密钥，更新会导致旧有会话失效
	TokenExpiry        Duration `envconfig:"JWT_EXPIRES_IN" default:"1d"` // 令牌有效期
	HashAlgorithm      string   `envconfig:"HASH_ALGORITHM" default:"argon2id"`
	HashCost           int      `envconfig:"HASH_COST"`        // bcrypt cost 或 argon2id iterations, 0 使用算法默认值
	HashConcurrency    int      `envconfig:"HASH_CONCURRENCY"` // 同时进行的哈希计算数量上限, 0 使用 CPU 数量

	// DevSecretInUse 标记是否使用了开发用的回退密钥（由 inits.Config 设置）
	DevSecretInUse bool `ignored:"true"`
}

func (c *Config) IsProd() bool {
	return c != nil && strings.ToLower(c.Mode) == ModeProduction
}

func (c *Config) DocsEnabled() bool {
	if c.APIDocs != nil {
		return *c.APIDocs
	}
	return !c.IsProd()
}
