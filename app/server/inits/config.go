package inits

import (
	"catalog-service/app/server/config"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"strings"
)

func Config() (*config.Config, error) {
	var cfg config.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// finalize 规范化取值并做安全检查
func finalize(cfg *config.Config) error {
	cfg.Mode = strings.ToLower(cfg.Mode)
	switch cfg.Mode {
	case config.ModeDevelopment, config.ModeProduction:
	default:
		return fmt.Errorf("MODE should be one of %q or %q, got %q", config.ModeDevelopment, config.ModeProduction, cfg.Mode)
	}

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	switch cfg.DBDriver {
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER should be one of %q or %q, got %q", config.DriverPostgres, config.DriverSQLite, cfg.DBDriver)
	}

	// 签名密钥：生产环境必须显式设置，且不能是开发用的默认值
	if cfg.IsProd() {
		if cfg.SignatureSecretKey == "" {
			return fmt.Errorf("JWT_SECRET environment variable not set")
		}
		if cfg.SignatureSecretKey == config.DevSignatureSecretKey {
			return fmt.Errorf("JWT_SECRET must not use the development default in production")
		}
	} else if cfg.SignatureSecretKey == "" {
		cfg.SignatureSecretKey = config.DevSignatureSecretKey
		cfg.DevSecretInUse = true
	}

	cfg.HashAlgorithm = strings.ToLower(cfg.HashAlgorithm)
	switch cfg.HashAlgorithm {
	case config.HashArgon2id, config.HashBcrypt:
	default:
		return fmt.Errorf("HASH_ALGORITHM should be one of %q or %q, got %q", config.HashArgon2id, config.HashBcrypt, cfg.HashAlgorithm)
	}

	if cfg.HashCost < 0 {
		return fmt.Errorf("HASH_COST should not be negative")
	}
	if cfg.HashAlgorithm == config.HashBcrypt && cfg.HashCost != 0 && (cfg.HashCost < 4 || cfg.HashCost > 31) {
		return fmt.Errorf("HASH_COST for bcrypt should be between 4 and 31, got %d", cfg.HashCost)
	}
	if cfg.HashConcurrency < 0 {
		return fmt.Errorf("HASH_CONCURRENCY should not be negative")
	}

	return nil
}
