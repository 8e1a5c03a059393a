package inits

import (
	"catalog-service/app/server/config"
	"catalog-service/app/server/models"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DB(driver string, conn string, debugMode bool) (db *gorm.DB, err error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(conn)
	case config.DriverSQLite:
		dialector = sqlite.Open(conn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logLevel := logger.Warn
	if !debugMode {
		logLevel = logger.Error
	}

	// 打开连接；TranslateError 让唯一约束冲突统一变成 gorm.ErrDuplicatedKey
	if db, err = gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate 迁移全部模型
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Brand{},
		&models.Type{},
		&models.Item{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
