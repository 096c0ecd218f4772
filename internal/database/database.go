// Package database 负责数据库连接与表结构迁移
package database

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"insight/internal/config"
)

// Open 初始化 PostgreSQL 连接
// 参数:
//   - cfg: 应用配置，使用 database.url 作为 DSN
//
// 返回:
//   - *gorm.DB: 数据库连接
//   - error: 连接失败时返回
func Open(cfg *config.Config) (*gorm.DB, error) {
	// 生产环境只打印慢查询和错误
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.IsProd() {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	log.Printf("Connecting to database at: %s", RedactDSN(cfg.Database.URL))

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 配置连接池
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.MaxLifetime) * time.Second)

	log.Println("Database connected successfully")
	return db, nil
}

// RedactDSN 只保留主机和库名，避免把账号密码写进日志
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "<unparsed dsn>"
	}
	return u.Host + u.Path
}
