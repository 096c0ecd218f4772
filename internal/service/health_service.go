package service

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

// 组件状态
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "unavailable"
	HealthDisabled = "disabled"
)

// Pinger 可以探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService 健康检查
type HealthService struct {
	db    *gorm.DB
	redis Pinger // 可以为 nil，表示未启用 Redis
}

// NewHealthService 创建 HealthService 实例
func NewHealthService(db *gorm.DB, redis Pinger) *HealthService {
	return &HealthService{db: db, redis: redis}
}

// HealthStatus 健康检查结果
type HealthStatus struct {
	Status   string `json:"status"`   // ok / degraded / unavailable
	Database string `json:"database"` // ok / unavailable
	Redis    string `json:"redis"`    // ok / unavailable / disabled
}

// Check 检查数据库和 Redis
// 数据库不可用时整体不可用；只有 Redis 不可用时降级
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := &HealthStatus{Status: HealthOK, Database: HealthOK, Redis: HealthDisabled}

	if err := s.pingDatabase(ctx); err != nil {
		log.Printf("Health check: database unavailable: %v", err)
		status.Database = HealthDown
		status.Status = HealthDown
	}

	if s.redis != nil {
		status.Redis = HealthOK
		if err := s.redis.Ping(ctx); err != nil {
			log.Printf("Health check: redis unavailable: %v", err)
			status.Redis = HealthDown
			if status.Status == HealthOK {
				status.Status = HealthDegraded
			}
		}
	}
	return status
}

func (s *HealthService) pingDatabase(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
