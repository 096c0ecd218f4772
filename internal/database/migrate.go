package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"insight/internal/model"
)

// SchemaMigration 迁移历史表
// 每条记录对应一个已执行的迁移版本
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:200;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migration 一个版本化的迁移步骤
type Migration struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB) error
}

// Migrations 按版本顺序排列的全部迁移
// 已发布的迁移不能修改，只能追加
var Migrations = []Migration{
	{
		Version: "0001",
		Name:    "initial",
		Up: func(tx *gorm.DB) error {
			// AutoMigrate 会先建 conversations 再建带外键的 messages
			return tx.AutoMigrate(&model.Conversation{}, &model.Message{})
		},
	},
	{
		Version: "0002",
		Name:    "webhooks",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&model.Webhook{})
		},
	},
}

// Migrate 执行所有未执行过的迁移
// 返回:
//   - []string: 本次执行的版本号
//   - error: 任一迁移失败时返回，已成功的版本保持已提交
func Migrate(db *gorm.DB) ([]string, error) {
	return MigrateWith(db, Migrations)
}

// MigrateWith 按给定列表执行迁移
func MigrateWith(db *gorm.DB, migrations []Migration) ([]string, error) {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var applied []SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to load migration history: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	var ran []string
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		m := m
		// 迁移和历史记录在同一个事务里，失败时都不留痕迹
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration %s_%s failed: %w", m.Version, m.Name, err)
		}
		log.Printf("Applied migration %s_%s", m.Version, m.Name)
		ran = append(ran, m.Version)
	}

	log.Println("Database migrations completed")
	return ran, nil
}
