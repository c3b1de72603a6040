package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rbx/logicore/internal/entity"
	"rbx/logicore/pkg/config"
)

// Open 打开 MySQL 连接
func Open(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// RateCardDAO 费率卡与 pincode 目录数据访问对象
type RateCardDAO struct {
	db *gorm.DB
}

// NewRateCardDAO 创建 RateCardDAO 实例
func NewRateCardDAO(db *gorm.DB) *RateCardDAO {
	return &RateCardDAO{
		db: db,
	}
}

// ListActive 获取所有启用的费率卡（按 mode 排序）
func (dao *RateCardDAO) ListActive(ctx context.Context) ([]entity.RateCard, error) {
	var rows []entity.RateCard
	result := dao.db.WithContext(ctx).
		Where("active = ?", true).
		Order("mode").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list rate cards: %w", result.Error)
	}
	return rows, nil
}

// UpsertRateCard 按 mode 写入或更新费率卡
func (dao *RateCardDAO) UpsertRateCard(ctx context.Context, row *entity.RateCard) error {
	now := time.Now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	result := dao.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mode"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"courier", "service", "base_rate", "additional_weight_rate",
				"cod_rate", "cod_percentage", "gst_percentage",
				"free_weight_threshold", "weight_step", "transit_days",
				"zones", "active", "updated_at",
			}),
		}).
		Create(row)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert rate card %s: %w", row.Mode, result.Error)
	}
	return nil
}

// ListRegions 获取 pincode 目录快照
func (dao *RateCardDAO) ListRegions(ctx context.Context) ([]entity.PincodeRegion, error) {
	var rows []entity.PincodeRegion
	if err := dao.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pincode regions: %w", err)
	}
	return rows, nil
}

// Close 关闭数据库连接
func (dao *RateCardDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
