package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RateCard 费率卡实体
type RateCard struct {
	// 基础字段
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Mode    string `gorm:"column:mode;type:varchar(64);not null;uniqueIndex:uk_mode"`
	Courier string `gorm:"column:courier;type:varchar(64);not null"`
	Service string `gorm:"column:service;type:varchar(64)"`

	// 计价参数
	BaseRate             decimal.Decimal `gorm:"column:base_rate;type:decimal(12,2);not null"`
	AdditionalWeightRate decimal.Decimal `gorm:"column:additional_weight_rate;type:decimal(12,2);not null"`
	CODRate              decimal.Decimal `gorm:"column:cod_rate;type:decimal(12,2);not null;default:0"`
	CODPercentage        decimal.Decimal `gorm:"column:cod_percentage;type:decimal(6,4);not null;default:0"`
	GSTPercentage        decimal.Decimal `gorm:"column:gst_percentage;type:decimal(6,4);not null"`
	FreeWeightThreshold  decimal.Decimal `gorm:"column:free_weight_threshold;type:decimal(8,3);not null;default:0"`
	WeightStep           decimal.Decimal `gorm:"column:weight_step;type:decimal(8,3);not null;default:0"`
	TransitDays          int             `gorm:"column:transit_days;not null;default:0"`

	// 区域档位覆盖 {"SPECIAL": {"baseRate": 75, "additionalWeightRate": 35}}
	Zones datatypes.JSON `gorm:"column:zones;type:json;not null"`

	// 状态
	Active bool `gorm:"column:active;not null;default:true;index:idx_active"`

	// 时间戳
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (RateCard) TableName() string {
	return "rate_cards"
}
