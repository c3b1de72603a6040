package source

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"rbx/logicore/internal/entity"
	"rbx/logicore/internal/rate/calculator"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/logger"
)

// RateCardStore 费率卡存储（由 mysql.RateCardDAO 实现）
type RateCardStore interface {
	ListActive(ctx context.Context) ([]entity.RateCard, error)
}

// RegionStore pincode 目录存储（由 mysql.RateCardDAO 实现）
type RegionStore interface {
	ListRegions(ctx context.Context) ([]entity.PincodeRegion, error)
}

// MySQL 从 rate_cards 表读取费率卡，每次调用都查库
type MySQL struct {
	store  RateCardStore
	logger logger.Logger
}

// NewMySQL 创建 MySQL 来源
func NewMySQL(store RateCardStore, log logger.Logger) *MySQL {
	if log == nil {
		log = logger.NewNop()
	}
	return &MySQL{store: store, logger: log}
}

// List 实现 quote.Source
func (m *MySQL) List(ctx context.Context) ([]calculator.RateCard, error) {
	rows, err := m.store.ListActive(ctx)
	if err != nil {
		return nil, errorutil.Upstream("load rate cards from mysql failed", err)
	}

	cards := make([]calculator.RateCard, 0, len(rows))
	for _, row := range rows {
		card, err := CardFromEntity(row)
		if err != nil {
			m.logger.Warnf(ctx, "[MySQLSource] Skipping rate card id=%d mode=%s: %v", row.ID, row.Mode, err)
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// CardFromEntity 行 → 费率卡
func CardFromEntity(row entity.RateCard) (calculator.RateCard, error) {
	card := calculator.RateCard{
		Mode:                 row.Mode,
		Courier:              row.Courier,
		Service:              row.Service,
		BaseRate:             row.BaseRate,
		AdditionalWeightRate: row.AdditionalWeightRate,
		CODRate:              row.CODRate,
		CODPercentage:        row.CODPercentage,
		GSTPercentage:        row.GSTPercentage,
		FreeWeightThreshold:  row.FreeWeightThreshold,
		WeightStep:           row.WeightStep,
		TransitDays:          row.TransitDays,
	}

	if len(row.Zones) > 0 && string(row.Zones) != "null" {
		var zones map[zone.Zone]calculator.Tariff
		if err := json.Unmarshal(row.Zones, &zones); err != nil {
			return card, fmt.Errorf("invalid zones json: %w", err)
		}
		card.Zones = zones
	}

	return card.NormalizeZones()
}

// EntityFromCard 费率卡 → 行（用于导入）
func EntityFromCard(card calculator.RateCard) (*entity.RateCard, error) {
	zonesJSON := []byte("{}")
	if len(card.Zones) > 0 {
		b, err := json.Marshal(card.Zones)
		if err != nil {
			return nil, fmt.Errorf("marshal zones failed: %w", err)
		}
		zonesJSON = b
	}

	return &entity.RateCard{
		Mode:                 card.Mode,
		Courier:              card.CourierName(),
		Service:              card.Service,
		BaseRate:             card.BaseRate,
		AdditionalWeightRate: card.AdditionalWeightRate,
		CODRate:              card.CODRate,
		CODPercentage:        card.CODPercentage,
		GSTPercentage:        card.GSTPercentage,
		FreeWeightThreshold:  card.FreeWeightThreshold,
		WeightStep:           card.WeightStep,
		TransitDays:          card.TransitDays,
		Zones:                datatypes.JSON(zonesJSON),
		Active:               true,
	}, nil
}

// LoadDirectory 加载 pincode 目录快照，未命中时回退到 fallback
func LoadDirectory(ctx context.Context, store RegionStore, fallback zone.Directory) (*zone.TableDirectory, error) {
	rows, err := store.ListRegions(ctx)
	if err != nil {
		return nil, errorutil.Upstream("load pincode regions failed", err)
	}

	regions := make([]zone.Region, 0, len(rows))
	for _, r := range rows {
		if zone.ValidatePincode("pincode", r.Pincode) != nil {
			continue
		}
		regions = append(regions, zone.Region{
			Pincode: r.Pincode,
			City:    r.City,
			State:   r.State,
			Metro:   r.Metro,
			Special: r.Special,
		})
	}
	return zone.NewTableDirectory(regions, fallback), nil
}
