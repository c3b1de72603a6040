// Package source 提供费率卡来源：配置（static）、远程 HTTP 服务、MySQL。
package source

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"rbx/logicore/internal/rate/calculator"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/config"
)

// Static 固定费率卡列表
type Static struct {
	cards []calculator.RateCard
}

// NewStatic 创建静态来源
func NewStatic(cards ...calculator.RateCard) *Static {
	return &Static{cards: cards}
}

// FromConfig 从配置构造静态来源，非法费率卡直接报错（启动期快速失败）
func FromConfig(cfgs []config.RateCardConfig) (*Static, error) {
	cards := make([]calculator.RateCard, 0, len(cfgs))
	for i, c := range cfgs {
		card, err := CardFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("rates.cards[%d]: %w", i, err)
		}
		cards = append(cards, card)
	}
	return NewStatic(cards...), nil
}

// CardFromConfig 将配置中的数字转换为 decimal 费率卡
func CardFromConfig(c config.RateCardConfig) (calculator.RateCard, error) {
	card := calculator.RateCard{
		Mode:                 c.Mode,
		Courier:              c.Courier,
		Service:              c.Service,
		BaseRate:             decimal.NewFromFloat(c.BaseRate),
		AdditionalWeightRate: decimal.NewFromFloat(c.AdditionalWeightRate),
		CODRate:              decimal.NewFromFloat(c.CODRate),
		CODPercentage:        decimal.NewFromFloat(c.CODPercentage),
		GSTPercentage:        decimal.NewFromFloat(c.GSTPercentage),
		FreeWeightThreshold:  decimal.NewFromFloat(c.FreeWeightThreshold),
		WeightStep:           decimal.NewFromFloat(c.WeightStep),
		TransitDays:          c.TransitDays,
	}
	if len(c.Zones) > 0 {
		card.Zones = make(map[zone.Zone]calculator.Tariff, len(c.Zones))
		for name, t := range c.Zones {
			card.Zones[zone.Zone(name)] = calculator.Tariff{
				BaseRate:             decimal.NewFromFloat(t.BaseRate),
				AdditionalWeightRate: decimal.NewFromFloat(t.AdditionalWeightRate),
			}
		}
	}

	card, err := card.NormalizeZones()
	if err != nil {
		return card, err
	}
	if err := card.Validate(); err != nil {
		return card, err
	}
	return card, nil
}

// List 实现 quote.Source
func (s *Static) List(ctx context.Context) ([]calculator.RateCard, error) {
	out := make([]calculator.RateCard, len(s.cards))
	copy(out, s.cards)
	return out, nil
}
