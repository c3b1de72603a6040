package calculator

import (
	"github.com/shopspring/decimal"

	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/errorutil"
)

// Tariff 某一区域的基础价与续重价
type Tariff struct {
	BaseRate             decimal.Decimal `json:"baseRate"`
	AdditionalWeightRate decimal.Decimal `json:"additionalWeightRate"`
}

// RateCard 承运商/服务模式的计价策略
// BaseRate/AdditionalWeightRate 为默认档，Zones 按区域覆盖
type RateCard struct {
	Mode                 string               `json:"mode"`
	Courier              string               `json:"courier"`
	Service              string               `json:"service,omitempty"`
	BaseRate             decimal.Decimal      `json:"baseRate"`
	AdditionalWeightRate decimal.Decimal      `json:"additionalWeightRate"`
	CODRate              decimal.Decimal      `json:"codRate"`
	CODPercentage        decimal.Decimal      `json:"codPercentage"`
	GSTPercentage        decimal.Decimal      `json:"gstPercentage"`
	FreeWeightThreshold  decimal.Decimal      `json:"freeWeightThreshold"`
	WeightStep           decimal.Decimal      `json:"weightStep"`
	TransitDays          int                  `json:"transitDays,omitempty"`
	Zones                map[zone.Zone]Tariff `json:"zones,omitempty"`
}

// TariffFor 选取区域档位，未配置时回退到默认档
func (c RateCard) TariffFor(z zone.Zone) Tariff {
	if t, ok := c.Zones[z]; ok {
		return t
	}
	return Tariff{BaseRate: c.BaseRate, AdditionalWeightRate: c.AdditionalWeightRate}
}

// CourierName 展示用承运商名称
func (c RateCard) CourierName() string {
	if c.Courier != "" {
		return c.Courier
	}
	return c.Mode
}

// NormalizeZones 将 "within city" 之类的写法归一为标准区域名
func (c RateCard) NormalizeZones() (RateCard, error) {
	if len(c.Zones) == 0 {
		return c, nil
	}
	zones := make(map[zone.Zone]Tariff, len(c.Zones))
	for k, t := range c.Zones {
		z, ok := zone.ParseZone(string(k))
		if !ok {
			return c, errorutil.InvalidInput("zones", "unknown zone %q in rate card %q", k, c.Mode)
		}
		zones[z] = t
	}
	c.Zones = zones
	return c, nil
}

// Validate 校验费率卡字段
func (c RateCard) Validate() error {
	if c.Mode == "" {
		return errorutil.InvalidInput("mode", "rate card mode is required")
	}
	if !c.BaseRate.IsPositive() {
		return errorutil.InvalidInput("baseRate", "rate card %q: base rate must be positive", c.Mode)
	}

	nonNegative := []struct {
		field string
		v     decimal.Decimal
	}{
		{"additionalWeightRate", c.AdditionalWeightRate},
		{"codRate", c.CODRate},
		{"codPercentage", c.CODPercentage},
		{"freeWeightThreshold", c.FreeWeightThreshold},
		{"weightStep", c.WeightStep},
	}
	for _, f := range nonNegative {
		if f.v.IsNegative() {
			return errorutil.InvalidInput(f.field, "rate card %q: %s cannot be negative", c.Mode, f.field)
		}
	}

	if c.GSTPercentage.IsNegative() || c.GSTPercentage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errorutil.InvalidInput("gstPercentage", "rate card %q: gst percentage must be a fraction in [0, 1), got %s", c.Mode, c.GSTPercentage)
	}
	if c.CODPercentage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errorutil.InvalidInput("codPercentage", "rate card %q: cod percentage must be a fraction below 1", c.Mode)
	}
	if c.TransitDays < 0 {
		return errorutil.InvalidInput("transitDays", "rate card %q: transit days cannot be negative", c.Mode)
	}

	for z, t := range c.Zones {
		if !z.Valid() {
			return errorutil.InvalidInput("zones", "rate card %q: unknown zone %q", c.Mode, z)
		}
		if !t.BaseRate.IsPositive() {
			return errorutil.InvalidInput("zones", "rate card %q: zone %s base rate must be positive", c.Mode, z)
		}
		if t.AdditionalWeightRate.IsNegative() {
			return errorutil.InvalidInput("zones", "rate card %q: zone %s additional weight rate cannot be negative", c.Mode, z)
		}
	}

	return nil
}
