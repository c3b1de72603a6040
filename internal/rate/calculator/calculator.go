// Package calculator 按费率卡计算单个承运商的运费明细。
//
// 金额全部使用 decimal 运算。取整规则统一：
// 续重费、COD 百分比费用保留两位小数，GST 取整到元；均为四舍五入（half-up）。
package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/errorutil"
)

// Input 单次计算输入
type Input struct {
	WeightKg      float64
	IsCOD         bool
	DeclaredValue decimal.Decimal
}

// Breakdown 运费明细
// Total == BaseCharge + AdditionalWeightCharge + CODCharge + GST
type Breakdown struct {
	Mode                   string
	Courier                string
	Service                string
	Zone                   zone.Zone
	ChargeableWeight       decimal.Decimal
	BaseCharge             decimal.Decimal
	AdditionalWeightCharge decimal.Decimal
	CODCharge              decimal.Decimal
	Subtotal               decimal.Decimal
	GSTPercentage          decimal.Decimal
	GST                    decimal.Decimal
	Total                  decimal.Decimal
	TransitDays            int
}

// RoundMoney 金额保留两位小数
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundGST GST 取整到元
func RoundGST(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Calculate 计算运费明细
func Calculate(z zone.Zone, in Input, card RateCard) (Breakdown, error) {
	if !z.Valid() {
		return Breakdown{}, errorutil.InvalidInput("zone", "unknown zone %q", z)
	}
	if err := validateWeight(in.WeightKg); err != nil {
		return Breakdown{}, err
	}
	if in.DeclaredValue.IsNegative() {
		return Breakdown{}, errorutil.InvalidInput("declared_value", "declared value cannot be negative")
	}
	if err := card.Validate(); err != nil {
		return Breakdown{}, err
	}

	tariff := card.TariffFor(z)
	weight := decimal.NewFromFloat(in.WeightKg)

	// 1. 首重
	base := tariff.BaseRate

	// 2. 续重：仅超出免费重量的部分计费
	excess := weight.Sub(card.FreeWeightThreshold)
	if excess.IsNegative() {
		excess = decimal.Zero
	}
	if card.WeightStep.IsPositive() && excess.IsPositive() {
		excess = excess.Div(card.WeightStep).Ceil().Mul(card.WeightStep)
	}
	additional := RoundMoney(excess.Mul(tariff.AdditionalWeightRate))

	// 3. COD：固定费与货值百分比取大
	cod := decimal.Zero
	if in.IsCOD {
		cod = card.CODRate
		if card.CODPercentage.IsPositive() {
			pct := RoundMoney(in.DeclaredValue.Mul(card.CODPercentage))
			cod = decimal.Max(cod, pct)
		}
	}

	// 4-6. 小计、GST、合计
	subtotal := base.Add(additional).Add(cod)
	gst := RoundGST(subtotal.Mul(card.GSTPercentage))
	total := subtotal.Add(gst)

	return Breakdown{
		Mode:                   card.Mode,
		Courier:                card.CourierName(),
		Service:                card.Service,
		Zone:                   z,
		ChargeableWeight:       weight,
		BaseCharge:             base,
		AdditionalWeightCharge: additional,
		CODCharge:              cod,
		Subtotal:               subtotal,
		GSTPercentage:          card.GSTPercentage,
		GST:                    gst,
		Total:                  total,
		TransitDays:            card.TransitDays,
	}, nil
}

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return errorutil.InvalidInput("weight_kg", "weight must be a finite number")
	}
	if w <= 0 {
		return errorutil.InvalidInput("weight_kg", "weight must be greater than 0, got %v", w)
	}
	return nil
}
