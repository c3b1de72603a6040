package calculator

import (
	"math"

	"rbx/logicore/pkg/errorutil"
)

// DefaultVolumetricDivisor 体积重除数（cm³/kg）
const DefaultVolumetricDivisor = 5000.0

// Dimensions 包裹尺寸（厘米）
type Dimensions struct {
	LengthCm float64 `json:"length_cm"`
	WidthCm  float64 `json:"width_cm"`
	HeightCm float64 `json:"height_cm"`
}

// IsZero 未提供尺寸
func (d Dimensions) IsZero() bool {
	return d.LengthCm == 0 && d.WidthCm == 0 && d.HeightCm == 0
}

// ChargeableWeight 计费重 = max(实重, 体积重)
func ChargeableWeight(actualKg float64, dims Dimensions, divisor float64) (float64, error) {
	if err := validateWeight(actualKg); err != nil {
		return 0, err
	}
	if dims.IsZero() {
		return actualKg, nil
	}
	for _, v := range []float64{dims.LengthCm, dims.WidthCm, dims.HeightCm} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, errorutil.InvalidInput("dimensions", "dimensions must be finite and non-negative")
		}
	}
	if divisor <= 0 {
		divisor = DefaultVolumetricDivisor
	}

	volumetric := dims.LengthCm * dims.WidthCm * dims.HeightCm / divisor
	return math.Max(actualKg, volumetric), nil
}
