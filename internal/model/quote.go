package model

import "github.com/shopspring/decimal"

// QuoteRequest 运费报价请求
type QuoteRequest struct {
	SourcePincode      string          `json:"source_pincode" binding:"required" example:"110001"`
	DestinationPincode string          `json:"destination_pincode" binding:"required" example:"400001"`
	WeightKg           float64         `json:"weight_kg" binding:"gt=0" example:"1.2"`
	IsCOD              bool            `json:"is_cod" example:"true"`
	DeclaredValue      decimal.Decimal `json:"declared_value" example:"1499"`
	Dimensions         *Dimensions     `json:"dimensions,omitempty"`
	VolumetricDivisor  float64         `json:"volumetric_divisor,omitempty" example:"5000"`
	Modes              []string        `json:"modes,omitempty"` // 为空表示全部费率卡
}

// Dimensions 包裹尺寸（厘米）
type Dimensions struct {
	LengthCm float64 `json:"length_cm" example:"30"`
	WidthCm  float64 `json:"width_cm" example:"20"`
	HeightCm float64 `json:"height_cm" example:"10"`
}

// QuoteResult 多承运商报价结果
type QuoteResult struct {
	QuoteID         string         `json:"quote_id,omitempty"`
	Zone            string         `json:"zone"`
	Status          string         `json:"status"` // OK / NO_RATES
	RecommendedMode string         `json:"recommended_mode,omitempty"`
	Rates           []ShippingRate `json:"rates"`
	Failed          []FailedRate   `json:"failed,omitempty"` // 仅用于排查，不影响结果
}

// ShippingRate 单个承运商的费率明细
type ShippingRate struct {
	Mode                   string          `json:"mode"`
	Courier                string          `json:"courier"`
	Service                string          `json:"service,omitempty"`
	Zone                   string          `json:"zone"`
	ChargeableWeight       decimal.Decimal `json:"chargeable_weight"`
	BaseCharge             decimal.Decimal `json:"base_charge"`
	AdditionalWeightCharge decimal.Decimal `json:"additional_weight_charge"`
	CODCharge              decimal.Decimal `json:"cod_charge"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	GSTPercentage          decimal.Decimal `json:"gst_percentage"`
	GST                    decimal.Decimal `json:"gst"`
	Total                  decimal.Decimal `json:"total"`
	TransitDays            int             `json:"transit_days,omitempty"`
	Tags                   []string        `json:"tags,omitempty"` // CHEAPEST/FASTEST
}

// FailedRate 被剔除的费率卡
type FailedRate struct {
	Mode   string `json:"mode"`
	Reason string `json:"reason"`
}

// 报价状态常量
const (
	QuoteStatusOK      = "OK"
	QuoteStatusNoRates = "NO_RATES"
)

// 费率标签常量
const (
	RateTagCheapest = "CHEAPEST"
	RateTagFastest  = "FASTEST"
)
