// Package zone 根据起止 pincode 判定运费区域。
package zone

import (
	"strings"

	"rbx/logicore/pkg/errorutil"
)

// Zone 运费区域
type Zone string

const (
	WithinCity   Zone = "WITHIN_CITY"
	WithinState  Zone = "WITHIN_STATE"
	MetroToMetro Zone = "METRO_TO_METRO"
	RestOfIndia  Zone = "REST_OF_INDIA"
	Special      Zone = "SPECIAL"
)

// All 全部区域（固定枚举）
var All = []Zone{WithinCity, WithinState, MetroToMetro, RestOfIndia, Special}

// Valid 是否为已知区域
func (z Zone) Valid() bool {
	for _, v := range All {
		if z == v {
			return true
		}
	}
	return false
}

// ParseZone 解析区域名称（大小写、空格、连字符不敏感）
func ParseZone(s string) (Zone, bool) {
	n := strings.ToUpper(strings.TrimSpace(s))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	z := Zone(n)
	return z, z.Valid()
}

// ValidatePincode 校验 6 位 pincode，首位不能为 0
func ValidatePincode(field, pincode string) error {
	if len(pincode) != 6 {
		return errorutil.InvalidInput(field, "pincode must be exactly 6 digits, got %q", pincode)
	}
	for i := 0; i < len(pincode); i++ {
		c := pincode[i]
		if c < '0' || c > '9' {
			return errorutil.InvalidInput(field, "pincode must be numeric, got %q", pincode)
		}
	}
	if pincode[0] == '0' {
		return errorutil.InvalidInput(field, "pincode cannot start with 0, got %q", pincode)
	}
	return nil
}

// Determine 判定区域，规则按顺序匹配：
// 同城 → 同省 → 任一端为特殊地区 → 双端地铁城市 → 其余
func Determine(source, destination string, dir Directory) (Zone, error) {
	if err := ValidatePincode("source_pincode", source); err != nil {
		return "", err
	}
	if err := ValidatePincode("destination_pincode", destination); err != nil {
		return "", err
	}

	if source == destination {
		return WithinCity, nil
	}

	src, ok := dir.Lookup(source)
	if !ok {
		return "", errorutil.InvalidInput("source_pincode", "unknown pincode %q", source)
	}
	dst, ok := dir.Lookup(destination)
	if !ok {
		return "", errorutil.InvalidInput("destination_pincode", "unknown pincode %q", destination)
	}

	switch {
	case src.City != "" && src.City == dst.City:
		return WithinCity, nil
	case src.State != "" && src.State == dst.State:
		return WithinState, nil
	case src.Special || dst.Special:
		return Special, nil
	case src.Metro && dst.Metro:
		return MetroToMetro, nil
	default:
		return RestOfIndia, nil
	}
}
