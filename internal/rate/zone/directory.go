package zone

// Region pincode 对应的地区信息
type Region struct {
	Pincode string `json:"pincode"`
	City    string `json:"city"`
	State   string `json:"state"`
	Metro   bool   `json:"metro"`
	Special bool   `json:"special"`
}

// Directory pincode → 地区 查询（外部协作方）
type Directory interface {
	Lookup(pincode string) (Region, bool)
}

// circleStates 前两位邮政圈 → 省/邦
var circleStates = map[string]string{
	"11": "DL",
	"12": "HR", "13": "HR",
	"14": "PB", "15": "PB", "16": "PB",
	"17": "HP",
	"18": "JK", "19": "JK",
	"20": "UP", "21": "UP", "22": "UP", "23": "UP", "24": "UP",
	"25": "UP", "26": "UP", "27": "UP", "28": "UP",
	"30": "RJ", "31": "RJ", "32": "RJ", "33": "RJ", "34": "RJ",
	"36": "GJ", "37": "GJ", "38": "GJ", "39": "GJ",
	"40": "MH", "41": "MH", "42": "MH", "43": "MH", "44": "MH",
	"45": "MP", "46": "MP", "47": "MP", "48": "MP",
	"49": "CG",
	"50": "TG",
	"51": "AP", "52": "AP", "53": "AP",
	"56": "KA", "57": "KA", "58": "KA", "59": "KA",
	"60": "TN", "61": "TN", "62": "TN", "63": "TN", "64": "TN",
	"67": "KL", "68": "KL", "69": "KL",
	"70": "WB", "71": "WB", "72": "WB", "73": "WB", "74": "WB",
	"75": "OD", "76": "OD", "77": "OD",
	"78": "AS",
	"79": "NE",
	"80": "BR", "81": "BR", "82": "BR", "83": "BR", "84": "BR", "85": "BR",
}

// metroDistricts 地铁城市的三位分拣区
var metroDistricts = map[string]string{
	"110": "DELHI",
	"400": "MUMBAI",
	"700": "KOLKATA",
	"600": "CHENNAI",
	"560": "BENGALURU",
	"500": "HYDERABAD",
	"380": "AHMEDABAD",
	"411": "PUNE",
}

// specialStates 东北、查谟-克什米尔/拉达克
var specialStates = map[string]bool{
	"JK": true,
	"AS": true,
	"NE": true,
}

// specialPrefixes 海岛等特殊地区（优先级高于所属邮政圈）
var specialPrefixes = []struct {
	prefix string
	state  string
}{
	{"744", "AN"},   // Andaman & Nicobar
	{"68255", "LD"}, // Lakshadweep
}

// StaticDirectory 仅依赖 pincode 前缀的目录
// 任意合法 pincode 都能得到 Region；未知邮政圈的 State 为空
type StaticDirectory struct{}

// NewStaticDirectory 创建静态目录
func NewStaticDirectory() StaticDirectory {
	return StaticDirectory{}
}

// Lookup 实现 Directory
func (StaticDirectory) Lookup(pincode string) (Region, bool) {
	if ValidatePincode("pincode", pincode) != nil {
		return Region{}, false
	}

	district := pincode[:3]
	r := Region{
		Pincode: pincode,
		City:    district,
		State:   circleStates[pincode[:2]],
	}

	if city, ok := metroDistricts[district]; ok {
		r.City = city
		r.Metro = true
	}

	for _, sp := range specialPrefixes {
		if len(pincode) >= len(sp.prefix) && pincode[:len(sp.prefix)] == sp.prefix {
			r.City = sp.prefix
			r.State = sp.state
			r.Special = true
			return r, true
		}
	}

	r.Special = specialStates[r.State]
	return r, true
}

// TableDirectory 精确匹配的 pincode 快照（通常从 DB 加载），未命中时回退
type TableDirectory struct {
	regions  map[string]Region
	fallback Directory
}

// NewTableDirectory 创建快照目录；fallback 可为 nil
func NewTableDirectory(regions []Region, fallback Directory) *TableDirectory {
	m := make(map[string]Region, len(regions))
	for _, r := range regions {
		m[r.Pincode] = r
	}
	return &TableDirectory{regions: m, fallback: fallback}
}

// Lookup 实现 Directory
func (d *TableDirectory) Lookup(pincode string) (Region, bool) {
	if r, ok := d.regions[pincode]; ok {
		return r, true
	}
	if d.fallback != nil {
		return d.fallback.Lookup(pincode)
	}
	return Region{}, false
}

// Len 快照条数
func (d *TableDirectory) Len() int {
	return len(d.regions)
}
