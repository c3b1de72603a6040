package entity

// PincodeRegion pincode 目录实体
type PincodeRegion struct {
	Pincode string `gorm:"column:pincode;primaryKey;type:char(6)"`
	City    string `gorm:"column:city;type:varchar(64);not null"`
	State   string `gorm:"column:state;type:varchar(8);not null;index:idx_state"`
	Metro   bool   `gorm:"column:metro;not null;default:false"`
	Special bool   `gorm:"column:special;not null;default:false"`
}

// TableName 指定表名
func (PincodeRegion) TableName() string {
	return "pincode_regions"
}
