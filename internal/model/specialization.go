package model

// Specialization 专业方向表，对应 specializations（第三、四学年）
type Specialization struct {
	SpecializationID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code             string   `gorm:"type:varchar(64);not null"                      json:"specializationCode"`
	Name             string   `gorm:"type:varchar(200);not null"                     json:"name"`
	Year3Codes       CodeList `gorm:"column:year3_codes;type:text[];not null"        json:"year3Modules"`
	Year4Codes       CodeList `gorm:"column:year4_codes;type:text[];not null"        json:"year4Modules"`
	MinCreditsYear3  int      `gorm:"column:min_credits_year3;not null;default:30"   json:"minCreditsYear3"`
	MinCreditsYear4  int      `gorm:"column:min_credits_year4;not null;default:30"   json:"minCreditsYear4"`
	BaseModel
}

// TableName 指定表名
func (Specialization) TableName() string { return "specializations" }
