package model

// Module 课程表，对应 modules
type Module struct {
	ModuleID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code               string  `gorm:"type:varchar(32);not null"                      json:"moduleCode"`
	Name               string  `gorm:"type:varchar(200);not null"                     json:"moduleName"`
	Credits            int     `gorm:"not null"                                       json:"credits"`
	Year               int     `gorm:"not null"                                       json:"year"`
	Semester           int     `gorm:"not null"                                       json:"semester"`
	GPAEligible        bool    `gorm:"not null;default:true"                          json:"GPA"`
	SpecializationCode *string `gorm:"type:varchar(64)"                               json:"specialization,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Module) TableName() string { return "modules" }
