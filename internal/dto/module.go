package dto

// ── 课程模块 DTO ──

// CreateModuleRequest 创建课程请求
type CreateModuleRequest struct {
	ModuleCode     string  `json:"moduleCode"     binding:"required,modulecode"`
	ModuleName     string  `json:"moduleName"     binding:"required,notblank,max=200"`
	Credits        int     `json:"credits"        binding:"required,min=1,max=16"`
	Year           int     `json:"year"           binding:"required,oneof=1 2 3 4"`
	Semester       int     `json:"semester"       binding:"required,oneof=1 2"`
	GPA            *bool   `json:"GPA"`
	Specialization *string `json:"specialization" binding:"omitempty,max=64"`
}

// UpdateModuleRequest 更新课程请求（仅更新非空字段）
type UpdateModuleRequest struct {
	ModuleCode     *string `json:"moduleCode"     binding:"omitempty,modulecode"`
	ModuleName     *string `json:"moduleName"     binding:"omitempty,notblank,max=200"`
	Credits        *int    `json:"credits"        binding:"omitempty,min=1,max=16"`
	Year           *int    `json:"year"           binding:"omitempty,oneof=1 2 3 4"`
	Semester       *int    `json:"semester"       binding:"omitempty,oneof=1 2"`
	GPA            *bool   `json:"GPA"`
	Specialization *string `json:"specialization" binding:"omitempty,max=64"`
}

// ModuleListRequest 课程列表查询参数
type ModuleListRequest struct {
	Year           int    `form:"year"           binding:"omitempty,oneof=1 2 3 4"`
	Semester       int    `form:"semester"       binding:"omitempty,oneof=1 2"`
	Specialization string `form:"specialization"`
	GPAOnly        bool   `form:"gpaOnly"`
}

// ModuleResponse 课程信息响应
type ModuleResponse struct {
	ID             string  `json:"id"`
	ModuleCode     string  `json:"moduleCode"`
	ModuleName     string  `json:"moduleName"`
	Credits        int     `json:"credits"`
	Year           int     `json:"year"`
	Semester       int     `json:"semester"`
	GPA            bool    `json:"GPA"`
	Specialization *string `json:"specialization,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// ImportModuleResponse 批量导入结果
type ImportModuleResponse struct {
	Total   int                 `json:"total"`
	Success int                 `json:"success"`
	Failed  int                 `json:"failed"`
	Errors  []ImportModuleError `json:"errors,omitempty"`
}

// ImportModuleError 导入错误详情
type ImportModuleError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
