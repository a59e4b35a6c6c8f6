package dto

// ── GPA 计算 DTO ──

// GradedModuleInput 单条已评分课程
// credits/year 缺省时可由 moduleId 或 moduleCode 从目录补全
type GradedModuleInput struct {
	ModuleID   string   `json:"moduleId"`
	ModuleCode string   `json:"moduleCode"`
	ModuleName string   `json:"moduleName"`
	Credits    *float64 `json:"credits"`
	Grade      string   `json:"grade"`
	GradePoint *float64 `json:"gradePoint"`
	Year       *int     `json:"year"`
}

// CalculateRequest GPA 计算请求
type CalculateRequest struct {
	SpecializationID string              `json:"specializationId" binding:"max=200"`
	Modules          []GradedModuleInput `json:"modules" binding:"max=500"`
	Grades           []GradedModuleInput `json:"grades"  binding:"max=500"` // 旧前端字段名
}

// Entries 返回待计算条目（modules 优先，缺省时取 grades）
func (r *CalculateRequest) Entries() []GradedModuleInput {
	if len(r.Modules) > 0 {
		return r.Modules
	}
	return r.Grades
}

// SpecializationSummary 计算结果中的专业方向摘要
type SpecializationSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MinCreditsYear3 int    `json:"minCreditsYear3"`
	MinCreditsYear4 int    `json:"minCreditsYear4"`
}

// GPAResponse 单一 GPA 结果
type GPAResponse struct {
	Specialization *SpecializationSummary `json:"specialization"`
	TotalCredits   float64                `json:"totalCredits"`
	TotalPoints    float64                `json:"totalPoints"`
	GPA            float64                `json:"gpa"`
}

// GradeBreakdownItem 成绩明细行
type GradeBreakdownItem struct {
	ModuleCode string  `json:"moduleCode"`
	ModuleName string  `json:"moduleName"`
	Year       int     `json:"year"`
	Credits    float64 `json:"credits"`
	Grade      string  `json:"grade"`
	Points     float64 `json:"points"` // 保留 1 位小数
}

// GPAReportResponse 多学年 GPA 报告
type GPAReportResponse struct {
	Specialization  *SpecializationSummary `json:"specialization"`
	PerYearGPA      map[int]float64        `json:"perYearGPA"`
	PerYearCredits  map[int]float64        `json:"perYearCredits"`
	CGPA            float64                `json:"cgpa"`
	WGPA            float64                `json:"wgpa"`
	TotalCredits    float64                `json:"totalCredits"`
	TotalPoints     float64                `json:"totalPoints"`
	TotalModules    int                    `json:"totalModules"`
	Breakdown       []GradeBreakdownItem   `json:"breakdown"`
	ExcludedModules []string               `json:"excludedModules"`
}
