package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ── 专业方向 DTO ──

// CodeListInput 代码列表输入：兼容逗号分隔字符串、字符串数组与 null
type CodeListInput []string

// UnmarshalJSON 接受 "A,B"、["A","B,C"]、[101, "CS102"] 与 null
func (l *CodeListInput) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = CodeListInput{v}
	case []interface{}:
		list := make(CodeListInput, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case nil:
				continue
			case string:
				list = append(list, s)
			case float64:
				list = append(list, strconv.FormatFloat(s, 'f', -1, 64))
			default:
				return fmt.Errorf("代码列表元素类型不支持: %T", item)
			}
		}
		*l = list
	default:
		return fmt.Errorf("代码列表类型不支持: %T", raw)
	}
	return nil
}

// CreateSpecializationRequest 创建专业方向请求
// specializationNamme 为历史字段别名，仅在入库时折叠到 name
type CreateSpecializationRequest struct {
	Name               string        `json:"name"                binding:"omitempty,max=200"`
	LegacyName         string        `json:"specializationNamme" binding:"omitempty,max=200"`
	SpecializationCode string        `json:"specializationCode"  binding:"omitempty,max=64"`
	Year3Modules       CodeListInput `json:"year3Modules"`
	Year4Modules       CodeListInput `json:"year4Modules"`
	MinCreditsYear3    *int          `json:"minCreditsYear3"     binding:"omitempty,min=0"`
	MinCreditsYear4    *int          `json:"minCreditsYear4"     binding:"omitempty,min=0"`
}

// SpecializationResponse 专业方向响应（规范化视图）
type SpecializationResponse struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	SpecializationNamme string   `json:"specializationNamme"` // 兼容旧客户端的只读镜像
	SpecializationCode  string   `json:"specializationCode"`
	Year3Modules        []string `json:"year3Modules"`
	Year4Modules        []string `json:"year4Modules"`
	MinCreditsYear3     int      `json:"minCreditsYear3"`
	MinCreditsYear4     int      `json:"minCreditsYear4"`
}

// ResolvedModuleRef 目录中的课程，或目录缺失时合成的占位课程
type ResolvedModuleRef struct {
	ID          string `json:"id,omitempty"`
	ModuleCode  string `json:"moduleCode"`
	ModuleName  string `json:"moduleName"`
	Credits     int    `json:"credits"`
	Year        int    `json:"year"`
	Semester    *int   `json:"semester"`
	GPA         bool   `json:"GPA"`
	Placeholder bool   `json:"placeholder"`
}

// SpecializationModulesResponse 专业方向第三、四学年课程
type SpecializationModulesResponse struct {
	Year3Modules []ResolvedModuleRef `json:"year3Modules"`
	Year4Modules []ResolvedModuleRef `json:"year4Modules"`
}
