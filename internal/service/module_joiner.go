package service

import (
	"context"

	"gpa-calculator/backend/internal/dto"
	"gpa-calculator/backend/internal/model"
	"gpa-calculator/backend/internal/repository"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// ModuleJoiner 将专业方向的代码列表展开为课程记录
//
// 输出与去重后的代码一一对应：目录中存在的代码输出真实课程，
// 缺失的代码输出占位课程（placeholder=true），单个缺失不会中断整次展开。
type ModuleJoiner struct {
	modules repository.ModuleRepository
}

// NewModuleJoiner 创建 ModuleJoiner
func NewModuleJoiner(modules repository.ModuleRepository) *ModuleJoiner {
	return &ModuleJoiner{modules: modules}
}

// JoinModules 展开代码列表；year 用于标记占位课程所属学年
func (j *ModuleJoiner) JoinModules(ctx context.Context, codes []string, year int) ([]dto.ResolvedModuleRef, error) {
	unique := DedupeCodes(SplitCodes(codes...))
	if len(unique) == 0 {
		return []dto.ResolvedModuleRef{}, nil
	}

	found, err := j.modules.FindByCodes(ctx, unique)
	if err != nil {
		return nil, apperrors.Infrastructure("find modules by codes", err)
	}

	byCode := make(map[string]*model.Module, len(found))
	for i := range found {
		byCode[NormalizeCode(found[i].Code)] = &found[i]
	}

	refs := make([]dto.ResolvedModuleRef, 0, len(unique))
	for _, code := range unique {
		if m, ok := byCode[code]; ok {
			refs = append(refs, toModuleRef(m))
			continue
		}
		refs = append(refs, placeholderModuleRef(code, year))
	}

	return refs, nil
}

func toModuleRef(m *model.Module) dto.ResolvedModuleRef {
	semester := m.Semester
	return dto.ResolvedModuleRef{
		ID:         m.ModuleID,
		ModuleCode: m.Code,
		ModuleName: m.Name,
		Credits:    m.Credits,
		Year:       m.Year,
		Semester:   &semester,
		GPA:        m.GPAEligible,
	}
}

func placeholderModuleRef(code string, year int) dto.ResolvedModuleRef {
	return dto.ResolvedModuleRef{
		ModuleCode:  code,
		ModuleName:  "Module " + code,
		Credits:     0,
		Year:        year,
		Semester:    nil,
		GPA:         true,
		Placeholder: true,
	}
}
