package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gpa-calculator/backend/internal/dto"
	"gpa-calculator/backend/internal/model"
	"gpa-calculator/backend/internal/repository"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// CalculateService GPA 计算业务接口
//
// 设计说明：
//   - 请求条目先做整体校验（空列表立即拒绝），再解析专业方向与目录补全，最后聚合
//   - credits/year 缺省时由 moduleId 或 moduleCode 从课程目录补全
//   - 目录中标记为不计入 GPA 的课程被排除，并在报告中列出
//   - 任一条目无效则整次计算失败，不返回部分结果
type CalculateService interface {
	// CalculateGPA 单一 GPA（totalCredits / totalPoints / gpa）
	CalculateGPA(ctx context.Context, req *dto.CalculateRequest) (*dto.GPAResponse, error)
	// Report 多学年报告（各学年 GPA、CGPA、WGPA、明细）
	Report(ctx context.Context, req *dto.CalculateRequest) (*dto.GPAReportResponse, error)
	// ExportReport 导出多学年报告为 Excel
	ExportReport(ctx context.Context, req *dto.CalculateRequest) (*bytes.Buffer, string, error)
}

type calculateService struct {
	repo           *repository.Repository
	specialization SpecializationService
	logger         *zap.Logger
}

// NewCalculateService 创建 CalculateService 实例
func NewCalculateService(repo *repository.Repository, specialization SpecializationService, logger *zap.Logger) CalculateService {
	return &calculateService{repo: repo, specialization: specialization, logger: logger}
}

// preparedEntries 通过目录补全后的待聚合条目
type preparedEntries struct {
	specialization *dto.SpecializationSummary
	entries        []GradedEntry
	names          []string
	indexes        []int // entries[i] 在请求 modules 中的原始下标
	excluded       []string
}

// remapEntryError 将聚合阶段的条目下标还原为请求中的原始下标
func (p *preparedEntries) remapEntryError(err error) error {
	var entryErr *EntryError
	if errors.As(err, &entryErr) && entryErr.Index >= 0 && entryErr.Index < len(p.indexes) {
		return &EntryError{Index: p.indexes[entryErr.Index], ModuleCode: entryErr.ModuleCode, Err: entryErr.Err}
	}
	return err
}

// ────────────────────── CalculateGPA ──────────────────────

func (s *calculateService) CalculateGPA(ctx context.Context, req *dto.CalculateRequest) (*dto.GPAResponse, error) {
	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, err := ComputeGPA(prepared.entries)
	if err != nil {
		return nil, prepared.remapEntryError(err)
	}

	return &dto.GPAResponse{
		Specialization: prepared.specialization,
		TotalCredits:   summary.TotalCredits,
		TotalPoints:    summary.TotalPoints,
		GPA:            summary.GPA,
	}, nil
}

// ────────────────────── Report ──────────────────────

func (s *calculateService) Report(ctx context.Context, req *dto.CalculateRequest) (*dto.GPAReportResponse, error) {
	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	report, err := Aggregate(prepared.entries)
	if err != nil {
		return nil, prepared.remapEntryError(err)
	}

	breakdown := make([]dto.GradeBreakdownItem, 0, len(prepared.entries))
	for i, entry := range prepared.entries {
		point, _ := GradePoint(entry) // Aggregate 已校验
		breakdown = append(breakdown, dto.GradeBreakdownItem{
			ModuleCode: entry.ModuleCode,
			ModuleName: prepared.names[i],
			Year:       entry.Year,
			Credits:    entry.Credits,
			Grade:      strings.ToUpper(strings.TrimSpace(entry.Grade)),
			Points:     RoundTo(point, 1),
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].Year != breakdown[j].Year {
			return breakdown[i].Year < breakdown[j].Year
		}
		return breakdown[i].ModuleCode < breakdown[j].ModuleCode
	})

	return &dto.GPAReportResponse{
		Specialization:  prepared.specialization,
		PerYearGPA:      report.PerYearGPA,
		PerYearCredits:  report.PerYearCredits,
		CGPA:            report.CGPA,
		WGPA:            report.WGPA,
		TotalCredits:    report.TotalCredits,
		TotalPoints:     report.TotalPoints,
		TotalModules:    report.TotalModules,
		Breakdown:       breakdown,
		ExcludedModules: prepared.excluded,
	}, nil
}

// ── 内部辅助方法 ──

// prepare 校验请求、解析专业方向并用课程目录补全条目
func (s *calculateService) prepare(ctx context.Context, req *dto.CalculateRequest) (*preparedEntries, error) {
	inputs := req.Entries()
	if len(inputs) == 0 {
		return nil, ErrEmptyEntries
	}

	prepared := &preparedEntries{excluded: []string{}}

	if id := strings.TrimSpace(req.SpecializationID); id != "" {
		spec, err := s.specialization.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		prepared.specialization = &dto.SpecializationSummary{
			ID:              spec.ID,
			Name:            spec.Name,
			MinCreditsYear3: spec.MinCreditsYear3,
			MinCreditsYear4: spec.MinCreditsYear4,
		}
	}

	catalog, err := s.lookupModules(ctx, inputs)
	if err != nil {
		return nil, err
	}

	for i, in := range inputs {
		module, err := catalog.find(i, in)
		if err != nil {
			return nil, err
		}

		entry := GradedEntry{
			ModuleCode: NormalizeCode(in.ModuleCode),
			Grade:      in.Grade,
			GradePoint: in.GradePoint,
		}
		if in.Credits != nil {
			entry.Credits = *in.Credits
		}
		if in.Year != nil {
			entry.Year = *in.Year
		}
		name := strings.TrimSpace(in.ModuleName)

		if module != nil {
			if !module.GPAEligible {
				prepared.excluded = append(prepared.excluded, module.Code)
				continue
			}
			if entry.ModuleCode == "" {
				entry.ModuleCode = module.Code
			}
			if entry.Credits == 0 {
				entry.Credits = float64(module.Credits)
			}
			if entry.Year == 0 {
				entry.Year = module.Year
			}
			if name == "" {
				name = module.Name
			}
		}

		prepared.entries = append(prepared.entries, entry)
		prepared.names = append(prepared.names, name)
		prepared.indexes = append(prepared.indexes, i)
	}

	if len(prepared.entries) == 0 {
		return nil, ErrEmptyEntries
	}
	return prepared, nil
}

// moduleLookup 请求涉及的目录课程
type moduleLookup struct {
	byID   map[string]*model.Module
	byCode map[string]*model.Module
}

// find 返回条目对应的目录课程；moduleId 指向不存在的课程时报错，代码未收录时返回 nil
func (l *moduleLookup) find(index int, in dto.GradedModuleInput) (*model.Module, error) {
	if id := strings.TrimSpace(in.ModuleID); id != "" {
		m, ok := l.byID[id]
		if !ok {
			return nil, &EntryError{Index: index, ModuleCode: id, Err: ErrModuleNotFound}
		}
		return m, nil
	}
	if code := NormalizeCode(in.ModuleCode); code != "" {
		return l.byCode[code], nil
	}
	return nil, nil
}

// lookupModules 批量加载请求引用的课程：代码一次批量查询，ID 逐个查询
func (s *calculateService) lookupModules(ctx context.Context, inputs []dto.GradedModuleInput) (*moduleLookup, error) {
	lookup := &moduleLookup{
		byID:   make(map[string]*model.Module),
		byCode: make(map[string]*model.Module),
	}

	var codes []string
	for _, in := range inputs {
		id := strings.TrimSpace(in.ModuleID)
		if id == "" {
			if code := NormalizeCode(in.ModuleCode); code != "" {
				codes = append(codes, code)
			}
			continue
		}
		if _, done := lookup.byID[id]; done {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		m, err := s.repo.Module.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
			return nil, apperrors.Infrastructure("get module", err)
		}
		lookup.byID[id] = m
	}

	codes = DedupeCodes(codes)
	if len(codes) == 0 {
		return lookup, nil
	}
	modules, err := s.repo.Module.FindByCodes(ctx, codes)
	if err != nil {
		s.logger.Error("批量查询课程失败", zap.Error(err))
		return nil, apperrors.Infrastructure("find modules by codes", err)
	}
	for i := range modules {
		lookup.byCode[NormalizeCode(modules[i].Code)] = &modules[i]
	}
	return lookup, nil
}
