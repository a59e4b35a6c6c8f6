package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gpa-calculator/backend/internal/dto"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestCalculateService() (CalculateService, *mockModuleRepo, *mockSpecializationRepo) {
	repo, modules, specs := newTestRepository()
	logger := zap.NewNop()
	specSvc := NewSpecializationService(repo, nil, time.Minute, logger)
	return NewCalculateService(repo, specSvc, logger), modules, specs
}

func graded(code, grade string, credits float64, year int) dto.GradedModuleInput {
	return dto.GradedModuleInput{ModuleCode: code, Grade: grade, Credits: float(credits), Year: intPtr(year)}
}

// ── CalculateGPA 测试 ──

func TestCalculateService_CalculateGPA(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	resp, err := svc.CalculateGPA(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{
			{ModuleCode: "X1", Grade: "A", Credits: float(15)},
			{ModuleCode: "X2", Grade: "B", Credits: float(15)},
		},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.TotalCredits != 30 || resp.TotalPoints != 105 || resp.GPA != 3.5 {
		t.Errorf("结果不符: %+v", resp)
	}
	if resp.Specialization != nil {
		t.Errorf("未指定专业时 specialization 应为 nil，实际: %+v", resp.Specialization)
	}
}

func TestCalculateService_CalculateGPA_LegacyGradesField(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	resp, err := svc.CalculateGPA(context.Background(), &dto.CalculateRequest{
		Grades: []dto.GradedModuleInput{{ModuleCode: "X1", Grade: "C", Credits: float(3)}},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.GPA != 2.0 {
		t.Errorf("期望 GPA=2.0，实际 %v", resp.GPA)
	}
}

func TestCalculateService_CalculateGPA_EmptyEntries(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	_, err := svc.CalculateGPA(context.Background(), &dto.CalculateRequest{})
	if !errors.Is(err, ErrEmptyEntries) {
		t.Errorf("期望 ErrEmptyEntries，实际: %v", err)
	}
}

func TestCalculateService_CalculateGPA_UnsupportedGrade(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	resp, err := svc.CalculateGPA(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{
			{ModuleCode: "X1", Grade: "A", Credits: float(3)},
			{ModuleCode: "X2", Grade: "Z", Credits: float(3)},
		},
	})
	if resp != nil {
		t.Errorf("失败时不应返回部分结果: %+v", resp)
	}
	var entryErr *EntryError
	if !errors.As(err, &entryErr) || !errors.Is(err, ErrUnsupportedGrade) || entryErr.ModuleCode != "X2" {
		t.Errorf("期望 X2 的 ErrUnsupportedGrade，实际: %v", err)
	}
}

// ── 目录补全测试 ──

func TestCalculateService_Report_FillsFromCatalog(t *testing.T) {
	svc, modules, specs := setupTestCalculateService()
	byID := seedModule(modules, "SE301", "Architecture", 4, 3, true)
	seedModule(modules, "SE401", "Capstone", 8, 4, true)
	spec := seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	resp, err := svc.Report(context.Background(), &dto.CalculateRequest{
		SpecializationID: "software engineering",
		Modules: []dto.GradedModuleInput{
			{ModuleID: byID.ModuleID, Grade: "A"},
			{ModuleCode: "se401", Grade: "B+"},
			graded("SE201", "B", 3, 2),
		},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}

	if resp.Specialization == nil || resp.Specialization.ID != spec.SpecializationID {
		t.Errorf("专业方向摘要不符: %+v", resp.Specialization)
	}
	if resp.TotalCredits != 15 || resp.TotalModules != 3 {
		t.Errorf("学分或课程数不符: %+v", resp)
	}
	if resp.PerYearCredits[3] != 4 || resp.PerYearCredits[4] != 8 || resp.PerYearCredits[2] != 3 {
		t.Errorf("各学年学分不符: %v", resp.PerYearCredits)
	}
	// 0.2*3.0 + 0.3*4.0 + 0.5*3.3
	if resp.WGPA != 3.45 {
		t.Errorf("期望 WGPA=3.45，实际 %v", resp.WGPA)
	}

	if len(resp.Breakdown) != 3 {
		t.Fatalf("明细应为 3 条，实际 %d", len(resp.Breakdown))
	}
	first := resp.Breakdown[0]
	if first.ModuleCode != "SE201" || first.Year != 2 || first.Points != 3.0 {
		t.Errorf("明细应按学年排序: %+v", first)
	}
	if resp.Breakdown[1].ModuleName != "Architecture" || resp.Breakdown[1].ModuleCode != "SE301" {
		t.Errorf("按 ID 补全的课程不符: %+v", resp.Breakdown[1])
	}
	if resp.Breakdown[2].Grade != "B+" || resp.Breakdown[2].Points != 3.3 {
		t.Errorf("成绩或绩点不符: %+v", resp.Breakdown[2])
	}
}

func TestCalculateService_Report_ExcludesNonGPAModules(t *testing.T) {
	svc, modules, _ := setupTestCalculateService()
	seedModule(modules, "IN390", "Internship", 6, 3, false)

	resp, err := svc.Report(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{
			{ModuleCode: "in390", Grade: "A"},
			graded("SE301", "B", 4, 3),
		},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.TotalModules != 1 || resp.TotalCredits != 4 {
		t.Errorf("不计入 GPA 的课程应被排除: %+v", resp)
	}
	if len(resp.ExcludedModules) != 1 || resp.ExcludedModules[0] != "IN390" {
		t.Errorf("excludedModules 不符: %v", resp.ExcludedModules)
	}
}

func TestCalculateService_Report_OnlyExcludedModulesIsEmpty(t *testing.T) {
	svc, modules, _ := setupTestCalculateService()
	seedModule(modules, "IN390", "Internship", 6, 3, false)

	_, err := svc.Report(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{{ModuleCode: "IN390", Grade: "A"}},
	})
	if !errors.Is(err, ErrEmptyEntries) {
		t.Errorf("期望 ErrEmptyEntries，实际: %v", err)
	}
}

func TestCalculateService_EntryErrorIndexCountsExcludedModules(t *testing.T) {
	svc, modules, _ := setupTestCalculateService()
	seedModule(modules, "ENG101", "Academic English", 3, 1, false)

	req := &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{
			{ModuleCode: "ENG101", Grade: "A"},
			{Grade: "A", Credits: float(3), Year: intPtr(2)},
			{Grade: "Z", Credits: float(3), Year: intPtr(2)},
		},
	}

	_, err := svc.Report(context.Background(), req)
	var entryErr *EntryError
	if !errors.As(err, &entryErr) || !errors.Is(err, ErrUnsupportedGrade) {
		t.Fatalf("期望 ErrUnsupportedGrade 条目错误，实际: %v", err)
	}
	if entryErr.Index != 2 {
		t.Errorf("Report: 下标应指向请求中的第 3 条，实际 %d", entryErr.Index)
	}

	_, err = svc.CalculateGPA(context.Background(), req)
	if !errors.As(err, &entryErr) || entryErr.Index != 2 {
		t.Errorf("CalculateGPA: 下标应指向请求中的第 3 条，实际: %v", err)
	}
}

func TestCalculateService_InvalidCreditsIndexAfterExcludedModule(t *testing.T) {
	svc, modules, _ := setupTestCalculateService()
	seedModule(modules, "IN390", "Internship", 6, 3, false)

	_, err := svc.Report(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{
			{ModuleCode: "IN390", Grade: "A"},
			graded("SE301", "A", -1, 3),
		},
	})
	var entryErr *EntryError
	if !errors.As(err, &entryErr) || !errors.Is(err, ErrInvalidCredits) || entryErr.Index != 1 || entryErr.ModuleCode != "SE301" {
		t.Errorf("期望第 2 条 SE301 的 ErrInvalidCredits，实际: %v", err)
	}
}

func TestCalculateService_Report_UnknownModuleID(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	for _, id := range []string{"8d6f0a57-1b5e-4c43-9d67-3c2f2f0c2b11", "bogus"} {
		_, err := svc.Report(context.Background(), &dto.CalculateRequest{
			Modules: []dto.GradedModuleInput{{ModuleID: id, Grade: "A"}},
		})
		var entryErr *EntryError
		if !errors.As(err, &entryErr) || !errors.Is(err, ErrModuleNotFound) {
			t.Errorf("id %q: 期望 ErrModuleNotFound 条目错误，实际: %v", id, err)
		}
	}
}

func TestCalculateService_Report_MissingYearForUncataloguedModule(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	_, err := svc.Report(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{{ModuleCode: "ZZ999", Grade: "A", Credits: float(3)}},
	})
	if !errors.Is(err, ErrInvalidYear) {
		t.Errorf("期望 ErrInvalidYear，实际: %v", err)
	}
}

func TestCalculateService_Report_UnknownSpecialization(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	_, err := svc.Report(context.Background(), &dto.CalculateRequest{
		SpecializationID: "Astrophysics",
		Modules:          []dto.GradedModuleInput{graded("X1", "A", 3, 3)},
	})
	if !errors.Is(err, ErrSpecializationNotFound) {
		t.Errorf("期望 ErrSpecializationNotFound，实际: %v", err)
	}
}

func TestCalculateService_Report_CatalogFailure(t *testing.T) {
	svc, modules, _ := setupTestCalculateService()
	modules.err = errors.New("connection refused")

	_, err := svc.Report(context.Background(), &dto.CalculateRequest{
		Modules: []dto.GradedModuleInput{graded("X1", "A", 3, 3)},
	})
	if !errors.Is(err, apperrors.ErrCatalogUnavailable) {
		t.Errorf("期望基础设施错误，实际: %v", err)
	}
}

// ── ExportReport 测试 ──

func TestCalculateService_ExportReport(t *testing.T) {
	svc, _, specs := setupTestCalculateService()
	seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	buf, filename, err := svc.ExportReport(context.Background(), &dto.CalculateRequest{
		SpecializationID: "SE",
		Modules: []dto.GradedModuleInput{
			graded("SE301", "A", 4, 3),
			graded("SE401", "B", 8, 4),
		},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if !strings.HasPrefix(filename, "gpa-results-") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件无法解析: %v", err)
	}
	defer f.Close()

	title, _ := f.GetCellValue(summarySheet, "A1")
	if !strings.Contains(title, "Software Engineering") {
		t.Errorf("汇总标题不符: %s", title)
	}
	rows, err := f.GetRows(breakdownSheet)
	if err != nil {
		t.Fatalf("读取明细失败: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "SE301" || rows[2][0] != "SE401" {
		t.Errorf("明细行不符: %v", rows)
	}
}

func TestCalculateService_ExportReport_PropagatesValidation(t *testing.T) {
	svc, _, _ := setupTestCalculateService()

	_, _, err := svc.ExportReport(context.Background(), &dto.CalculateRequest{})
	if !errors.Is(err, ErrEmptyEntries) {
		t.Errorf("期望 ErrEmptyEntries，实际: %v", err)
	}
}
