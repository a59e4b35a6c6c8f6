package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gpa-calculator/backend/internal/dto"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

const (
	summarySheet   = "汇总"
	breakdownSheet = "成绩明细"
)

// ═══════════════════════════════════════════════════════════
// ExportReport 导出 GPA 报告为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "汇总"：专业方向、各学年学分与 GPA、CGPA、WGPA
//   - Sheet "成绩明细"：课程代码 | 课程名称 | 学年 | 学分 | 成绩 | 绩点
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *calculateService) ExportReport(ctx context.Context, req *dto.CalculateRequest) (*bytes.Buffer, string, error) {
	report, err := s.Report(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	// 默认 Sheet1 改名为汇总页，保持其为活动页
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(breakdownSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeSummarySheet(f, report, headerStyle)
	writeBreakdownSheet(f, report.Breakdown, headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("gpa-results-%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}

func writeSummarySheet(f *excelize.File, report *dto.GPAReportResponse, headerStyle int) {
	sheet := summarySheet
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "C", 14)

	title := "GPA 报告"
	if report.Specialization != nil {
		title = fmt.Sprintf("%s GPA 报告", report.Specialization.Name)
	}
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", "C1")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	row := 2
	f.SetCellValue(sheet, cell("A", row), "学年")
	f.SetCellValue(sheet, cell("B", row), "学分")
	f.SetCellValue(sheet, cell("C", row), "GPA")
	f.SetCellStyle(sheet, cell("A", row), cell("C", row), headerStyle)

	years := make([]int, 0, len(report.PerYearGPA))
	for year := range report.PerYearGPA {
		years = append(years, year)
	}
	sort.Ints(years)

	row = 3
	for _, year := range years {
		f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("第%d学年", year))
		f.SetCellValue(sheet, cell("B", row), report.PerYearCredits[year])
		f.SetCellValue(sheet, cell("C", row), report.PerYearGPA[year])
		row++
	}

	row++
	totals := []struct {
		label string
		value interface{}
	}{
		{"总学分", report.TotalCredits},
		{"总绩点", report.TotalPoints},
		{"课程数", report.TotalModules},
		{"CGPA", report.CGPA},
		{"WGPA", report.WGPA},
	}
	for _, t := range totals {
		f.SetCellValue(sheet, cell("A", row), t.label)
		f.SetCellValue(sheet, cell("B", row), t.value)
		row++
	}

	if len(report.ExcludedModules) > 0 {
		row++
		f.SetCellValue(sheet, cell("A", row), "不计入 GPA")
		for i, code := range report.ExcludedModules {
			f.SetCellValue(sheet, cell(colName(i+1), row), code)
		}
	}
}

func writeBreakdownSheet(f *excelize.File, items []dto.GradeBreakdownItem, headerStyle int) {
	sheet := breakdownSheet
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 36)
	f.SetColWidth(sheet, "C", "F", 10)

	headers := []string{"课程代码", "课程名称", "学年", "学分", "成绩", "绩点"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, item := range items {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), item.ModuleCode)
		f.SetCellValue(sheet, cell("B", row), item.ModuleName)
		f.SetCellValue(sheet, cell("C", row), item.Year)
		f.SetCellValue(sheet, cell("D", row), item.Credits)
		f.SetCellValue(sheet, cell("E", row), item.Grade)
		f.SetCellValue(sheet, cell("F", row), item.Points)
	}
}

// colName 0 起始列号转列名（0 → A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
