package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ── GPA 聚合 ────────────────────────────────────────────────
//
// 纯函数：输入已评分条目，输出各学年 GPA、累计 GPA (CGPA) 与加权 GPA (WGPA)。
// 任一条目无效则整次聚合失败，不返回部分结果。
// ─────────────────────────────────────────────────────────────

var (
	ErrEmptyEntries     = errors.New("至少需要一条已评分课程")
	ErrInvalidCredits   = errors.New("每门课程的学分必须为正数")
	ErrUnsupportedGrade = errors.New("不支持的成绩等级")
	ErrInvalidYear      = errors.New("学年必须为 1-4")
)

// gradePoints 13 级字母成绩对应绩点
var gradePoints = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"E":  0.0,
	"F":  0.0,
}

// yearWeights WGPA 学年权重。第一学年权重为 0，缺失学年不重新分配权重。
var yearWeights = map[int]float64{
	1: 0.0,
	2: 0.20,
	3: 0.30,
	4: 0.50,
}

// GradedEntry 一条已评分课程
type GradedEntry struct {
	ModuleCode string
	Grade      string
	GradePoint *float64 // 显式绩点，优先于 Grade
	Credits    float64
	Year       int
}

// EntryError 标识出错的条目
type EntryError struct {
	Index      int
	ModuleCode string
	Err        error
}

func (e *EntryError) Error() string {
	subject := e.ModuleCode
	if subject == "" {
		subject = "entry"
	}
	return fmt.Sprintf("第 %d 条 (%s): %v", e.Index+1, subject, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// GPAReport 多学年聚合结果（GPA 已保留 3 位小数）
type GPAReport struct {
	PerYearGPA     map[int]float64
	PerYearCredits map[int]float64
	CGPA           float64
	WGPA           float64
	TotalCredits   float64
	TotalPoints    float64
	TotalModules   int
}

// GPASummary 单一 GPA 结果（TotalPoints 不取整）
type GPASummary struct {
	TotalCredits float64
	TotalPoints  float64
	GPA          float64
}

// GradePoint 解析条目绩点：显式绩点原样使用，否则查表
func GradePoint(entry GradedEntry) (float64, error) {
	if entry.GradePoint != nil {
		p := *entry.GradePoint
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return 0, ErrUnsupportedGrade
		}
		return p, nil
	}
	p, ok := gradePoints[strings.ToUpper(strings.TrimSpace(entry.Grade))]
	if !ok {
		return 0, ErrUnsupportedGrade
	}
	return p, nil
}

// resolvedEntry 通过校验的条目
type resolvedEntry struct {
	credits float64
	point   float64
	year    int
}

// resolveEntries 校验全部条目；requireYear 为 true 时学年必须在 1-4
func resolveEntries(entries []GradedEntry, requireYear bool) ([]resolvedEntry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyEntries
	}

	resolved := make([]resolvedEntry, 0, len(entries))
	for i, entry := range entries {
		if math.IsNaN(entry.Credits) || math.IsInf(entry.Credits, 0) || entry.Credits <= 0 {
			return nil, &EntryError{Index: i, ModuleCode: entry.ModuleCode, Err: ErrInvalidCredits}
		}
		point, err := GradePoint(entry)
		if err != nil {
			return nil, &EntryError{Index: i, ModuleCode: entry.ModuleCode, Err: err}
		}
		if requireYear {
			if _, ok := yearWeights[entry.Year]; !ok {
				return nil, &EntryError{Index: i, ModuleCode: entry.ModuleCode, Err: ErrInvalidYear}
			}
		}
		resolved = append(resolved, resolvedEntry{credits: entry.Credits, point: point, year: entry.Year})
	}
	return resolved, nil
}

// Aggregate 计算各学年 GPA、CGPA 与 WGPA
func Aggregate(entries []GradedEntry) (*GPAReport, error) {
	resolved, err := resolveEntries(entries, true)
	if err != nil {
		return nil, err
	}

	yearCredits := make(map[int]float64)
	yearPoints := make(map[int]float64)
	var totalCredits, totalPoints float64

	for _, e := range resolved {
		yearCredits[e.year] += e.credits
		yearPoints[e.year] += e.credits * e.point
		totalCredits += e.credits
		totalPoints += e.credits * e.point
	}

	report := &GPAReport{
		PerYearGPA:     make(map[int]float64, len(yearCredits)),
		PerYearCredits: make(map[int]float64, len(yearCredits)),
		TotalCredits:   totalCredits,
		TotalPoints:    RoundTo(totalPoints, 3),
		TotalModules:   len(resolved),
	}

	var wgpa float64
	for year, credits := range yearCredits {
		gpa := ratio(yearPoints[year], credits)
		report.PerYearGPA[year] = RoundTo(gpa, 3)
		report.PerYearCredits[year] = credits
		wgpa += yearWeights[year] * gpa
	}

	report.CGPA = RoundTo(ratio(totalPoints, totalCredits), 3)
	report.WGPA = RoundTo(wgpa, 3)

	return report, nil
}

// ComputeGPA 单一 GPA：与 Aggregate 相同的条目规则，但不要求学年
// totalPoints 原样返回，仅 gpa 保留 3 位小数
func ComputeGPA(entries []GradedEntry) (*GPASummary, error) {
	resolved, err := resolveEntries(entries, false)
	if err != nil {
		return nil, err
	}

	var totalCredits, totalPoints float64
	for _, e := range resolved {
		totalCredits += e.credits
		totalPoints += e.credits * e.point
	}

	return &GPASummary{
		TotalCredits: totalCredits,
		TotalPoints:  totalPoints,
		GPA:          RoundTo(ratio(totalPoints, totalCredits), 3),
	}, nil
}

// RoundTo 四舍五入到指定小数位
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// ratio 分母为 0 时返回 0
func ratio(points, credits float64) float64 {
	if credits == 0 {
		return 0
	}
	return points / credits
}
