package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gpa-calculator/backend/internal/dto"
	"gpa-calculator/backend/internal/model"
	"gpa-calculator/backend/internal/repository"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrModuleNotFound   = errors.New("课程不存在")
	ErrModuleCodeExists = errors.New("课程代码已存在")
)

// ModuleService 课程目录业务接口
type ModuleService interface {
	Create(ctx context.Context, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ModuleResponse, error)
	List(ctx context.Context, req *dto.ModuleListRequest) ([]dto.ModuleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateModuleRequest) (*dto.ModuleResponse, error)
	Delete(ctx context.Context, id string) error
	ParseImportFile(reader io.Reader) ([]ImportModuleRow, error)
	ImportModules(ctx context.Context, rows []ImportModuleRow) (*dto.ImportModuleResponse, error)
}

// ImportModuleRow Excel 中解析出的一行（原始文本，校验在导入阶段进行）
type ImportModuleRow struct {
	Row            int
	Code           string
	Name           string
	Credits        string
	Year           string
	Semester       string
	GPA            string
	Specialization string
}

type moduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewModuleService 创建 ModuleService 实例
func NewModuleService(repo *repository.Repository, logger *zap.Logger) ModuleService {
	return &moduleService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *moduleService) Create(ctx context.Context, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	code := NormalizeCode(req.ModuleCode)
	if err := s.ensureCodeAvailable(ctx, code, ""); err != nil {
		return nil, err
	}

	module := &model.Module{
		Code:               code,
		Name:               strings.TrimSpace(req.ModuleName),
		Credits:            req.Credits,
		Year:               req.Year,
		Semester:           req.Semester,
		GPAEligible:        true,
		SpecializationCode: normalizeOptionalCode(req.Specialization),
	}
	if req.GPA != nil {
		module.GPAEligible = *req.GPA
	}

	if err := s.repo.Module.Create(ctx, module); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrModuleCodeExists
		}
		s.logger.Error("创建课程失败", zap.String("code", code), zap.Error(err))
		return nil, apperrors.Infrastructure("create module", err)
	}

	return toModuleResponse(module), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *moduleService) GetByID(ctx context.Context, id string) (*dto.ModuleResponse, error) {
	module, err := s.getModule(ctx, id)
	if err != nil {
		return nil, err
	}
	return toModuleResponse(module), nil
}

// ────────────────────── List ──────────────────────

func (s *moduleService) List(ctx context.Context, req *dto.ModuleListRequest) ([]dto.ModuleResponse, error) {
	filter := repository.ModuleFilter{
		Year:     req.Year,
		Semester: req.Semester,
		GPAOnly:  req.GPAOnly,
	}
	if code := normalizeOptionalCode(&req.Specialization); code != nil {
		filter.Specialization = *code
	}

	modules, err := s.repo.Module.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, apperrors.Infrastructure("list modules", err)
	}

	result := make([]dto.ModuleResponse, 0, len(modules))
	for i := range modules {
		result = append(result, *toModuleResponse(&modules[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *moduleService) Update(ctx context.Context, id string, req *dto.UpdateModuleRequest) (*dto.ModuleResponse, error) {
	module, err := s.getModule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ModuleCode != nil {
		code := NormalizeCode(*req.ModuleCode)
		if code != NormalizeCode(module.Code) {
			if err := s.ensureCodeAvailable(ctx, code, module.ModuleID); err != nil {
				return nil, err
			}
		}
		module.Code = code
	}
	if req.ModuleName != nil {
		module.Name = strings.TrimSpace(*req.ModuleName)
	}
	if req.Credits != nil {
		module.Credits = *req.Credits
	}
	if req.Year != nil {
		module.Year = *req.Year
	}
	if req.Semester != nil {
		module.Semester = *req.Semester
	}
	if req.GPA != nil {
		module.GPAEligible = *req.GPA
	}
	if req.Specialization != nil {
		module.SpecializationCode = normalizeOptionalCode(req.Specialization)
	}

	if err := s.repo.Module.Update(ctx, module); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrModuleCodeExists
		}
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Infrastructure("update module", err)
	}

	return toModuleResponse(module), nil
}

// ────────────────────── Delete ──────────────────────

func (s *moduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.getModule(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Module.Delete(ctx, id); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return apperrors.Infrastructure("delete module", err)
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（代码/名称/学分/学年/学期）")
	ErrImportBadFile     = errors.New("无法解析Excel文件")
)

// ParseImportFile 解析课程导入 Excel 文件，返回解析后的行数据
func (s *moduleService) ParseImportFile(reader io.Reader) ([]ImportModuleRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseModuleHeaderIndex(excelRows[0])
	for _, required := range []string{"code", "name", "credits", "year", "semester"} {
		if colIndex[required] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	cell := func(row []string, col string) string {
		idx := colIndex[col]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportModuleRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportModuleRow{
			Row:            i + 1,
			Code:           cell(row, "code"),
			Name:           cell(row, "name"),
			Credits:        cell(row, "credits"),
			Year:           cell(row, "year"),
			Semester:       cell(row, "semester"),
			GPA:            cell(row, "gpa"),
			Specialization: cell(row, "specialization"),
		}

		// 跳过全空行
		if item.Code == "" && item.Name == "" && item.Credits == "" && item.Year == "" && item.Semester == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseModuleHeaderIndex 解析表头，返回列名 -> 列索引映射（比较键匹配，容忍大小写与空格）
func parseModuleHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"code":           -1,
		"name":           -1,
		"credits":        -1,
		"year":           -1,
		"semester":       -1,
		"gpa":            -1,
		"specialization": -1,
	}
	for i, h := range header {
		switch ComparableKey(h) {
		case "modulecode", "code":
			idx["code"] = i
		case "modulename", "name":
			idx["name"] = i
		case "credits", "credit":
			idx["credits"] = i
		case "year":
			idx["year"] = i
		case "semester":
			idx["semester"] = i
		case "gpa", "gpaeligible":
			idx["gpa"] = i
		case "specialization":
			idx["specialization"] = i
		}
	}
	return idx
}

// ────────────────────── ImportModules ──────────────────────

func (s *moduleService) ImportModules(ctx context.Context, rows []ImportModuleRow) (*dto.ImportModuleResponse, error) {
	resp := &dto.ImportModuleResponse{Total: len(rows)}
	seen := make(map[string]int, len(rows))

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportModuleError{Row: row, Reason: reason})
	}

	for _, row := range rows {
		module, reason := buildImportedModule(row)
		if reason != "" {
			fail(row.Row, reason)
			continue
		}

		if first, dup := seen[module.Code]; dup {
			fail(row.Row, fmt.Sprintf("课程代码与第 %d 行重复: %s", first, module.Code))
			continue
		}
		seen[module.Code] = row.Row

		if _, err := s.repo.Module.GetByCode(ctx, module.Code); err == nil {
			fail(row.Row, fmt.Sprintf("课程代码已存在: %s", module.Code))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("导入时查询课程失败", zap.String("code", module.Code), zap.Error(err))
			return nil, apperrors.Infrastructure("import modules", err)
		}

		if err := s.repo.Module.Create(ctx, module); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(row.Row, fmt.Sprintf("课程代码已存在: %s", module.Code))
				continue
			}
			s.logger.Error("导入课程失败", zap.Int("row", row.Row), zap.Error(err))
			return nil, apperrors.Infrastructure("import modules", err)
		}
		resp.Success++
	}

	s.logger.Info("课程导入完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// buildImportedModule 校验一行导入数据；失败时返回原因
func buildImportedModule(row ImportModuleRow) (*model.Module, string) {
	code := NormalizeCode(row.Code)
	if code == "" || row.Name == "" {
		return nil, "课程代码与名称不能为空"
	}
	if len(code) > 32 {
		return nil, "课程代码过长"
	}

	credits, err := strconv.Atoi(row.Credits)
	if err != nil || credits < 1 || credits > 16 {
		return nil, fmt.Sprintf("学分无效: %q（应为 1-16）", row.Credits)
	}
	year, err := strconv.Atoi(row.Year)
	if err != nil || year < 1 || year > 4 {
		return nil, fmt.Sprintf("学年无效: %q（应为 1-4）", row.Year)
	}
	semester, err := strconv.Atoi(row.Semester)
	if err != nil || (semester != 1 && semester != 2) {
		return nil, fmt.Sprintf("学期无效: %q（应为 1 或 2）", row.Semester)
	}

	gpa := true
	if row.GPA != "" {
		switch strings.ToLower(row.GPA) {
		case "true", "yes", "y", "1":
			gpa = true
		case "false", "no", "n", "0":
			gpa = false
		default:
			return nil, fmt.Sprintf("GPA 标记无效: %q", row.GPA)
		}
	}

	return &model.Module{
		Code:               code,
		Name:               row.Name,
		Credits:            credits,
		Year:               year,
		Semester:           semester,
		GPAEligible:        gpa,
		SpecializationCode: normalizeOptionalCode(&row.Specialization),
	}, ""
}

// ── 内部辅助方法 ──

// getModule 按 ID 查询；非 UUID 的 ID 不可能存在，直接视为不存在
func (s *moduleService) getModule(ctx context.Context, id string) (*model.Module, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrModuleNotFound
	}

	module, err := s.repo.Module.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Infrastructure("get module", err)
	}
	return module, nil
}

// ensureCodeAvailable 检查代码未被其他课程占用
func (s *moduleService) ensureCodeAvailable(ctx context.Context, code, selfID string) error {
	existing, err := s.repo.Module.GetByCode(ctx, code)
	if err == nil {
		if existing.ModuleID != selfID {
			return ErrModuleCodeExists
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	s.logger.Error("查询课程代码失败", zap.String("code", code), zap.Error(err))
	return apperrors.Infrastructure("get module by code", err)
}

func normalizeOptionalCode(code *string) *string {
	if code == nil {
		return nil
	}
	normalized := NormalizeCode(*code)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func toModuleResponse(m *model.Module) *dto.ModuleResponse {
	return &dto.ModuleResponse{
		ID:             m.ModuleID,
		ModuleCode:     m.Code,
		ModuleName:     m.Name,
		Credits:        m.Credits,
		Year:           m.Year,
		Semester:       m.Semester,
		GPA:            m.GPAEligible,
		Specialization: m.SpecializationCode,
		CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      m.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
