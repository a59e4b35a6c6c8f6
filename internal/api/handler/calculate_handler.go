package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gpa-calculator/backend/internal/dto"
	"gpa-calculator/backend/internal/service"
	"gpa-calculator/backend/pkg/response"
	"gpa-calculator/backend/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CalculateHandler GPA 计算 HTTP 处理器
type CalculateHandler struct {
	calcSvc service.CalculateService
}

// NewCalculateHandler 创建 CalculateHandler
func NewCalculateHandler(calcSvc service.CalculateService) *CalculateHandler {
	return &CalculateHandler{calcSvc: calcSvc}
}

// CalculateGPA 计算单一 GPA
// POST /api/v1/calculate/gpa
func (h *CalculateHandler) CalculateGPA(c *gin.Context) {
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.Translate(err))
		return
	}

	result, err := h.calcSvc.CalculateGPA(c.Request.Context(), &req)
	if err != nil {
		h.handleCalculateError(c, err)
		return
	}

	response.OK(c, result)
}

// Report 生成多学年 GPA 报告
// POST /api/v1/calculate/report
func (h *CalculateHandler) Report(c *gin.Context) {
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.Translate(err))
		return
	}

	result, err := h.calcSvc.Report(c.Request.Context(), &req)
	if err != nil {
		h.handleCalculateError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportReport 导出 GPA 报告为 Excel
// POST /api/v1/calculate/report/export
func (h *CalculateHandler) ExportReport(c *gin.Context) {
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.Translate(err))
		return
	}

	buf, filename, err := h.calcSvc.ExportReport(c.Request.Context(), &req)
	if err != nil {
		h.handleCalculateError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *CalculateHandler) handleCalculateError(c *gin.Context, err error) {
	if respondUnavailable(c, err) || respondEntryError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmptyEntries):
		response.BadRequest(c, 30001, "至少需要一条已评分课程")
	case errors.Is(err, service.ErrSpecializationNotFound):
		response.NotFound(c, 21001, "专业方向不存在")
	case errors.Is(err, service.ErrEmptyIdentifier):
		response.BadRequest(c, 21004, "专业标识不能为空")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 30010, "生成 Excel 文件失败")
	default:
		response.InternalError(c)
	}
}
