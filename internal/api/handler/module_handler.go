package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gpa-calculator/backend/internal/dto"
	"gpa-calculator/backend/internal/service"
	"gpa-calculator/backend/pkg/response"
	"gpa-calculator/backend/pkg/validator"
)

// ModuleHandler 课程目录 HTTP 处理器
type ModuleHandler struct {
	moduleSvc service.ModuleService
}

// NewModuleHandler 创建 ModuleHandler
func NewModuleHandler(moduleSvc service.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleSvc: moduleSvc}
}

// ListModules 获取课程列表
// GET /api/v1/modules?year=3&semester=1&specialization=SE&gpaOnly=true
func (h *ModuleHandler) ListModules(c *gin.Context) {
	var req dto.ModuleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	modules, err := h.moduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleModuleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": modules})
}

// GetModule 获取课程详情
// GET /api/v1/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	module, err := h.moduleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleModuleError(c, err)
		return
	}

	response.OK(c, module)
}

// CreateModule 创建课程
// POST /api/v1/modules
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.Translate(err))
		return
	}

	module, err := h.moduleSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleModuleError(c, err)
		return
	}

	response.Created(c, module)
}

// UpdateModule 更新课程
// PUT /api/v1/modules/:id
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.Translate(err))
		return
	}

	module, err := h.moduleSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleModuleError(c, err)
		return
	}

	response.OK(c, module)
}

// DeleteModule 删除课程
// DELETE /api/v1/modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	if err := h.moduleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleModuleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportModules 从 Excel 批量导入课程
// POST /api/v1/modules/import  multipart/form-data, field="file"
func (h *ModuleHandler) ImportModules(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 20100, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	rows, err := h.moduleSvc.ParseImportFile(file)
	if err != nil {
		h.handleModuleError(c, err)
		return
	}

	result, err := h.moduleSvc.ImportModules(c.Request.Context(), rows)
	if err != nil {
		h.handleModuleError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ModuleHandler) handleModuleError(c *gin.Context, err error) {
	if respondUnavailable(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 20001, "课程不存在")
	case errors.Is(err, service.ErrModuleCodeExists):
		response.Conflict(c, 20002, "课程代码已存在")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 20101, "无法解析Excel文件")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 20102, err.Error())
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 20103, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 20104, err.Error())
	default:
		response.InternalError(c)
	}
}
