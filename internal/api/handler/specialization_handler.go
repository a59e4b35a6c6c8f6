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

// SpecializationHandler 专业方向 HTTP 处理器
type SpecializationHandler struct {
	specSvc service.SpecializationService
}

// NewSpecializationHandler 创建 SpecializationHandler
func NewSpecializationHandler(specSvc service.SpecializationService) *SpecializationHandler {
	return &SpecializationHandler{specSvc: specSvc}
}

// ListSpecializations 获取全部专业方向
// GET /api/v1/specializations
func (h *SpecializationHandler) ListSpecializations(c *gin.Context) {
	specs, err := h.specSvc.List(c.Request.Context())
	if err != nil {
		h.handleSpecializationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": specs})
}

// CreateSpecialization 创建专业方向
// POST /api/v1/specializations
func (h *SpecializationHandler) CreateSpecialization(c *gin.Context) {
	var req dto.CreateSpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.Translate(err))
		return
	}

	spec, err := h.specSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSpecializationError(c, err)
		return
	}

	response.Created(c, spec)
}

// GetSpecialization 按任意标识（ID、代码、名称）解析专业方向
// GET /api/v1/specializations/:identifier
func (h *SpecializationHandler) GetSpecialization(c *gin.Context) {
	spec, err := h.specSvc.Resolve(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		h.handleSpecializationError(c, err)
		return
	}

	response.OK(c, spec)
}

// GetSpecializationModules 展开专业方向第三、四学年课程
// GET /api/v1/specializations/:identifier/modules
func (h *SpecializationHandler) GetSpecializationModules(c *gin.Context) {
	modules, err := h.specSvc.GetModules(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		h.handleSpecializationError(c, err)
		return
	}

	response.OK(c, modules)
}

func (h *SpecializationHandler) handleSpecializationError(c *gin.Context, err error) {
	if respondUnavailable(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSpecializationNotFound):
		response.NotFound(c, 21001, "专业方向不存在")
	case errors.Is(err, service.ErrSpecializationExists):
		response.Conflict(c, 21002, "专业代码或名称已存在")
	case errors.Is(err, service.ErrSpecializationInvalid):
		response.BadRequest(c, 21003, err.Error())
	case errors.Is(err, service.ErrEmptyIdentifier):
		response.BadRequest(c, 21004, "专业标识不能为空")
	default:
		response.InternalError(c)
	}
}
