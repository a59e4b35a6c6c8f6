package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gpa-calculator/backend/internal/service"
	apperrors "gpa-calculator/backend/pkg/errors"
	"gpa-calculator/backend/pkg/response"
)

// respondUnavailable 目录不可达或超时时写入 503 响应。
// 返回 true 表示已写入响应，调用方应直接 return。
func respondUnavailable(c *gin.Context, err error) bool {
	if errors.Is(err, apperrors.ErrCatalogUnavailable) || apperrors.IsTimeout(err) {
		response.ServiceUnavailable(c)
		return true
	}
	return false
}

// respondEntryError 单条成绩条目无效时写入 400（引用课程不存在时 404），details 指出出错的条目。
func respondEntryError(c *gin.Context, err error) bool {
	var entryErr *service.EntryError
	if !errors.As(err, &entryErr) {
		return false
	}

	status, code, message := http.StatusBadRequest, 30003, "成绩条目无效"
	switch {
	case errors.Is(entryErr.Err, service.ErrUnsupportedGrade):
		code, message = 30004, "不支持的成绩等级"
	case errors.Is(entryErr.Err, service.ErrInvalidCredits):
		code, message = 30005, "学分必须为正数"
	case errors.Is(entryErr.Err, service.ErrInvalidYear):
		code, message = 30006, "学年必须为 1-4"
	case errors.Is(entryErr.Err, service.ErrModuleNotFound):
		status, code, message = http.StatusNotFound, 20001, "课程不存在"
	}
	response.ErrorWithDetails(c, status, code, message, entryErr.Error())
	return true
}
