package handler

import "gpa-calculator/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Module         *ModuleHandler
	Specialization *SpecializationHandler
	Calculate      *CalculateHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Module:         NewModuleHandler(svc.Module),
		Specialization: NewSpecializationHandler(svc.Specialization),
		Calculate:      NewCalculateHandler(svc.Calculate),
	}
}
