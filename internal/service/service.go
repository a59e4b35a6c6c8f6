package service

import (
	"go.uber.org/zap"

	"gpa-calculator/backend/config"
	"gpa-calculator/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Module         ModuleService
	Specialization SpecializationService
	Calculate      CalculateService
}

// NewService 创建 Service 聚合
// cache 为 nil 时专业目录直接查库
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache CatalogCache,
	logger *zap.Logger,
) *Service {
	specialization := NewSpecializationService(repo, cache, cfg.Redis.CatalogCacheTTL, logger)
	return &Service{
		Module:         NewModuleService(repo, logger),
		Specialization: specialization,
		Calculate:      NewCalculateService(repo, specialization, logger),
	}
}
