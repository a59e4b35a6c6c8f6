package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gpa-calculator/backend/internal/dto"
	"gpa-calculator/backend/internal/model"
	"gpa-calculator/backend/internal/repository"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// ── 专业方向模块业务错误 ──

var (
	ErrSpecializationExists  = errors.New("专业代码或名称已存在")
	ErrSpecializationInvalid = errors.New("专业名称不能为空，且需能推导出代码")
)

const (
	specializationCatalogKey = "catalog:specializations"
	defaultMinCredits        = 30
)

// CatalogCache 目录缓存（Redis 实现；为 nil 时直接查库）
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SpecializationService 专业方向业务接口
type SpecializationService interface {
	List(ctx context.Context) ([]dto.SpecializationResponse, error)
	Create(ctx context.Context, req *dto.CreateSpecializationRequest) (*dto.SpecializationResponse, error)
	Resolve(ctx context.Context, identifier string) (*dto.SpecializationResponse, error)
	GetModules(ctx context.Context, identifier string) (*dto.SpecializationModulesResponse, error)
}

type specializationService struct {
	repo     *repository.Repository
	resolver *SpecializationResolver
	joiner   *ModuleJoiner
	cache    CatalogCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSpecializationService 创建 SpecializationService 实例
func NewSpecializationService(repo *repository.Repository, cache CatalogCache, cacheTTL time.Duration, logger *zap.Logger) SpecializationService {
	s := &specializationService{
		repo:     repo,
		joiner:   NewModuleJoiner(repo.Module),
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
	s.resolver = NewSpecializationResolver(repo.Specialization, s.loadCatalog)
	return s
}

// ────────────────────── List ──────────────────────

func (s *specializationService) List(ctx context.Context) ([]dto.SpecializationResponse, error) {
	specs, err := s.loadCatalog(ctx)
	if err != nil {
		s.logger.Error("列出专业方向失败", zap.Error(err))
		return nil, apperrors.Infrastructure("list specializations", err)
	}

	result := make([]dto.SpecializationResponse, 0, len(specs))
	for i := range specs {
		result = append(result, *toSpecializationResponse(&specs[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *specializationService) Create(ctx context.Context, req *dto.CreateSpecializationRequest) (*dto.SpecializationResponse, error) {
	spec, err := sanitizeSpecialization(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Specialization.ExistsByCodeOrName(ctx, spec.Code, spec.Name)
	if err != nil {
		s.logger.Error("检查专业方向唯一性失败", zap.Error(err))
		return nil, apperrors.Infrastructure("check specialization uniqueness", err)
	}
	if exists {
		return nil, ErrSpecializationExists
	}

	if err := s.repo.Specialization.Create(ctx, spec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSpecializationExists
		}
		s.logger.Error("创建专业方向失败", zap.String("code", spec.Code), zap.Error(err))
		return nil, apperrors.Infrastructure("create specialization", err)
	}

	s.invalidateCatalog(ctx)
	return toSpecializationResponse(spec), nil
}

// ────────────────────── Resolve ──────────────────────

func (s *specializationService) Resolve(ctx context.Context, identifier string) (*dto.SpecializationResponse, error) {
	spec, err := s.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return toSpecializationResponse(spec), nil
}

// ────────────────────── GetModules ──────────────────────

func (s *specializationService) GetModules(ctx context.Context, identifier string) (*dto.SpecializationModulesResponse, error) {
	spec, err := s.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	resp := &dto.SpecializationModulesResponse{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refs, err := s.joiner.JoinModules(gctx, spec.Year3Codes, 3)
		resp.Year3Modules = refs
		return err
	})
	g.Go(func() error {
		refs, err := s.joiner.JoinModules(gctx, spec.Year4Codes, 4)
		resp.Year4Modules = refs
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("展开专业课程失败", zap.String("specialization", spec.Code), zap.Error(err))
		return nil, err
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func (s *specializationService) resolve(ctx context.Context, identifier string) (*model.Specialization, error) {
	spec, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		if !errors.Is(err, ErrSpecializationNotFound) && !errors.Is(err, ErrEmptyIdentifier) {
			s.logger.Error("解析专业标识失败", zap.String("identifier", identifier), zap.Error(err))
		}
		return nil, err
	}
	return spec, nil
}

// loadCatalog 读取完整专业目录，优先使用缓存；缓存故障时降级查库
func (s *specializationService) loadCatalog(ctx context.Context) ([]model.Specialization, error) {
	if s.cache != nil {
		var cached []model.Specialization
		hit, err := s.cache.GetJSON(ctx, specializationCatalogKey, &cached)
		if err != nil {
			s.logger.Warn("读取专业目录缓存失败，降级查库", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	specs, err := s.repo.Specialization.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, specializationCatalogKey, specs, s.cacheTTL); err != nil {
			s.logger.Warn("写入专业目录缓存失败", zap.Error(err))
		}
	}
	return specs, nil
}

func (s *specializationService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, specializationCatalogKey); err != nil {
		s.logger.Warn("清除专业目录缓存失败", zap.Error(err))
	}
}

// sanitizeSpecialization 入库前规范化：折叠历史名称字段、推导代码、展开代码列表
func sanitizeSpecialization(req *dto.CreateSpecializationRequest) (*model.Specialization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.LegacyName)
	}
	if name == "" {
		return nil, ErrSpecializationInvalid
	}

	code := NormalizeCode(req.SpecializationCode)
	if code == "" {
		code = DeriveSpecializationCode(name)
	}
	if code == "" {
		return nil, ErrSpecializationInvalid
	}

	spec := &model.Specialization{
		Code:            code,
		Name:            name,
		Year3Codes:      model.CodeList(SplitCodes(req.Year3Modules...)),
		Year4Codes:      model.CodeList(SplitCodes(req.Year4Modules...)),
		MinCreditsYear3: defaultMinCredits,
		MinCreditsYear4: defaultMinCredits,
	}
	if req.MinCreditsYear3 != nil {
		spec.MinCreditsYear3 = *req.MinCreditsYear3
	}
	if req.MinCreditsYear4 != nil {
		spec.MinCreditsYear4 = *req.MinCreditsYear4
	}
	return spec, nil
}

// toSpecializationResponse 规范化视图：名称/代码缺失时回退，代码列表重新规范化
func toSpecializationResponse(spec *model.Specialization) *dto.SpecializationResponse {
	name := spec.Name
	if name == "" {
		name = spec.Code
	}
	if name == "" {
		name = "Unnamed Specialization"
	}

	code := spec.Code
	if code == "" {
		code = DeriveSpecializationCode(name)
	}
	if code == "" {
		code = spec.SpecializationID
	}

	return &dto.SpecializationResponse{
		ID:                  spec.SpecializationID,
		Name:                name,
		SpecializationNamme: name,
		SpecializationCode:  code,
		Year3Modules:        SplitCodes(spec.Year3Codes...),
		Year4Modules:        SplitCodes(spec.Year4Codes...),
		MinCreditsYear3:     spec.MinCreditsYear3,
		MinCreditsYear4:     spec.MinCreditsYear4,
	}
}
