package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gpa-calculator/backend/internal/model"
	"gpa-calculator/backend/internal/repository"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// ── 专业标识解析 ────────────────────────────────────────────
//
// 标识可能是主键、专业代码、名称或名称片段，且带有大小写/空白/标点噪声。
// 按固定顺序逐一尝试匹配策略，首个命中即返回，不合并多个策略的结果：
//   1. 主键（语法上是合法 UUID 时才查询）
//   2. 代码精确匹配（规范化后大小写不敏感，或原样匹配历史数据）
//   3. 名称子串匹配（大小写不敏感；未命中时去掉全部空白再试一次）
//   4. 比较键兜底（全量扫描目录）
// 全部未命中返回 ErrSpecializationNotFound；查询失败返回基础设施错误。
// ─────────────────────────────────────────────────────────────

var (
	ErrSpecializationNotFound = errors.New("专业方向不存在")
	ErrEmptyIdentifier        = errors.New("专业标识不能为空")
)

// catalogLoader 返回完整专业目录（可能来自缓存）
type catalogLoader func(ctx context.Context) ([]model.Specialization, error)

// specializationMatcher 单个匹配策略；未命中返回 (nil, nil)
type specializationMatcher struct {
	name  string
	match func(ctx context.Context, identifier string) (*model.Specialization, error)
}

// SpecializationResolver 专业标识解析器（只读、无状态）
type SpecializationResolver struct {
	matchers []specializationMatcher
}

// NewSpecializationResolver 创建解析器；loadAll 用于比较键兜底的全量扫描
func NewSpecializationResolver(specs repository.SpecializationRepository, loadAll catalogLoader) *SpecializationResolver {
	return &SpecializationResolver{
		matchers: []specializationMatcher{
			{name: "primary_key", match: matchByPrimaryKey(specs)},
			{name: "code", match: matchByCode(specs)},
			{name: "name", match: matchByName(specs)},
			{name: "comparable_key", match: matchByComparableKey(loadAll)},
		},
	}
}

// Resolve 解析专业标识
func (r *SpecializationResolver) Resolve(ctx context.Context, identifier string) (*model.Specialization, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil, ErrEmptyIdentifier
	}

	for _, m := range r.matchers {
		spec, err := m.match(ctx, trimmed)
		if err != nil {
			return nil, apperrors.Infrastructure("resolve specialization by "+m.name, err)
		}
		if spec != nil {
			return spec, nil
		}
	}

	return nil, ErrSpecializationNotFound
}

// ── 匹配策略 ──

func matchByPrimaryKey(specs repository.SpecializationRepository) func(context.Context, string) (*model.Specialization, error) {
	return func(ctx context.Context, identifier string) (*model.Specialization, error) {
		id, err := uuid.Parse(identifier)
		if err != nil {
			return nil, nil
		}
		return missAsNil(specs.GetByID(ctx, id.String()))
	}
}

func matchByCode(specs repository.SpecializationRepository) func(context.Context, string) (*model.Specialization, error) {
	return func(ctx context.Context, identifier string) (*model.Specialization, error) {
		return missAsNil(specs.GetByCode(ctx, NormalizeCode(identifier), identifier))
	}
}

func matchByName(specs repository.SpecializationRepository) func(context.Context, string) (*model.Specialization, error) {
	return func(ctx context.Context, identifier string) (*model.Specialization, error) {
		spec, err := missAsNil(specs.FindByNameContains(ctx, identifier))
		if spec != nil || err != nil {
			return spec, err
		}

		// "Data Science" 与 "DataScience" 视为同一名称
		condensed := strings.Join(strings.Fields(identifier), "")
		if condensed == "" || condensed == identifier {
			return nil, nil
		}
		return missAsNil(specs.FindByNameContains(ctx, condensed))
	}
}

func matchByComparableKey(loadAll catalogLoader) func(context.Context, string) (*model.Specialization, error) {
	return func(ctx context.Context, identifier string) (*model.Specialization, error) {
		key := ComparableKey(identifier)
		if key == "" {
			return nil, nil
		}

		all, err := loadAll(ctx)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if ComparableKey(all[i].Code) == key || ComparableKey(all[i].Name) == key {
				return &all[i], nil
			}
		}
		return nil, nil
	}
}

// missAsNil 将 gorm.ErrRecordNotFound 视为未命中
func missAsNil(spec *model.Specialization, err error) (*model.Specialization, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}
