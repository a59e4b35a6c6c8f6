package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gpa-calculator/backend/internal/model"
)

// SpecializationRepository 专业方向数据访问接口
//
// 查询方法与标识解析的各级策略一一对应；未命中统一返回 gorm.ErrRecordNotFound。
type SpecializationRepository interface {
	Create(ctx context.Context, spec *model.Specialization) error
	GetByID(ctx context.Context, id string) (*model.Specialization, error)
	// GetByCode 匹配 UPPER(code) = normalized 或 code = raw（兼容未规范化的历史数据）
	GetByCode(ctx context.Context, normalized, raw string) (*model.Specialization, error)
	// FindByNameContains 名称大小写不敏感的字面子串匹配
	FindByNameContains(ctx context.Context, fragment string) (*model.Specialization, error)
	ExistsByCodeOrName(ctx context.Context, code, name string) (bool, error)
	ListAll(ctx context.Context) ([]model.Specialization, error)
}

type specializationRepo struct {
	db *gorm.DB
}

// NewSpecializationRepo 创建 SpecializationRepository 实例
func NewSpecializationRepo(db *gorm.DB) SpecializationRepository {
	return &specializationRepo{db: db}
}

func (r *specializationRepo) Create(ctx context.Context, spec *model.Specialization) error {
	return r.db.WithContext(ctx).Create(spec).Error
}

func (r *specializationRepo) GetByID(ctx context.Context, id string) (*model.Specialization, error) {
	var spec model.Specialization
	err := r.db.WithContext(ctx).
		Where("specialization_id = ?", id).
		First(&spec).Error
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (r *specializationRepo) GetByCode(ctx context.Context, normalized, raw string) (*model.Specialization, error) {
	var spec model.Specialization
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ? OR code = ?", normalized, raw).
		Order("name ASC").
		First(&spec).Error
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (r *specializationRepo) FindByNameContains(ctx context.Context, fragment string) (*model.Specialization, error) {
	var spec model.Specialization
	err := r.db.WithContext(ctx).
		Where(`name ILIKE ? ESCAPE '\'`, "%"+escapeLike(fragment)+"%").
		Order("name ASC").
		First(&spec).Error
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (r *specializationRepo) ExistsByCodeOrName(ctx context.Context, code, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Specialization{}).
		Where("UPPER(code) = ? OR LOWER(name) = LOWER(?)", code, name).
		Count(&count).Error
	return count > 0, err
}

func (r *specializationRepo) ListAll(ctx context.Context) ([]model.Specialization, error) {
	var specs []model.Specialization
	err := r.db.WithContext(ctx).Order("name ASC").Find(&specs).Error
	return specs, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 模式中的元字符，使输入按字面子串匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
