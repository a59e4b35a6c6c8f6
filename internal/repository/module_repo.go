package repository

import (
	"context"

	"gorm.io/gorm"

	"gpa-calculator/backend/internal/model"
)

// ModuleFilter 课程列表筛选条件（零值表示不筛选）
type ModuleFilter struct {
	Year           int
	Semester       int
	Specialization string
	GPAOnly        bool
}

// ModuleRepository 课程数据访问接口
type ModuleRepository interface {
	Create(ctx context.Context, module *model.Module) error
	GetByID(ctx context.Context, id string) (*model.Module, error)
	GetByCode(ctx context.Context, code string) (*model.Module, error)
	// FindByCodes 按规范化代码集合批量查询（大小写不敏感），不存在的代码直接缺席
	FindByCodes(ctx context.Context, codes []string) ([]model.Module, error)
	List(ctx context.Context, filter ModuleFilter) ([]model.Module, error)
	Update(ctx context.Context, module *model.Module) error
	Delete(ctx context.Context, id string) error
}

type moduleRepo struct {
	db *gorm.DB
}

// NewModuleRepo 创建 ModuleRepository 实例
func NewModuleRepo(db *gorm.DB) ModuleRepository {
	return &moduleRepo{db: db}
}

func (r *moduleRepo) Create(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Where("module_id = ?", id).
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) GetByCode(ctx context.Context, code string) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Where("UPPER(TRIM(code)) = ?", code).
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Module, error) {
	var modules []model.Module
	if len(codes) == 0 {
		return modules, nil
	}
	err := r.db.WithContext(ctx).
		Where("UPPER(TRIM(code)) IN ?", codes).
		Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) List(ctx context.Context, filter ModuleFilter) ([]model.Module, error) {
	var modules []model.Module
	db := r.db.WithContext(ctx)

	if filter.Year > 0 {
		db = db.Where("year = ?", filter.Year)
	}
	if filter.Semester > 0 {
		db = db.Where("semester = ?", filter.Semester)
	}
	if filter.Specialization != "" {
		db = db.Where("specialization_code = ?", filter.Specialization)
	}
	if filter.GPAOnly {
		db = db.Where("gpa_eligible = ?", true)
	}

	err := db.Order("year ASC, semester ASC, code ASC").Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) Update(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Save(module).Error
}

func (r *moduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("module_id = ?", id).
		Delete(&model.Module{}).Error
}
