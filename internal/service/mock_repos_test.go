package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gpa-calculator/backend/internal/model"
	"gpa-calculator/backend/internal/repository"
)

// ── Mock ModuleRepository ──

type mockModuleRepo struct {
	modules map[string]*model.Module
	err     error // 非 nil 时所有方法返回该错误
}

func newMockModuleRepo() *mockModuleRepo {
	return &mockModuleRepo{modules: make(map[string]*model.Module)}
}

func (m *mockModuleRepo) Create(_ context.Context, module *model.Module) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.modules {
		if strings.EqualFold(existing.Code, module.Code) {
			return gorm.ErrDuplicatedKey
		}
	}
	if module.ModuleID == "" {
		module.ModuleID = uuid.New().String()
	}
	m.modules[module.ModuleID] = module
	return nil
}

func (m *mockModuleRepo) GetByID(_ context.Context, id string) (*model.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) GetByCode(_ context.Context, code string) (*model.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, mod := range m.modules {
		if NormalizeCode(mod.Code) == code {
			return mod, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) FindByCodes(_ context.Context, codes []string) ([]model.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var result []model.Module
	for _, mod := range m.modules {
		if want[NormalizeCode(mod.Code)] {
			result = append(result, *mod)
		}
	}
	return result, nil
}

func (m *mockModuleRepo) List(_ context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Module
	for _, mod := range m.modules {
		if filter.Year > 0 && mod.Year != filter.Year {
			continue
		}
		if filter.Semester > 0 && mod.Semester != filter.Semester {
			continue
		}
		if filter.Specialization != "" && (mod.SpecializationCode == nil || *mod.SpecializationCode != filter.Specialization) {
			continue
		}
		if filter.GPAOnly && !mod.GPAEligible {
			continue
		}
		result = append(result, *mod)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		if result[i].Semester != result[j].Semester {
			return result[i].Semester < result[j].Semester
		}
		return result[i].Code < result[j].Code
	})
	return result, nil
}

func (m *mockModuleRepo) Update(_ context.Context, module *model.Module) error {
	if m.err != nil {
		return m.err
	}
	m.modules[module.ModuleID] = module
	return nil
}

func (m *mockModuleRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.modules, id)
	return nil
}

// ── Mock SpecializationRepository ──

type mockSpecializationRepo struct {
	specs        map[string]*model.Specialization
	err          error
	listAllCalls int
}

func newMockSpecializationRepo() *mockSpecializationRepo {
	return &mockSpecializationRepo{specs: make(map[string]*model.Specialization)}
}

func (m *mockSpecializationRepo) sorted() []model.Specialization {
	result := make([]model.Specialization, 0, len(m.specs))
	for _, s := range m.specs {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockSpecializationRepo) Create(_ context.Context, spec *model.Specialization) error {
	if m.err != nil {
		return m.err
	}
	for _, s := range m.specs {
		if strings.EqualFold(s.Code, spec.Code) || s.Name == spec.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if spec.SpecializationID == "" {
		spec.SpecializationID = uuid.New().String()
	}
	m.specs[spec.SpecializationID] = spec
	return nil
}

func (m *mockSpecializationRepo) GetByID(_ context.Context, id string) (*model.Specialization, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.specs[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpecializationRepo) GetByCode(_ context.Context, normalized, raw string) (*model.Specialization, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.sorted() {
		if strings.ToUpper(s.Code) == normalized || s.Code == raw {
			found := s
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpecializationRepo) FindByNameContains(_ context.Context, fragment string) (*model.Specialization, error) {
	if m.err != nil {
		return nil, m.err
	}
	needle := strings.ToLower(fragment)
	for _, s := range m.sorted() {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			found := s
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpecializationRepo) ExistsByCodeOrName(_ context.Context, code, name string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, s := range m.specs {
		if strings.ToUpper(s.Code) == code || strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSpecializationRepo) ListAll(_ context.Context) ([]model.Specialization, error) {
	m.listAllCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(), nil
}

// ── Mock CatalogCache ──

type mockCache struct {
	data    map[string][]byte
	getErr  error
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

// ── 测试数据 ──

func seedModule(repo *mockModuleRepo, code, name string, credits, year int, gpa bool) *model.Module {
	mod := &model.Module{
		ModuleID:    uuid.New().String(),
		Code:        code,
		Name:        name,
		Credits:     credits,
		Year:        year,
		Semester:    1,
		GPAEligible: gpa,
	}
	repo.modules[mod.ModuleID] = mod
	return mod
}

func seedSpecialization(repo *mockSpecializationRepo, code, name string, year3, year4 []string) *model.Specialization {
	spec := &model.Specialization{
		SpecializationID: uuid.New().String(),
		Code:             code,
		Name:             name,
		Year3Codes:       model.CodeList(year3),
		Year4Codes:       model.CodeList(year4),
		MinCreditsYear3:  30,
		MinCreditsYear4:  30,
	}
	repo.specs[spec.SpecializationID] = spec
	return spec
}

func newTestRepository() (*repository.Repository, *mockModuleRepo, *mockSpecializationRepo) {
	modules := newMockModuleRepo()
	specs := newMockSpecializationRepo()
	return &repository.Repository{Module: modules, Specialization: specs}, modules, specs
}
