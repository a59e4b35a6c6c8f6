package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"gpa-calculator/backend/internal/dto"
	apperrors "gpa-calculator/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestSpecializationService(cache CatalogCache) (SpecializationService, *mockModuleRepo, *mockSpecializationRepo) {
	repo, modules, specs := newTestRepository()
	return NewSpecializationService(repo, cache, time.Minute, zap.NewNop()), modules, specs
}

// ── List 测试 ──

func TestSpecializationService_List_SortedAndNormalized(t *testing.T) {
	svc, _, specs := setupTestSpecializationService(nil)
	seedSpecialization(specs, "SE", "Software Engineering", []string{"se301, SE302 "}, nil)
	seedSpecialization(specs, "", "Data Science", nil, []string{"ds401"})

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Data Science" {
		t.Fatalf("应按名称排序: %+v", list)
	}
	if list[0].SpecializationCode != "DATASCIENCE" {
		t.Errorf("缺失代码应由名称推导，实际: %s", list[0].SpecializationCode)
	}
	if list[0].SpecializationNamme != "Data Science" {
		t.Errorf("历史名称字段应镜像 name，实际: %s", list[0].SpecializationNamme)
	}
	got := list[1].Year3Modules
	if len(got) != 2 || got[0] != "SE301" || got[1] != "SE302" {
		t.Errorf("代码列表应规范化展开，实际: %v", got)
	}
}

func TestSpecializationService_List_UsesCache(t *testing.T) {
	cache := newMockCache()
	svc, _, specs := setupTestSpecializationService(cache)
	seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background()); err != nil {
			t.Fatalf("期望成功，实际错误: %v", err)
		}
	}
	if specs.listAllCalls != 1 {
		t.Errorf("缓存命中后不应再查库，实际查库 %d 次", specs.listAllCalls)
	}
}

func TestSpecializationService_List_CacheFailureFallsBackToStore(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("redis down")
	svc, _, specs := setupTestSpecializationService(cache)
	seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("缓存故障应降级查库，实际错误: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望 1 条，实际 %d", len(list))
	}
}

func TestSpecializationService_List_StoreFailure(t *testing.T) {
	svc, _, specs := setupTestSpecializationService(nil)
	specs.err = errors.New("connection refused")

	_, err := svc.List(context.Background())
	if !errors.Is(err, apperrors.ErrCatalogUnavailable) {
		t.Errorf("期望基础设施错误，实际: %v", err)
	}
}

// ── Create 测试 ──

func TestSpecializationService_Create_LegacyNameAndDerivedCode(t *testing.T) {
	cache := newMockCache()
	svc, _, specs := setupTestSpecializationService(cache)

	resp, err := svc.Create(context.Background(), &dto.CreateSpecializationRequest{
		LegacyName:   "  Cyber Security ",
		Year3Modules: dto.CodeListInput{"cs301,cs302", " ", "CS303"},
		Year4Modules: dto.CodeListInput{"cs401"},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.Name != "Cyber Security" || resp.SpecializationCode != "CYBERSECURITY" {
		t.Errorf("名称或推导代码不符: %+v", resp)
	}
	if len(resp.Year3Modules) != 3 || resp.Year3Modules[0] != "CS301" {
		t.Errorf("第三学年代码不符: %v", resp.Year3Modules)
	}
	if resp.MinCreditsYear3 != 30 || resp.MinCreditsYear4 != 30 {
		t.Errorf("最低学分默认应为 30: %+v", resp)
	}
	if len(specs.specs) != 1 {
		t.Errorf("应写入 1 条，实际 %d", len(specs.specs))
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != specializationCatalogKey {
		t.Errorf("创建后应清除目录缓存，实际: %v", cache.deleted)
	}
}

func TestSpecializationService_Create_Conflict(t *testing.T) {
	svc, _, specs := setupTestSpecializationService(nil)
	seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	_, err := svc.Create(context.Background(), &dto.CreateSpecializationRequest{
		Name:               "Anything",
		SpecializationCode: "se",
	})
	if !errors.Is(err, ErrSpecializationExists) {
		t.Errorf("期望 ErrSpecializationExists，实际: %v", err)
	}
}

func TestSpecializationService_Create_MissingName(t *testing.T) {
	svc, _, _ := setupTestSpecializationService(nil)

	_, err := svc.Create(context.Background(), &dto.CreateSpecializationRequest{
		SpecializationCode: "SE",
	})
	if !errors.Is(err, ErrSpecializationInvalid) {
		t.Errorf("期望 ErrSpecializationInvalid，实际: %v", err)
	}
}

// ── Resolve / GetModules 测试 ──

func TestSpecializationService_Resolve(t *testing.T) {
	svc, _, specs := setupTestSpecializationService(newMockCache())
	se := seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	resp, err := svc.Resolve(context.Background(), "software-engineering")
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.ID != se.SpecializationID {
		t.Errorf("期望 %s，实际 %s", se.SpecializationID, resp.ID)
	}

	_, err = svc.Resolve(context.Background(), "Medicine")
	if !errors.Is(err, ErrSpecializationNotFound) {
		t.Errorf("期望 ErrSpecializationNotFound，实际: %v", err)
	}
}

func TestSpecializationService_GetModules(t *testing.T) {
	svc, modules, specs := setupTestSpecializationService(nil)
	seedModule(modules, "SE301", "Architecture", 4, 3, true)
	seedModule(modules, "SE401", "Capstone", 8, 4, true)
	seedSpecialization(specs, "SE", "Software Engineering",
		[]string{"se301, se399", "SE301"},
		[]string{"SE401"},
	)

	resp, err := svc.GetModules(context.Background(), "se")
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if len(resp.Year3Modules) != 2 {
		t.Fatalf("第三学年应为 2 条（去重），实际 %d", len(resp.Year3Modules))
	}
	if resp.Year3Modules[0].Placeholder || !resp.Year3Modules[1].Placeholder {
		t.Errorf("真实/占位标记不符: %+v", resp.Year3Modules)
	}
	if len(resp.Year4Modules) != 1 || resp.Year4Modules[0].ModuleName != "Capstone" {
		t.Errorf("第四学年不符: %+v", resp.Year4Modules)
	}
}

func TestSpecializationService_GetModules_CatalogFailure(t *testing.T) {
	svc, modules, specs := setupTestSpecializationService(nil)
	seedSpecialization(specs, "SE", "Software Engineering", []string{"SE301"}, []string{"SE401"})
	modules.err = errors.New("timeout")

	_, err := svc.GetModules(context.Background(), "SE")
	if !errors.Is(err, apperrors.ErrCatalogUnavailable) {
		t.Errorf("期望基础设施错误，实际: %v", err)
	}
}
