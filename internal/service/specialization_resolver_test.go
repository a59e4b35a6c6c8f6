package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	apperrors "gpa-calculator/backend/pkg/errors"
)

func setupTestResolver() (*SpecializationResolver, *mockSpecializationRepo) {
	specs := newMockSpecializationRepo()
	return NewSpecializationResolver(specs, specs.ListAll), specs
}

func TestResolver_IdentifierForms(t *testing.T) {
	resolver, specs := setupTestResolver()
	cs := seedSpecialization(specs, "CS01", "Computer Science", nil, nil)
	seedSpecialization(specs, "SE", "Software Engineering", nil, nil)

	for _, identifier := range []string{cs.SpecializationID, "cs01", "CS01", " CS01 ", "computer science", "cs-01", "COMPUTER"} {
		spec, err := resolver.Resolve(context.Background(), identifier)
		if err != nil {
			t.Errorf("identifier %q: 期望命中，实际错误: %v", identifier, err)
			continue
		}
		if spec.SpecializationID != cs.SpecializationID {
			t.Errorf("identifier %q: 期望 %s，实际 %s", identifier, cs.Code, spec.Code)
		}
	}
}

func TestResolver_CodeTakesPrecedenceOverName(t *testing.T) {
	resolver, specs := setupTestResolver()
	// "Ads Analytics" 的名称包含 "ds"，但代码精确匹配优先
	seedSpecialization(specs, "AA", "Ads Analytics", nil, nil)
	ds := seedSpecialization(specs, "DS", "Data Science", nil, nil)

	spec, err := resolver.Resolve(context.Background(), "ds")
	if err != nil {
		t.Fatalf("期望命中，实际错误: %v", err)
	}
	if spec.SpecializationID != ds.SpecializationID {
		t.Errorf("期望代码匹配 DS，实际 %s", spec.Code)
	}
}

func TestResolver_NameIgnoresInnerWhitespace(t *testing.T) {
	resolver, specs := setupTestResolver()
	want := seedSpecialization(specs, "DSC", "DataScience", nil, nil)

	spec, err := resolver.Resolve(context.Background(), "Data  Science")
	if err != nil {
		t.Fatalf("期望命中，实际错误: %v", err)
	}
	if spec.SpecializationID != want.SpecializationID {
		t.Errorf("期望 DataScience，实际 %s", spec.Name)
	}
}

func TestResolver_NotFound(t *testing.T) {
	resolver, specs := setupTestResolver()
	seedSpecialization(specs, "CS01", "Computer Science", nil, nil)

	for _, identifier := range []string{"Biology", uuid.New().String(), "!!!"} {
		_, err := resolver.Resolve(context.Background(), identifier)
		if !errors.Is(err, ErrSpecializationNotFound) {
			t.Errorf("identifier %q: 期望 ErrSpecializationNotFound，实际: %v", identifier, err)
		}
	}
}

func TestResolver_EmptyIdentifier(t *testing.T) {
	resolver, _ := setupTestResolver()

	_, err := resolver.Resolve(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyIdentifier) {
		t.Errorf("期望 ErrEmptyIdentifier，实际: %v", err)
	}
}

func TestResolver_StoreFailureIsNotNotFound(t *testing.T) {
	resolver, specs := setupTestResolver()
	specs.err = errors.New("connection refused")

	_, err := resolver.Resolve(context.Background(), "CS01")
	if !errors.Is(err, apperrors.ErrCatalogUnavailable) {
		t.Errorf("期望基础设施错误，实际: %v", err)
	}
	if errors.Is(err, ErrSpecializationNotFound) {
		t.Error("存储故障不应报告为不存在")
	}
}
