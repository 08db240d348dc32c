package domain_test

import (
	"errors"
	"testing"

	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
)

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	registry, err := domain.NewRegistry(profileType, postType)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	cfg, err := registry.Lookup("post")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cfg.Name != "post" || !cfg.BypassAfterApproval {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := registry.Lookup("unknown"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown type, got %v", err)
	}
}

func TestRegistryRejectsDuplicateType(t *testing.T) {
	t.Parallel()

	if _, err := domain.NewRegistry(profileType, profileType); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for duplicate type, got %v", err)
	}
}

func TestRegistryValidatesFieldSets(t *testing.T) {
	t.Parallel()

	_, err := domain.NewRegistry(domain.TypeConfig{
		Name:            "bad",
		Fields:          []string{"a"},
		ModeratedFields: []string{"b"},
	})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for moderated field outside schema, got %v", err)
	}

	_, err = domain.NewRegistry(domain.TypeConfig{
		Name:            "bad2",
		Fields:          []string{"a"},
		VisibilityField: "missing",
	})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for visibility field outside schema, got %v", err)
	}
}
