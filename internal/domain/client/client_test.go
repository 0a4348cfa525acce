package client

import (
	"errors"
	"testing"
	"time"

	"github.com/novaera/caprail/internal/domain"
)

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateRequest{Name: "Acme", AIReadinessScore: 50, TrustLevel: 50}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name string
		mod  func(r *CreateRequest)
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "  " }},
		{"readiness too high", func(r *CreateRequest) { r.AIReadinessScore = 101 }},
		{"readiness negative", func(r *CreateRequest) { r.AIReadinessScore = -1 }},
		{"trust too high", func(r *CreateRequest) { r.TrustLevel = 101 }},
		{"negative revenue", func(r *CreateRequest) { r.Revenue = -1 }},
		{"negative ai revenue", func(r *CreateRequest) { r.AIProductRevenue = -0.01 }},
	}
	for _, tc := range cases {
		r := valid
		tc.mod(&r)
		if err := r.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestUpdateRequestApply(t *testing.T) {
	c := Client{Name: "Before", TrustLevel: 40, Revenue: 1000}

	name := "After"
	trust := 75
	req := UpdateRequest{Name: &name, TrustLevel: &trust}
	req.Apply(&c)

	if c.Name != "After" {
		t.Errorf("name = %s, want After", c.Name)
	}
	if c.TrustLevel != 75 {
		t.Errorf("trust = %d, want 75", c.TrustLevel)
	}
	// Absent fields stay untouched.
	if c.Revenue != 1000 {
		t.Errorf("revenue = %v, want 1000 unchanged", c.Revenue)
	}
}

func TestUpdateRequestValidate(t *testing.T) {
	empty := ""
	bad := -5
	if err := (&UpdateRequest{Name: &empty}).Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Error("empty name accepted")
	}
	if err := (&UpdateRequest{TrustLevel: &bad}).Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Error("negative trust accepted")
	}
	if err := (&UpdateRequest{}).Validate(); err != nil {
		t.Errorf("empty update rejected: %v", err)
	}
}

func TestEngagementStart(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	explicit := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	c := Client{CreatedAt: created}
	if got := c.EngagementStart(); !got.Equal(created) {
		t.Errorf("fallback start = %v, want created_at", got)
	}

	c.EngagementStartDate = explicit
	if got := c.EngagementStart(); !got.Equal(explicit) {
		t.Errorf("start = %v, want explicit date", got)
	}
}

func TestMasked(t *testing.T) {
	c := Client{
		Name:             "Acme",
		AIReadinessScore: 70,
		TrustLevel:       55,
		Revenue:          100000,
		ServicesRevenue:  60000,
		AIProductRevenue: 40000,
		DeliveryNotes:    "confidential notes",
		AIUseCases:       []string{"automation"},
		AIFeatureRequest: "custom model",
	}

	m := c.Masked()
	if m.Revenue != 0 || m.ServicesRevenue != 0 || m.AIProductRevenue != 0 {
		t.Error("revenue fields survived masking")
	}
	if m.DeliveryNotes != "" || m.AIUseCases != nil || m.AIFeatureRequest != "" {
		t.Error("note fields survived masking")
	}
	// Non-confidential scores stay visible.
	if m.Name != "Acme" || m.AIReadinessScore != 70 || m.TrustLevel != 55 {
		t.Error("public fields were masked")
	}
	// Original is untouched.
	if c.Revenue != 100000 {
		t.Error("Masked mutated the receiver")
	}
}
