package lead

import (
	"errors"
	"testing"

	"github.com/novaera/caprail/internal/domain"
)

func TestCreateRequestValidate(t *testing.T) {
	r := CreateRequest{Name: "City of Fresno"}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if r.Status != StatusNew {
		t.Errorf("status = %s, want new default", r.Status)
	}

	r = CreateRequest{Name: "x", Status: Status("won")}
	if err := r.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown status accepted: %v", err)
	}

	r = CreateRequest{Name: " "}
	if err := r.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank name accepted: %v", err)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("archived should be invalid")
	}
}

func TestConverted(t *testing.T) {
	l := Lead{}
	if l.Converted() {
		t.Error("lead without client link reported converted")
	}
	id := int64(9)
	l.ConvertedClientID = &id
	if !l.Converted() {
		t.Error("linked lead not reported converted")
	}
}
