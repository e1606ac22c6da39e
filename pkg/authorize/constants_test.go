package authorize

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRoleClassification(t *testing.T) {
	tests := []struct {
		role           Role
		valid, staff   bool
		requiresClinic bool
		allowsClinic   bool
	}{
		{RoleSuperAdmin, true, true, false, false},
		{RoleAdmin, true, true, false, true},
		{RoleDoctor, true, true, true, true},
		{RoleReceptionist, true, true, true, true},
		{RolePatient, true, false, false, false},
		{Role("Nurse"), false, false, false, false},
		{Role(""), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.role.IsStaff(); got != tt.staff {
				t.Errorf("IsStaff() = %v, want %v", got, tt.staff)
			}
			if got := tt.role.RequiresClinic(); got != tt.requiresClinic {
				t.Errorf("RequiresClinic() = %v, want %v", got, tt.requiresClinic)
			}
			if got := tt.role.AllowsClinic(); got != tt.allowsClinic {
				t.Errorf("AllowsClinic() = %v, want %v", got, tt.allowsClinic)
			}
		})
	}
}

func TestIdentityFromContext(t *testing.T) {
	clinic := uuid.New()
	id := &Identity{UserID: uuid.New(), Role: RoleDoctor, ClinicID: &clinic}

	tests := []struct {
		name   string
		ctx    context.Context
		wantOK bool
	}{
		{"identity present", WithIdentity(context.Background(), id), true},
		{"no identity", context.Background(), false},
		{"nil identity", WithIdentity(context.Background(), nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IdentityFromContext(tt.ctx)
			if ok != tt.wantOK {
				t.Fatalf("IdentityFromContext() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.UserID != id.UserID {
				t.Errorf("IdentityFromContext() user = %v, want %v", got.UserID, id.UserID)
			}
		})
	}
}

func TestHasClinic(t *testing.T) {
	nilClinic := uuid.Nil
	clinic := uuid.New()

	if (&Identity{}).HasClinic() {
		t.Error("identity without clinic reports one")
	}
	if (&Identity{ClinicID: &nilClinic}).HasClinic() {
		t.Error("nil uuid counted as a clinic")
	}
	if !(&Identity{ClinicID: &clinic}).HasClinic() {
		t.Error("assigned clinic not reported")
	}
	var missing *Identity
	if missing.HasClinic() {
		t.Error("nil identity reports a clinic")
	}
}
