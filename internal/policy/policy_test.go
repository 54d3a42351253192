package policy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/models"
)

func TestCanAccessMatrix(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}

	cases := []struct {
		role    string
		entity  string
		action  string
		allowed bool
	}{
		{models.RoleUser, EntityPatient, ActionRead, true},
		{models.RoleUser, EntityPatient, ActionWrite, true},
		{models.RoleUser, EntityAppointment, ActionWrite, true},
		{models.RoleUser, EntityCashRegister, ActionWrite, true},
		{models.RoleUser, EntityProcedure, ActionRead, true},
		{models.RoleUser, EntityProcedure, ActionWrite, false},
		{models.RoleUser, EntityProfile, ActionWrite, false},

		{models.RoleSuperAdmin, EntityProcedure, ActionWrite, true},
		{models.RoleSuperAdmin, EntityProfile, ActionWrite, true},
		// inherited from user
		{models.RoleSuperAdmin, EntityPatient, ActionWrite, true},
		{models.RoleSuperAdmin, EntityAppointment, ActionRead, true},

		{"unknown_role", EntityPatient, ActionRead, false},
	}

	for _, tc := range cases {
		got := CanAccess(e, tc.role, tc.entity, tc.action)
		if got != tc.allowed {
			t.Fatalf("CanAccess(%s, %s, %s) = %v, want %v",
				tc.role, tc.entity, tc.action, got, tc.allowed)
		}
	}
}

func TestIsSuperAdmin(t *testing.T) {
	admin := Identity{ProfileID: uuid.New(), Role: models.RoleSuperAdmin}
	if !admin.IsSuperAdmin() {
		t.Fatalf("expected super admin")
	}

	user := Identity{ProfileID: uuid.New(), Role: models.RoleUser}
	if user.IsSuperAdmin() {
		t.Fatalf("expected regular user")
	}
}
