package policy

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/models"
)

// Identity is the authenticated caller, carried explicitly from the auth
// middleware down to queries instead of ambient global state.
type Identity struct {
	ProfileID uuid.UUID
	Role      string
}

func (id Identity) IsSuperAdmin() bool {
	return id.Role == models.RoleSuperAdmin
}

// Entities and actions the enforcer knows about.
const (
	EntityPatient      = "patient"
	EntityProcedure    = "procedure"
	EntityAppointment  = "appointment"
	EntityCashRegister = "cash_register"
	EntityProfile      = "profile"
	EntityAuditLog     = "audit_log"
	EntityDashboard    = "dashboard"

	ActionRead  = "read"
	ActionWrite = "write"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// NewEnforcer builds the role/entity/action policy table. Every route-level
// authorization decision goes through this, never handler conditionals.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	_, err = e.AddPolicies([][]string{
		{models.RoleUser, EntityPatient, ActionRead},
		{models.RoleUser, EntityPatient, ActionWrite},
		{models.RoleUser, EntityAppointment, ActionRead},
		{models.RoleUser, EntityAppointment, ActionWrite},
		{models.RoleUser, EntityCashRegister, ActionRead},
		{models.RoleUser, EntityCashRegister, ActionWrite},
		{models.RoleUser, EntityProcedure, ActionRead},
		{models.RoleUser, EntityProfile, ActionRead},
		{models.RoleUser, EntityAuditLog, ActionRead},
		{models.RoleUser, EntityDashboard, ActionRead},

		{models.RoleSuperAdmin, EntityProcedure, ActionWrite},
		{models.RoleSuperAdmin, EntityProfile, ActionWrite},
	})
	if err != nil {
		return nil, err
	}

	// super_admin inherits every user permission.
	if _, err := e.AddGroupingPolicy(models.RoleSuperAdmin, models.RoleUser); err != nil {
		return nil, err
	}

	return e, nil
}

// CanAccess is the single capability check: role x entity x action.
func CanAccess(e *casbin.Enforcer, role, entity, action string) bool {
	ok, err := e.Enforce(role, entity, action)
	return err == nil && ok
}

// OwnerScope restricts a query to rows owned by the caller. super_admin
// reads and writes across all professionals; ownership itself never changes.
func OwnerScope(id Identity, column string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if id.IsSuperAdmin() {
			return q
		}
		return q.Where(column+" = ?", id.ProfileID)
	}
}
