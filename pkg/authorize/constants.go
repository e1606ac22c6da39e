package authorize

import "slices"

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Lifecycle actions
	ActionCancel Action = "cancel"
	ActionPay    Action = "pay"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionCancel: {}, ActionPay: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Tenants and people
	ResourceClinic       Resource = "clinic"
	ResourceAdmin        Resource = "admin"
	ResourceReceptionist Resource = "receptionist"
	ResourceDoctor       Resource = "doctor"
	ResourcePatient      Resource = "patient"
	ResourceProfile      Resource = "profile"

	// Scheduling
	ResourceSchedule    Resource = "schedule"
	ResourceAppointment Resource = "appointment"

	// Clinical
	ResourceMedicalRecord Resource = "medical_record"
	ResourcePrescription  Resource = "prescription"

	// Financial
	ResourceInvoice Resource = "invoice"

	// Communication
	ResourceMessage Resource = "message"
)

var KnownResources = map[Resource]struct{}{
	ResourceClinic: {}, ResourceAdmin: {}, ResourceReceptionist: {}, ResourceDoctor: {},
	ResourcePatient: {}, ResourceProfile: {},
	ResourceSchedule: {}, ResourceAppointment: {},
	ResourceMedicalRecord: {}, ResourcePrescription: {},
	ResourceInvoice: {}, ResourceMessage: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Roles are stored on the user row and double as Casbin policy subjects.

const (
	RoleSuperAdmin   Role = "SuperAdmin"
	RoleAdmin        Role = "Admin"
	RoleDoctor       Role = "Doctor"
	RoleReceptionist Role = "Receptionist"
	RolePatient      Role = "Patient"
)

// StaffRoles are the roles that sign in through the dashboard.
var StaffRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleDoctor, RoleReceptionist}

var AllRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient}

func (r Role) Valid() bool { return slices.Contains(AllRoles, r) }

func (r Role) IsStaff() bool { return slices.Contains(StaffRoles, r) }

// RequiresClinic reports whether a user of this role must belong to a clinic.
func (r Role) RequiresClinic() bool {
	return r == RoleDoctor || r == RoleReceptionist
}

// AllowsClinic reports whether a user of this role may belong to a clinic at all.
func (r Role) AllowsClinic() bool {
	return r == RoleAdmin || r.RequiresClinic()
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

// Permission rows: p, role, resource, action
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
}
