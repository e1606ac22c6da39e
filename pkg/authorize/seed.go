package authorize

import (
	"context"
	"log/slog"
)

var (
	allStaff   = StaffRoles
	allRoles   = AllRoles
	frontDesk  = []Role{RoleSuperAdmin, RoleAdmin, RoleReceptionist}
	management = []Role{RoleSuperAdmin, RoleAdmin}
)

func grant(roles []Role, object Resource, action Action) []PermissionPolicy {
	out := make([]PermissionPolicy, 0, len(roles))
	for _, r := range roles {
		out = append(out, PermissionPolicy{Subject: r, Object: object, Action: action})
	}
	return out
}

// DefaultPolicies is the role table behind every protected route.
func DefaultPolicies() []PermissionPolicy {
	var p []PermissionPolicy
	add := func(roles []Role, object Resource, actions ...Action) {
		for _, a := range actions {
			p = append(p, grant(roles, object, a)...)
		}
	}

	// Tenants
	add([]Role{RoleSuperAdmin}, ResourceClinic, ActionCreate, ActionUpdate, ActionDelete, ActionList)

	// People
	add(allRoles, ResourceProfile, ActionRead)
	add([]Role{RoleSuperAdmin}, ResourceAdmin, ActionCreate, ActionList)
	add(management, ResourceReceptionist, ActionCreate)
	add(management, ResourceDoctor, ActionCreate, ActionUpdate, ActionDelete)
	add(allStaff, ResourceDoctor, ActionList)
	add(allStaff, ResourcePatient, ActionList, ActionRead)
	add(frontDesk, ResourcePatient, ActionUpdate)
	add(management, ResourcePatient, ActionDelete)

	// Scheduling
	add([]Role{RoleDoctor}, ResourceSchedule, ActionCreate, ActionRead)
	add(allStaff, ResourceSchedule, ActionList, ActionUpdate, ActionDelete)
	add([]Role{RolePatient}, ResourceAppointment, ActionCreate)
	add(allStaff, ResourceAppointment, ActionList)
	add(allRoles, ResourceAppointment, ActionRead, ActionUpdate)
	add([]Role{RoleSuperAdmin, RoleAdmin, RolePatient}, ResourceAppointment, ActionDelete)

	// Clinical
	add([]Role{RoleDoctor}, ResourceMedicalRecord, ActionCreate)
	add(allRoles, ResourceMedicalRecord, ActionRead)
	add(allStaff, ResourceMedicalRecord, ActionList, ActionUpdate, ActionDelete)
	add([]Role{RoleDoctor}, ResourcePrescription, ActionCreate)
	add(allRoles, ResourcePrescription, ActionRead)
	add(allStaff, ResourcePrescription, ActionList)

	// Financial
	add([]Role{RoleAdmin, RoleReceptionist}, ResourceInvoice, ActionCreate)
	add(frontDesk, ResourceInvoice, ActionList, ActionPay)
	add([]Role{RoleSuperAdmin, RoleAdmin, RoleReceptionist, RolePatient}, ResourceInvoice, ActionRead)
	add(management, ResourceInvoice, ActionCancel)

	// Communication
	add(management, ResourceMessage, ActionList)

	return p
}

// SeedDefaultPolicies installs DefaultPolicies. Existing rows are kept.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := DefaultPolicies()
	added := 0
	for _, p := range policies {
		ok, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if ok {
			added++
			logger.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies), "added", added)
	return nil
}
