package authorize

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// DeniedError is returned by MustEnforce and names the roles that would
// have been accepted.
type DeniedError struct {
	Role     Role
	Required []Role
}

func (e *DeniedError) Error() string {
	names := make([]string, 0, len(e.Required))
	for _, r := range e.Required {
		names = append(names, string(r))
	}
	return fmt.Sprintf("Access denied. Required roles: %s. Your role: %s", strings.Join(names, ", "), e.Role)
}

func (e *DeniedError) Unwrap() error { return ErrForbidden }

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "may a user holding role act on object?"
	Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error)

	// MustEnforce returns a *DeniedError when the role is not allowed.
	MustEnforce(ctx context.Context, role Role, object Resource, action Action) error

	// RequiredRoles lists the roles allowed to perform action on object.
	RequiredRoles(ctx context.Context, object Resource, action Action) ([]Role, error)

	// Permission management (policies): p, role, object, action
	AddPermission(ctx context.Context, role Role, object Resource, action Action) (bool, error)
	RemovePermission(ctx context.Context, role Role, object Resource, action Action) (bool, error)
}

// Authorization is a thin typed wrapper around casbin.Enforcer.
type Authorization struct {
	enforcer *casbin.DistributedEnforcer
}

// NewAuthorization wraps an already-configured Enforcer
func NewAuthorization(e *casbin.DistributedEnforcer) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}

	if err := e.LoadPolicy(); err != nil {
		return nil, err
	}

	return &Authorization{enforcer: e}, nil
}

func validate(role Role, object Resource, action Action) error {
	if role == "" {
		return fmt.Errorf("%w: role is empty", ErrInvalidArgs)
	}
	if _, ok := KnownResources[object]; !ok && object != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok && action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}
	return nil
}

func (a *Authorization) Enforce(_ context.Context, role Role, object Resource, action Action) (bool, error) {
	if err := validate(role, object, action); err != nil {
		return false, err
	}
	// Unknown roles never match a policy row.
	if !role.Valid() {
		return false, nil
	}
	return a.enforcer.Enforce(string(role), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, role Role, object Resource, action Action) error {
	return mustEnforce(ctx, a, role, object, action)
}

func mustEnforce(ctx context.Context, a IAuthorization, role Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, role, object, action)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	required, err := a.RequiredRoles(ctx, object, action)
	if err != nil {
		return err
	}
	return &DeniedError{Role: role, Required: required}
}

func (a *Authorization) RequiredRoles(_ context.Context, object Resource, action Action) ([]Role, error) {
	var rows [][]string
	for _, obj := range []string{string(object), string(WildcardResource)} {
		r, err := a.enforcer.GetFilteredPolicy(1, obj)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r...)
	}

	var out []Role
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		if row[2] != string(action) && row[2] != string(WildcardAction) {
			continue
		}
		role := Role(row[0])
		if !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	// Present roles in their canonical order.
	slices.SortFunc(out, func(x, y Role) int {
		return slices.Index(AllRoles, x) - slices.Index(AllRoles, y)
	})
	return out, nil
}

// ---- Permissions (p rules) ----

func (a *Authorization) AddPermission(_ context.Context, role Role, object Resource, action Action) (bool, error) {
	if err := validate(role, object, action); err != nil {
		return false, err
	}
	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	return a.enforcer.AddPolicy(string(role), string(object), string(action))
}

func (a *Authorization) RemovePermission(_ context.Context, role Role, object Resource, action Action) (bool, error) {
	if err := validate(role, object, action); err != nil {
		return false, err
	}
	return a.enforcer.RemovePolicy(string(role), string(object), string(action))
}
