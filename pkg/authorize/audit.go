package authorize

import (
	"context"
	"log/slog"
	"time"
)

// AuditedAuthorization logs every decision and policy change made through
// the wrapped IAuthorization. Denials log at warn, errors at error.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger.With("component", "authz")}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, role, object, action)

	attrs := append(ruleAttrs(role, object, action),
		slog.Bool("allowed", allowed),
		slog.Duration("took", time.Since(start)),
	)
	attrs = append(attrs, callerAttrs(ctx)...)

	level := slog.LevelInfo
	switch {
	case err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.Any("error", err))
	case !allowed:
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(ctx, level, "authz decision", attrs...)
	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, role Role, object Resource, action Action) error {
	return mustEnforce(ctx, a, role, object, action)
}

func (a *AuditedAuthorization) RequiredRoles(ctx context.Context, object Resource, action Action) ([]Role, error) {
	return a.inner.RequiredRoles(ctx, object, action)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, object Resource, action Action) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, object, action)
	a.policyChanged(ctx, "grant", role, object, action, added, err)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, object Resource, action Action) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, object, action)
	a.policyChanged(ctx, "revoke", role, object, action, removed, err)
	return removed, err
}

func (a *AuditedAuthorization) policyChanged(ctx context.Context, op string, role Role, object Resource, action Action, changed bool, err error) {
	attrs := append(ruleAttrs(role, object, action), slog.String("op", op), slog.Bool("changed", changed))
	attrs = append(attrs, callerAttrs(ctx)...)
	if err != nil {
		a.logger.LogAttrs(ctx, slog.LevelError, "authz policy change", append(attrs, slog.Any("error", err))...)
		return
	}
	a.logger.LogAttrs(ctx, slog.LevelInfo, "authz policy change", attrs...)
}

func ruleAttrs(role Role, object Resource, action Action) []slog.Attr {
	return []slog.Attr{
		slog.String("role", string(role)),
		slog.String("resource", string(object)),
		slog.String("action", string(action)),
	}
}

// callerAttrs is empty for system callers such as the policy seeder.
func callerAttrs(ctx context.Context) []slog.Attr {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	out := []slog.Attr{slog.String("user_id", id.UserID.String())}
	if id.HasClinic() {
		out = append(out, slog.String("clinic_id", id.ClinicID.String()))
	}
	return out
}
