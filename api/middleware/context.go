package middleware

import (
	"context"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// Staff is the operator identity a verified token carries.
type Staff struct {
	Actor string
	Role  enums.StaffRole
}

type staffKey struct{}

// WithStaff injects the operator identity into the context.
func WithStaff(ctx context.Context, actor string, role enums.StaffRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, staffKey{}, Staff{Actor: actor, Role: role})
}

// StaffFromContext returns the operator, if the request was authenticated.
func StaffFromContext(ctx context.Context) (Staff, bool) {
	if ctx == nil {
		return Staff{}, false
	}
	staff, ok := ctx.Value(staffKey{}).(Staff)
	return staff, ok
}

// ActorFromContext returns the authenticated operator, or "" for public requests.
func ActorFromContext(ctx context.Context) string {
	staff, _ := StaffFromContext(ctx)
	return staff.Actor
}

func RoleFromContext(ctx context.Context) enums.StaffRole {
	staff, _ := StaffFromContext(ctx)
	return staff.Role
}
