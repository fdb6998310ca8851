package enums

import "fmt"

// StaffRole is the back-office permission carried in staff tokens.
type StaffRole string

const (
	// StaffRoleAdmin may run every order and catalog operation, including payments.
	StaffRoleAdmin StaffRole = "admin"
	// StaffRoleFulfillment may move orders through picking, packing and shipping.
	StaffRoleFulfillment StaffRole = "fulfillment"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleFulfillment,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
