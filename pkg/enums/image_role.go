package enums

import "fmt"

// ImageRole tags a variant image as the listing image or a gallery extra.
type ImageRole string

const (
	ImageRolePrimary   ImageRole = "primary"
	ImageRoleSecondary ImageRole = "secondary"
)

func (r ImageRole) String() string { return string(r) }

// IsValid reports whether the role is known.
func (r ImageRole) IsValid() bool {
	return r == ImageRolePrimary || r == ImageRoleSecondary
}

// IsPrimary reports whether the image is the variant's listing image.
func (r ImageRole) IsPrimary() bool { return r == ImageRolePrimary }

// ParseImageRole converts raw input into an ImageRole.
func ParseImageRole(value string) (ImageRole, error) {
	if r := ImageRole(value); r.IsValid() {
		return r, nil
	}
	return "", fmt.Errorf("invalid image role %q", value)
}
