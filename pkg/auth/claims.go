package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// StaffTokenPayload captures the data available when minting a staff JWT.
type StaffTokenPayload struct {
	// Subject identifies the operator and ends up as the actor on order events.
	Subject string
	Role    enums.StaffRole
	JTI     string
}

// StaffClaims is the typed body of a staff token.
type StaffClaims struct {
	Role enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}

var _ jwt.ClaimsValidator = StaffClaims{}

// Validate runs after jwt has checked signature, expiry and issuer.
func (c StaffClaims) Validate() error {
	if strings.TrimSpace(c.Subject) == "" {
		return errors.New("token subject is required")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid staff role %q", c.Role)
	}
	return nil
}
