package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "threadline",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseStaffToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintStaffToken(cfg, now, StaffTokenPayload{Subject: "lager@threadline.se", Role: enums.StaffRoleFulfillment})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	claims, err := ParseStaffToken(cfg, token)
	if err != nil {
		t.Fatalf("parse staff token: %v", err)
	}
	if claims.Subject != "lager@threadline.se" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Role != enums.StaffRoleFulfillment {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestParseStaffTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintStaffToken(cfg, time.Now(), StaffTokenPayload{Subject: "ops", Role: enums.StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseStaffToken(other, token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParseStaffTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintStaffToken(cfg, time.Now().Add(-2*time.Hour), StaffTokenPayload{Subject: "ops", Role: enums.StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}
	if _, err := ParseStaffToken(cfg, token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestParseStaffTokenRejectsUnknownRole(t *testing.T) {
	cfg := testJWTConfig()
	claims := StaffClaims{
		Role: enums.StaffRole("owner"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseStaffToken(cfg, token); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}

func TestMintStaffTokenValidatesInput(t *testing.T) {
	cfg := testJWTConfig()
	cases := map[string]struct {
		cfg     config.JWTConfig
		payload StaffTokenPayload
	}{
		"missing secret":  {cfg: config.JWTConfig{Issuer: "threadline", ExpirationMinutes: 5}, payload: StaffTokenPayload{Subject: "ops", Role: enums.StaffRoleAdmin}},
		"missing subject": {cfg: cfg, payload: StaffTokenPayload{Role: enums.StaffRoleAdmin}},
		"invalid role":    {cfg: cfg, payload: StaffTokenPayload{Subject: "ops", Role: "viewer"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := MintStaffToken(tc.cfg, time.Now(), tc.payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSignerToleratesClockSkew(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	// Minted by a host whose clock runs ten seconds ahead.
	token, err := signer.Mint(time.Now().Add(10*time.Second), StaffTokenPayload{Subject: "ops", Role: enums.StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := signer.Parse(token); err != nil {
		t.Fatalf("expected small skew to be tolerated, got %v", err)
	}
}

func TestSignerWrapsVerificationFailures(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if _, err := signer.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	other, err := NewSigner(config.JWTConfig{Secret: "secret", Issuer: "someone-else", ExpirationMinutes: 5})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, err := other.Mint(time.Now(), StaffTokenPayload{Subject: "ops", Role: enums.StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := signer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign issuer to be rejected, got %v", err)
	}
}
