package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/angelmondragon/threadline-backend/pkg/auth"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "threadline", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, subject string, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgauth.MintStaffToken(cfg, time.Now(), pkgauth.StaffTokenPayload{Subject: subject, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestStaffAuthRejectsMissingToken(t *testing.T) {
	handler := StaffAuth(testJWT(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStaffAuthRejectsInvalidToken(t *testing.T) {
	handler := StaffAuth(testJWT(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStaffAuthSeedsActor(t *testing.T) {
	cfg := testJWT()
	token := mintTestToken(t, cfg, "lager@threadline.se", enums.StaffRoleFulfillment)

	var actor string
	var role enums.StaffRole
	handler := StaffAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if actor != "lager@threadline.se" {
		t.Fatalf("unexpected actor %q", actor)
	}
	if role != enums.StaffRoleFulfillment {
		t.Fatalf("unexpected role %q", role)
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testJWT()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := StaffAuth(cfg, nil)(RequireRole(nil, enums.StaffRoleAdmin)(inner))

	cases := []struct {
		role enums.StaffRole
		want int
	}{
		{enums.StaffRoleAdmin, http.StatusNoContent},
		{enums.StaffRoleFulfillment, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintTestToken(t, cfg, "ops", tc.role))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("role %s: expected %d got %d", tc.role, tc.want, resp.Code)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"bearer":       {header: "Bearer abc", want: "abc", ok: true},
		"lowercase":    {header: "bearer  abc ", want: "abc", ok: true},
		"basic scheme": {header: "Basic abc"},
		"bare token":   {header: "abc"},
		"empty":        {header: "Bearer "},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tc.header)
			got, ok := bearerToken(req)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("bearerToken(%q) = %q, %v", tc.header, got, ok)
			}
		})
	}
}

func TestRequireRoleWithoutStaffIsUnauthorized(t *testing.T) {
	handler := RequireRole(nil, enums.StaffRoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStaffAuthFailsClosedWithoutSecret(t *testing.T) {
	handler := StaffAuth(config.JWTConfig{Issuer: "threadline", ExpirationMinutes: 5}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
