package controllers

import (
	"net/http"

	"github.com/angelmondragon/threadline-backend/api/middleware"
	"github.com/angelmondragon/threadline-backend/api/responses"
)

type pingResponse struct {
	Scope  string `json:"scope"`
	Status string `json:"status"`
	Actor  string `json:"actor,omitempty"`
	Role   string `json:"role,omitempty"`
}

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pingResponse{Scope: "public", Status: "ok"})
	}
}

// AdminPing echoes the operator a staff token resolves to.
func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, _ := middleware.StaffFromContext(r.Context())
		responses.WriteSuccess(w, pingResponse{
			Scope:  "admin",
			Status: "ok",
			Actor:  staff.Actor,
			Role:   string(staff.Role),
		})
	}
}
