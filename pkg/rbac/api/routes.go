package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
)

// Handler returns the RBAC routes, relative to the mount prefix
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.ListRoles)
		r.Post("/", h.CreateRole)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetRole)
			r.Delete("/", h.DeleteRole)

			r.Put("/permissions", h.AssignPermissions)
			r.Delete("/permissions/{permissionId}", h.RemovePermission)

			r.Post("/users", h.AssociateUsers)
			r.Delete("/users/{userId}", h.DisassociateUser)
		})
	})

	r.Get("/permissions", h.ListPermissions)
	r.Post("/permissions", h.CreatePermission)

	r.Get("/users", h.ListUsers)

	return r
}

// SecureHandler returns the RBAC routes behind JWT verification
func SecureHandler(h *Handle, tokenAuth *jwtauth.JWTAuth) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(h.authenticator)
		r.Mount("/", Handler(h))
	})
	return r
}

// authenticator rejects requests whose token the verifier could not accept.
// Failures render through the RBAC error body.
func (h *Handle) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil {
			h.renderError(w, r, rbacerrors.Wrap(err, rbacerrors.ErrCodeUnauthorized, "invalid or missing token"))
			return
		}
		if token == nil {
			h.renderError(w, r, rbacerrors.New(rbacerrors.ErrCodeUnauthorized, "invalid or missing token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
