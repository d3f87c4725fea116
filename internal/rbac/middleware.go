package rbac

import (
	"net/http"

	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/shared"
)

// Require ensures the current principal holds at least one of the given
// roles before the handler body runs. Unauthenticated requests get 401,
// authenticated requests without a matching role get 403.
func Require(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := shared.TenantFromContext(r.Context())
			if !tc.Authenticated() {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if err := RequireRole(tc, roles...); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireMember admits any principal with a valid role in the organization.
func RequireMember() func(http.Handler) http.Handler {
	return Require(shared.AllRoles()...)
}

// RequireMutation admits only roles with write rights.
func RequireMutation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := shared.TenantFromContext(r.Context())
			if !tc.Authenticated() {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if err := RequireMutate(tc); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminRole admits only organization admins.
func RequireAdminRole() func(http.Handler) http.Handler {
	return Require(shared.RoleOrgAdmin)
}
