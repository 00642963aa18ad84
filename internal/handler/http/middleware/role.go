package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

// RequireManager allows manager, HR, CMD, and admin roles. Team review
// endpoints sit behind this.
func RequireManager(next http.Handler) http.Handler {
	return requireRoles(next, "Manager access required",
		employee.RoleManager, employee.RoleHR, employee.RoleCMD, employee.RoleAdmin)
}

// RequireAdmin allows HR and admin roles. Calendar maintenance sits
// behind this.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRoles(next, "Admin access required",
		employee.RoleHR, employee.RoleAdmin)
}

func requireRoles(next http.Handler, message string, roles ...employee.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, message)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.Forbidden(w, message)
			return
		}

		role := employee.Role(roleStr)
		for _, allowed := range roles {
			if role == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		response.Forbidden(w, message)
	})
}
