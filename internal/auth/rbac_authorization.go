package auth

import (
	"log/slog"
	"net/http"
)

type RBACAuthorization struct {
	checker PermissionChecker
	logger  *slog.Logger
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		checker: checker,
		logger:  logger,
	}
}

// Middleware gates a route on a single permission (admin always passes).
func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return ra.require(func(perms []string) bool {
		return ra.checker.HasAnyPermission(perms, []string{permission, PermissionAdmin})
	}, permission)
}

func (ra *RBACAuthorization) RequireApprover() func(http.Handler) http.Handler {
	return ra.require(ra.checker.CanApproveApplications, PermissionApproveApplications)
}

func (ra *RBACAuthorization) RequireViewAll() func(http.Handler) http.Handler {
	return ra.require(ra.checker.CanViewAllApplications, PermissionViewApplications)
}

func (ra *RBACAuthorization) RequireManageRoutes() func(http.Handler) http.Handler {
	return ra.require(ra.checker.CanManageRoutes, PermissionManageRoutes)
}

func (ra *RBACAuthorization) RequireExportJournals() func(http.Handler) http.Handler {
	return ra.require(ra.checker.CanExportJournals, PermissionExportJournals)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.require(ra.checker.IsAdmin, PermissionAdmin)
}

func (ra *RBACAuthorization) require(allowed func([]string) bool, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context",
					"required_permission", permission)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !allowed(user.Permissions) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
