package auth

type PermissionChecker interface {
	CanApproveApplications(userPermissions []string) bool
	CanViewAllApplications(userPermissions []string) bool
	CanManageRoutes(userPermissions []string) bool
	CanExportJournals(userPermissions []string) bool
	HasAnyPermission(userPermissions []string, requiredPermissions []string) bool
	IsAdmin(userPermissions []string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) CanApproveApplications(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionApproveApplications, PermissionAdmin})
}

func (c *DefaultPermissionChecker) CanViewAllApplications(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionViewApplications, PermissionAdmin})
}

func (c *DefaultPermissionChecker) CanManageRoutes(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionManageRoutes, PermissionAdmin})
}

func (c *DefaultPermissionChecker) CanExportJournals(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionExportJournals, PermissionAdmin})
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (c *DefaultPermissionChecker) IsAdmin(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermissionAdmin})
}
