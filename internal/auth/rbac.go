package auth

import (
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

type Permission string

const (
	PermissionRequestCreate        Permission = "request:create"
	PermissionRequestReadOwn       Permission = "request:read:own"
	PermissionRequestReadTerritory Permission = "request:read:territory"
	PermissionRequestReadAll       Permission = "request:read:all"
	PermissionRequestUpdateStatus  Permission = "request:update_status"
	PermissionRequestExport        Permission = "request:export"

	PermissionCustomerLookup   Permission = "customer:lookup"
	PermissionAttachmentUpload Permission = "attachment:upload"
)

type RBAC struct {
	rolePermissions map[models.UserRole][]Permission
}

func NewRBAC() *RBAC {
	rbac := &RBAC{
		rolePermissions: make(map[models.UserRole][]Permission),
	}
	rbac.initializePermissions()
	return rbac
}

func (r *RBAC) initializePermissions() {
	r.rolePermissions[models.RoleAdmin] = []Permission{
		PermissionRequestCreate, PermissionRequestReadAll, PermissionRequestUpdateStatus,
		PermissionRequestExport, PermissionCustomerLookup, PermissionAttachmentUpload,
	}

	// SalesTech works the requests of its territories
	r.rolePermissions[models.RoleSalesTech] = []Permission{
		PermissionRequestCreate, PermissionRequestReadTerritory, PermissionRequestUpdateStatus,
		PermissionRequestExport, PermissionCustomerLookup, PermissionAttachmentUpload,
	}

	r.rolePermissions[models.RoleCustomer] = []Permission{
		PermissionRequestCreate, PermissionRequestReadOwn, PermissionAttachmentUpload,
	}
}

func (r *RBAC) HasPermission(role models.UserRole, permission Permission) bool {
	for _, p := range r.rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

func (r *RBAC) GetRolePermissions(role models.UserRole) []Permission {
	return r.rolePermissions[role]
}

// ScopeFor returns which requests the caller may see.
func (r *RBAC) ScopeFor(c *Claims) repository.Scope {
	if c == nil {
		return repository.Scope{}
	}
	switch {
	case r.HasPermission(c.Role, PermissionRequestReadAll):
		return repository.Scope{All: true}
	case r.HasPermission(c.Role, PermissionRequestReadTerritory):
		return repository.Scope{Territories: c.Territories}
	case r.HasPermission(c.Role, PermissionRequestReadOwn):
		return repository.Scope{CustomerNumber: c.CustomerNumber}
	}
	return repository.Scope{}
}

func (r *RBAC) CanAccessRequest(c *Claims, req *models.ServiceRequest) bool {
	return r.ScopeFor(c).Allows(req)
}

func (r *RBAC) CanUpdateStatus(role models.UserRole) bool {
	return r.HasPermission(role, PermissionRequestUpdateStatus)
}
