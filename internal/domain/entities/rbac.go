package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PermissionName identifies a capability checked by the API.
type PermissionName string

const (
	PermViewUsers    PermissionName = "view_users"
	PermManageUsers  PermissionName = "manage_users"
	PermSuspendUsers PermissionName = "suspend_users"

	PermViewApplications    PermissionName = "view_applications"
	PermManageApplications  PermissionName = "manage_applications"
	PermApproveApplications PermissionName = "approve_applications"
	PermUpdateProgress      PermissionName = "update_progress"

	PermViewDocuments   PermissionName = "view_documents"
	PermManageDocuments PermissionName = "manage_documents"
	PermVerifyDocuments PermissionName = "verify_documents"

	PermViewPayments   PermissionName = "view_payments"
	PermManagePayments PermissionName = "manage_payments"
	PermProcessRefunds PermissionName = "process_refunds"

	PermViewServices   PermissionName = "view_services"
	PermManageServices PermissionName = "manage_services"

	PermViewRoles   PermissionName = "view_roles"
	PermManageRoles PermissionName = "manage_roles"
	PermAssignRoles PermissionName = "assign_roles"

	PermViewSettings   PermissionName = "view_settings"
	PermManageSettings PermissionName = "manage_settings"

	PermViewReports   PermissionName = "view_reports"
	PermExportReports PermissionName = "export_reports"
)

// Role machine names seeded as system roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupport    = "support"
	RoleCustomer   = "customer"
)

// StaffRoles are the system roles allowed into the admin area.
var StaffRoles = []string{RoleSuperAdmin, RoleAdmin, RoleManager, RoleSupport}

// Permission represents a permission entity
type Permission struct {
	ID          uuid.UUID      `json:"id"`
	Name        PermissionName `json:"name"`
	DisplayName string         `json:"displayName"`
	Group       string         `json:"group"`
	Description string         `json:"description,omitempty"`
}

// Role represents a role entity
type Role struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Description string       `json:"description,omitempty"`
	IsSystem    bool         `json:"isSystem"`
	Permissions []Permission `json:"permissions,omitempty"`
	UsersCount  int64        `json:"usersCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NormalizeRoleName converts a display-ish name into the machine key form.
func NormalizeRoleName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// PermissionSet is the resolved set of permissions for one request.
type PermissionSet map[PermissionName]struct{}

func NewPermissionSet(names ...PermissionName) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(name PermissionName) bool {
	_, ok := s[name]
	return ok
}

// HasAny reports whether at least one of names is present.
func (s PermissionSet) HasAny(names ...PermissionName) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// Names returns the permission names sorted.
func (s PermissionSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}

// Principal is the authenticated caller with roles and permissions resolved.
type Principal struct {
	User        *User
	Permissions PermissionSet
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.User != nil && p.User.HasRole(RoleSuperAdmin)
}

// Can reports whether the principal holds any of perms. Super admins hold
// every permission implicitly.
func (p *Principal) Can(perms ...PermissionName) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin() {
		return true
	}
	return p.Permissions.HasAny(perms...)
}

// PermissionDefinition describes a seeded permission.
type PermissionDefinition struct {
	Name        PermissionName
	DisplayName string
	Group       string
}

// DefaultPermissions is the full permission catalogue.
var DefaultPermissions = []PermissionDefinition{
	{PermViewUsers, "View Users", "users"},
	{PermManageUsers, "Manage Users", "users"},
	{PermSuspendUsers, "Suspend Users", "users"},
	{PermViewApplications, "View Applications", "applications"},
	{PermManageApplications, "Manage Applications", "applications"},
	{PermApproveApplications, "Approve Applications", "applications"},
	{PermUpdateProgress, "Update Progress", "applications"},
	{PermViewDocuments, "View Documents", "documents"},
	{PermManageDocuments, "Manage Documents", "documents"},
	{PermVerifyDocuments, "Verify Documents", "documents"},
	{PermViewPayments, "View Payments", "payments"},
	{PermManagePayments, "Manage Payments", "payments"},
	{PermProcessRefunds, "Process Refunds", "payments"},
	{PermViewServices, "View Services", "services"},
	{PermManageServices, "Manage Services", "services"},
	{PermViewRoles, "View Roles", "roles"},
	{PermManageRoles, "Manage Roles", "roles"},
	{PermAssignRoles, "Assign Roles", "roles"},
	{PermViewSettings, "View Settings", "settings"},
	{PermManageSettings, "Manage Settings", "settings"},
	{PermViewReports, "View Reports", "reports"},
	{PermExportReports, "Export Reports", "reports"},
}

// RoleDefinition describes a seeded system role.
type RoleDefinition struct {
	Name        string
	DisplayName string
	Description string
	Permissions []PermissionName
}

// DefaultRoles returns the system roles with their permission grants.
func DefaultRoles() []RoleDefinition {
	all := make([]PermissionName, 0, len(DefaultPermissions))
	adminPerms := make([]PermissionName, 0, len(DefaultPermissions))
	for _, p := range DefaultPermissions {
		all = append(all, p.Name)
		switch p.Name {
		case PermManageRoles, PermAssignRoles, PermProcessRefunds:
		default:
			adminPerms = append(adminPerms, p.Name)
		}
	}

	return []RoleDefinition{
		{RoleSuperAdmin, "Super Admin", "Full system access", all},
		{RoleAdmin, "Admin", "Administrative access without role management", adminPerms},
		{RoleManager, "Manager", "Manages applications and documents", []PermissionName{
			PermViewUsers,
			PermViewApplications, PermManageApplications, PermApproveApplications, PermUpdateProgress,
			PermViewDocuments, PermManageDocuments, PermVerifyDocuments,
			PermViewPayments, PermViewServices, PermViewReports,
		}},
		{RoleSupport, "Support", "Customer support staff", []PermissionName{
			PermViewUsers, PermViewApplications, PermUpdateProgress,
			PermViewDocuments, PermViewPayments, PermViewServices,
		}},
		{RoleCustomer, "Customer", "Registered customer", nil},
	}
}

// CreateRoleInput represents input for creating a role
type CreateRoleInput struct {
	Name        string   `json:"name" binding:"required,max=50"`
	DisplayName string   `json:"displayName" binding:"required,max=100"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleInput represents input for updating a role. Nil fields are left unchanged.
type UpdateRoleInput struct {
	Name        *string  `json:"name" binding:"omitempty,max=50"`
	DisplayName *string  `json:"displayName" binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	Permissions []string `json:"permissions"`
}

// SyncUserRolesInput replaces a user's roles
type SyncUserRolesInput struct {
	Roles []string `json:"roles" binding:"required"`
}

// PermissionGroup lists the permissions sharing a group
type PermissionGroup struct {
	Group       string        `json:"group"`
	Permissions []*Permission `json:"permissions"`
}

// AssignRoleInput names a single role to add or remove
type AssignRoleInput struct {
	Role string `json:"role" binding:"required"`
}
