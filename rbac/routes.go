package rbac

import "strings"

// routeGrants maps CRM route prefixes to the permissions that unlock them.
// A route is allowed when the user holds any one of the listed permissions.
var routeGrants = map[string][]Permission{
	"/crm/dashboard":     {PermViewDashboard},
	"/crm/properties":    {PermViewProperties, PermManageProperties},
	"/crm/contacts":      {PermViewContacts, PermManageContacts},
	"/crm/agenda":        {PermViewAgenda, PermManageAgenda},
	"/crm/bookings":      {PermViewBookings, PermManageBookings},
	"/crm/finances":      {PermViewFinances, PermManageFinances},
	"/crm/reports":       {PermViewReports},
	"/crm/content":       {PermManageContent},
	"/crm/media":         {PermManageMedia},
	"/crm/users":         {PermManageUsers},
	"/crm/roles":         {PermManageRoles},
	"/crm/subscriptions": {PermManageSubscriptionPlans},
}

// DefaultGrants returns the permission set a role starts with when the
// account record carries no explicit grants. ADMIN is omitted on purpose:
// admins bypass permission checks at the evaluator, not via an inflated set.
func DefaultGrants(role Role) []Permission {
	switch role {
	case RoleManager:
		return []Permission{
			PermViewDashboard,
			PermViewProperties, PermManageProperties, PermPublishListings,
			PermViewContacts, PermManageContacts,
			PermViewAgenda, PermManageAgenda,
			PermViewBookings, PermManageBookings,
			PermViewFinances, PermViewReports, PermExportReports,
			PermManageContent, PermManageMedia,
		}
	case RoleAgent:
		return []Permission{
			PermViewDashboard,
			PermViewProperties, PermManageProperties,
			PermViewContacts, PermManageContacts,
			PermViewAgenda, PermManageAgenda,
			PermViewBookings, PermManageBookings,
		}
	case RoleViewer:
		return []Permission{
			PermViewDashboard,
			PermViewProperties, PermViewContacts,
			PermViewAgenda, PermViewBookings,
			PermViewReports,
		}
	default:
		return nil
	}
}

// CanAccessRoute gates CRM routes. Unauthenticated users are always denied.
// Admins pass; otherwise the longest matching prefix in routeGrants decides.
// Routes with no entry are open to any authenticated user.
func (e *Evaluator) CanAccessRoute(route string) bool {
	if e.user == nil {
		return false
	}
	if e.isAdmin() {
		return true
	}

	var required []Permission
	bestLen := -1
	for prefix, perms := range routeGrants {
		if strings.HasPrefix(route, prefix) && len(prefix) > bestLen {
			required = perms
			bestLen = len(prefix)
		}
	}
	if bestLen < 0 {
		return true
	}
	return e.HasAnyPermission(required...)
}
