package rbac

import "strings"

// Role is a server-issued role tag. A user may carry more than one.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleAgent    Role = "AGENT"
	RoleViewer   Role = "VIEWER"
	RoleCustomer Role = "CUSTOMER"
)

// Permission is a named capability checked before rendering or mutating.
type Permission string

const (
	PermViewDashboard           Permission = "VIEW_DASHBOARD"
	PermViewProperties          Permission = "VIEW_PROPERTIES"
	PermManageProperties        Permission = "MANAGE_PROPERTIES"
	PermPublishListings         Permission = "PUBLISH_LISTINGS"
	PermViewContacts            Permission = "VIEW_CONTACTS"
	PermManageContacts          Permission = "MANAGE_CONTACTS"
	PermViewAgenda              Permission = "VIEW_AGENDA"
	PermManageAgenda            Permission = "MANAGE_AGENDA"
	PermViewBookings            Permission = "VIEW_BOOKINGS"
	PermManageBookings          Permission = "MANAGE_BOOKINGS"
	PermViewFinances            Permission = "VIEW_FINANCES"
	PermManageFinances          Permission = "MANAGE_FINANCES"
	PermViewReports             Permission = "VIEW_REPORTS"
	PermExportReports           Permission = "EXPORT_REPORTS"
	PermManageContent           Permission = "MANAGE_CONTENT"
	PermPublishContent          Permission = "PUBLISH_CONTENT"
	PermManageMedia             Permission = "MANAGE_MEDIA"
	PermManageUsers             Permission = "MANAGE_USERS"
	PermManageRoles             Permission = "MANAGE_ROLES"
	PermManageSubscriptionPlans Permission = "MANAGE_SUBSCRIPTION_PLANS"
)

// AllPermissions lists every known capability, in declaration order.
var AllPermissions = []Permission{
	PermViewDashboard,
	PermViewProperties,
	PermManageProperties,
	PermPublishListings,
	PermViewContacts,
	PermManageContacts,
	PermViewAgenda,
	PermManageAgenda,
	PermViewBookings,
	PermManageBookings,
	PermViewFinances,
	PermManageFinances,
	PermViewReports,
	PermExportReports,
	PermManageContent,
	PermPublishContent,
	PermManageMedia,
	PermManageUsers,
	PermManageRoles,
	PermManageSubscriptionPlans,
}

// serverCodes maps wire permission codes to local permissions. The API
// historically emitted colon-form codes; canonical names pass through
// ParsePermission unchanged.
var serverCodes = map[string]Permission{
	"dashboard:view":      PermViewDashboard,
	"properties:view":     PermViewProperties,
	"properties:manage":   PermManageProperties,
	"listings:publish":    PermPublishListings,
	"contacts:view":       PermViewContacts,
	"contacts:manage":     PermManageContacts,
	"agenda:view":         PermViewAgenda,
	"agenda:manage":       PermManageAgenda,
	"bookings:view":       PermViewBookings,
	"bookings:manage":     PermManageBookings,
	"finances:view":       PermViewFinances,
	"finances:manage":     PermManageFinances,
	"reports:view":        PermViewReports,
	"reports:export":      PermExportReports,
	"content:manage":      PermManageContent,
	"content:publish":     PermPublishContent,
	"media:manage":        PermManageMedia,
	"users:manage":        PermManageUsers,
	"roles:manage":        PermManageRoles,
	"subscriptions:admin": PermManageSubscriptionPlans,
}

var knownPermissions = func() map[Permission]bool {
	m := make(map[Permission]bool, len(AllPermissions))
	for _, p := range AllPermissions {
		m[p] = true
	}
	return m
}()

// ParsePermission resolves a wire code to a local permission. Unknown codes
// resolve to "" and are dropped during normalization.
func ParsePermission(code string) (Permission, bool) {
	if p, ok := serverCodes[code]; ok {
		return p, true
	}
	p := Permission(strings.ToUpper(strings.TrimSpace(code)))
	if knownPermissions[p] {
		return p, true
	}
	return "", false
}

// PermissionSet is the canonical representation of a grant set. Both wire
// encodings (array of codes, map of code to bool) normalize into it at the
// boundary, so no predicate ever branches on representation.
type PermissionSet map[Permission]struct{}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) Add(p Permission) {
	s[p] = struct{}{}
}

// NormalizePermissions folds both wire representations into one canonical
// set. Codes and flags may both be present on a partially migrated record;
// the union is taken. Flags set to false grant nothing.
func NormalizePermissions(codes []string, flags map[string]bool) PermissionSet {
	set := make(PermissionSet)
	for _, c := range codes {
		if p, ok := ParsePermission(c); ok {
			set.Add(p)
		}
	}
	for c, granted := range flags {
		if !granted {
			continue
		}
		if p, ok := ParsePermission(c); ok {
			set.Add(p)
		}
	}
	return set
}

// User is the evaluator's view of an authenticated account: identity plus
// already-normalized authorization claims.
type User struct {
	ID    string
	Email string
	Roles []Role
	Perms PermissionSet
}

// NewUser normalizes raw role tags and either permission representation
// into an evaluator-ready record.
func NewUser(id, email string, roles []string, permCodes []string, permFlags map[string]bool) *User {
	u := &User{ID: id, Email: email, Perms: NormalizePermissions(permCodes, permFlags)}
	for _, r := range roles {
		tag := Role(strings.ToUpper(strings.TrimSpace(r)))
		if tag != "" {
			u.Roles = append(u.Roles, tag)
		}
	}
	return u
}

// Evaluator answers yes/no authorization questions about one user. All
// predicates are pure reads; a nil user denies everything.
type Evaluator struct {
	user *User
}

func NewEvaluator(u *User) *Evaluator {
	return &Evaluator{user: u}
}

// isAdmin keys only on an explicit server-issued ADMIN role claim. There is
// deliberately no email or domain matching here.
func (e *Evaluator) isAdmin() bool {
	if e.user == nil {
		return false
	}
	for _, r := range e.user.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

func (e *Evaluator) HasPermission(p Permission) bool {
	if e.user == nil {
		return false
	}
	if e.isAdmin() {
		return true
	}
	return e.user.Perms.Has(p)
}

func (e *Evaluator) HasAnyPermission(perms ...Permission) bool {
	if e.user == nil {
		return false
	}
	if e.isAdmin() {
		return true
	}
	for _, p := range perms {
		if e.user.Perms.Has(p) {
			return true
		}
	}
	return false
}

func (e *Evaluator) HasAllPermissions(perms ...Permission) bool {
	if e.user == nil {
		return false
	}
	if e.isAdmin() {
		return true
	}
	for _, p := range perms {
		if !e.user.Perms.Has(p) {
			return false
		}
	}
	return true
}

// HasRole is a literal membership test; admins are not implicitly every role.
func (e *Evaluator) HasRole(role Role) bool {
	if e.user == nil {
		return false
	}
	for _, r := range e.user.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (e *Evaluator) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if e.HasRole(r) {
			return true
		}
	}
	return false
}
