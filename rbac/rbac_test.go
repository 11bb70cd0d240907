package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePermissions_BothRepresentationsEquivalent(t *testing.T) {
	t.Parallel()

	fromCodes := NormalizePermissions([]string{"properties:manage", "VIEW_CONTACTS"}, nil)
	fromFlags := NormalizePermissions(nil, map[string]bool{
		"properties:manage": true,
		"VIEW_CONTACTS":     true,
		"bookings:manage":   false,
	})

	assert.Equal(t, fromCodes, fromFlags)
	assert.True(t, fromCodes.Has(PermManageProperties))
	assert.True(t, fromCodes.Has(PermViewContacts))
	assert.False(t, fromFlags.Has(PermManageBookings), "false flags grant nothing")
}

func TestNormalizePermissions_DropsUnknownCodes(t *testing.T) {
	t.Parallel()

	set := NormalizePermissions([]string{"definitely:not:a:thing", "agenda:view"}, nil)
	require.Len(t, set, 1)
	assert.True(t, set.Has(PermViewAgenda))
}

func TestParsePermission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want Permission
		ok   bool
	}{
		{"bookings:manage", PermManageBookings, true},
		{"MANAGE_BOOKINGS", PermManageBookings, true},
		{" manage_bookings ", PermManageBookings, true},
		{"subscriptions:admin", PermManageSubscriptionPlans, true},
		{"nonsense", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePermission(tt.code)
		assert.Equal(t, tt.ok, ok, "code %q", tt.code)
		assert.Equal(t, tt.want, got, "code %q", tt.code)
	}
}

func TestEvaluator_NilUserDeniesEverything(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(nil)

	assert.False(t, e.HasPermission(PermViewDashboard))
	assert.False(t, e.HasAnyPermission(AllPermissions...))
	assert.False(t, e.HasAllPermissions())
	assert.False(t, e.HasRole(RoleAgent))
	assert.False(t, e.HasAnyRole(RoleAdmin, RoleViewer))
	assert.False(t, e.CanAccessRoute("/crm/dashboard"))
	assert.False(t, e.CanAccessRoute("/"))
}

func TestEvaluator_AdminRoleShortCircuitsEveryPermission(t *testing.T) {
	t.Parallel()

	admin := NewUser("u1", "boss@example.com", []string{"admin"}, nil, nil)
	e := NewEvaluator(admin)

	for _, p := range AllPermissions {
		assert.True(t, e.HasPermission(p), "admin must hold %s", p)
	}
	assert.True(t, e.HasAllPermissions(AllPermissions...))
	assert.True(t, e.CanAccessRoute("/crm/subscriptions/plans"))
}

func TestEvaluator_AdminByEmailIsNotAThing(t *testing.T) {
	t.Parallel()

	// Accounts whose email merely looks administrative get nothing extra.
	u := NewUser("u2", "admin@agency-admin.example", []string{"AGENT"},
		[]string{"agenda:view"}, nil)
	e := NewEvaluator(u)

	assert.True(t, e.HasPermission(PermViewAgenda))
	assert.False(t, e.HasPermission(PermManageUsers))
	assert.False(t, e.CanAccessRoute("/crm/users"))
}

func TestEvaluator_NonAdminExactMembership(t *testing.T) {
	t.Parallel()

	u := NewUser("u3", "agent@example.com", []string{"AGENT"},
		[]string{"properties:view", "bookings:view"}, nil)
	e := NewEvaluator(u)

	assert.True(t, e.HasPermission(PermViewProperties))
	assert.True(t, e.HasPermission(PermViewBookings))
	assert.False(t, e.HasPermission(PermManageProperties))

	assert.True(t, e.HasAnyPermission(PermManageProperties, PermViewBookings))
	assert.False(t, e.HasAnyPermission(PermManageUsers, PermManageRoles))
	assert.True(t, e.HasAllPermissions(PermViewProperties, PermViewBookings))
	assert.False(t, e.HasAllPermissions(PermViewProperties, PermManageProperties))
}

func TestEvaluator_RoleChecksAreLiteral(t *testing.T) {
	t.Parallel()

	admin := NewEvaluator(NewUser("u4", "", []string{"ADMIN"}, nil, nil))
	assert.True(t, admin.HasRole(RoleAdmin))
	// Admin does not implicitly hold other roles.
	assert.False(t, admin.HasRole(RoleAgent))
	assert.True(t, admin.HasAnyRole(RoleManager, RoleAdmin))

	agent := NewEvaluator(NewUser("u5", "", []string{"agent", "viewer"}, nil, nil))
	assert.True(t, agent.HasRole(RoleAgent))
	assert.True(t, agent.HasRole(RoleViewer))
	assert.False(t, agent.HasAnyRole(RoleAdmin, RoleManager))
}

func TestEvaluator_CanAccessRoute(t *testing.T) {
	t.Parallel()

	u := NewUser("u6", "", []string{"AGENT"},
		[]string{"agenda:view", "bookings:manage"}, nil)
	e := NewEvaluator(u)

	assert.True(t, e.CanAccessRoute("/crm/agenda"))
	assert.True(t, e.CanAccessRoute("/crm/agenda/week"))
	assert.True(t, e.CanAccessRoute("/crm/bookings"))
	assert.False(t, e.CanAccessRoute("/crm/finances"))
	assert.False(t, e.CanAccessRoute("/crm/subscriptions"))
	// Unlisted routes stay open to authenticated users.
	assert.True(t, e.CanAccessRoute("/crm/profile"))
}

func TestDefaultGrants(t *testing.T) {
	t.Parallel()

	assert.Empty(t, DefaultGrants(RoleAdmin))
	assert.Empty(t, DefaultGrants(RoleCustomer))

	agent := DefaultGrants(RoleAgent)
	assert.Contains(t, agent, PermManageBookings)
	assert.NotContains(t, agent, PermManageUsers)

	viewer := DefaultGrants(RoleViewer)
	for _, p := range viewer {
		assert.NotContains(t, []Permission{PermManageProperties, PermManageUsers}, p)
	}
}
