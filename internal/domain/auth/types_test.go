package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "admin", input: "admin", want: RoleAdmin},
		{name: "trims and lowercases", input: "  Gate_Security ", want: RoleGateSecurity},
		{name: "vehicle owner", input: "vehicle_owner", want: RoleVehicleOwner},
		{name: "unknown role rejected", input: "superuser", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoles_CollapsesDuplicates(t *testing.T) {
	roles, err := ParseRoles([]string{"driver", "DRIVER", "staff"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleDriver, RoleStaff}, roles)
}

func TestParseRoles_RejectsUnknown(t *testing.T) {
	_, err := ParseRoles([]string{"driver", "root"})
	require.Error(t, err)
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		have []Role
		want []Role
		hit  bool
	}{
		{name: "single match", have: []Role{RoleDriver}, want: []Role{RoleDriver}, hit: true},
		{name: "any one role suffices", have: []Role{RoleDriver, RoleStaff}, want: []Role{RoleAdmin, RoleStaff}, hit: true},
		{name: "no overlap", have: []Role{RoleDriver}, want: []Role{RoleAdmin, RoleManager}, hit: false},
		{name: "empty want", have: []Role{RoleDriver}, want: nil, hit: false},
		{name: "empty have", have: nil, want: []Role{RoleAdmin}, hit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hit, Intersects(tt.have, tt.want))
		})
	}
}

func TestUser_HasAnyRole(t *testing.T) {
	u := User{Roles: []Role{RoleDriver, RoleVehicleOwner}}

	assert.True(t, u.HasRole(RoleDriver))
	assert.False(t, u.HasRole(RoleAdmin))
	// OR semantics: holding any one of the requested roles is enough.
	assert.True(t, u.HasAnyRole(RoleAdmin, RoleVehicleOwner))
	assert.False(t, u.HasAnyRole(RoleAdmin, RoleManager))
}

func TestDashboardFor(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
		want  DashboardVariant
	}{
		{name: "admin", roles: []Role{RoleAdmin}, want: DashboardAdmin},
		{name: "precedence picks admin over driver", roles: []Role{RoleDriver, RoleAdmin}, want: DashboardAdmin},
		{name: "gate security", roles: []Role{RoleGateSecurity}, want: DashboardGate},
		{name: "visitor maps to guest", roles: []Role{RoleVisitor}, want: DashboardGuest},
		{name: "no roles defaults to guest", roles: nil, want: DashboardGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DashboardFor(tt.roles))
		})
	}
}
