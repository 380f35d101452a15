package auth

// DashboardVariant identifies which dashboard a user lands on after login.
type DashboardVariant string

const (
	DashboardAdmin   DashboardVariant = "admin"
	DashboardManager DashboardVariant = "manager"
	DashboardGate    DashboardVariant = "gate"
	DashboardDriver  DashboardVariant = "driver"
	DashboardOwner   DashboardVariant = "owner"
	DashboardStaff   DashboardVariant = "staff"
	DashboardGuest   DashboardVariant = "guest"
)

// dashboardByRole is the dispatch table from role to dashboard variant.
// Resolution walks AllRoles in precedence order, so a user holding both
// admin and driver lands on the admin dashboard.
var dashboardByRole = map[Role]DashboardVariant{
	RoleAdmin:        DashboardAdmin,
	RoleManager:      DashboardManager,
	RoleGateSecurity: DashboardGate,
	RoleDriver:       DashboardDriver,
	RoleVehicleOwner: DashboardOwner,
	RoleStaff:        DashboardStaff,
	RoleVisitor:      DashboardGuest,
}

// DashboardFor resolves the dashboard variant for a set of roles.
// Users with no recognized role get the guest dashboard.
func DashboardFor(roles []Role) DashboardVariant {
	held := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		held[r] = struct{}{}
	}
	for _, r := range AllRoles {
		if _, ok := held[r]; ok {
			return dashboardByRole[r]
		}
	}
	return DashboardGuest
}
