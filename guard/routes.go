package guard

// Route names.
const (
	RouteLogin               = "Login"
	RouteRegister            = "Register"
	RouteForgotPassword      = "ForgotPassword"
	RouteResetPassword       = "ResetPassword"
	RouteForcePasswordChange = "ForcePasswordChange"
	RouteDashboard           = "Dashboard"
	RouteSchedules           = "Schedules"
	RouteUsers               = "Users"
	RouteSettings            = "Settings"
	RouteChangePassword      = "ChangePassword"
	RouteLogs                = "Logs"
)

// Redirect targets.
const (
	PathLogin               = "/login"
	PathHome                = "/"
	PathForcePasswordChange = "/force-password-change"
)

// Route is a navigable view and the access rules attached to it.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	Guest        bool // only reachable while logged out
}

var routes = []Route{
	{Name: RouteLogin, Path: PathLogin, Guest: true},
	{Name: RouteRegister, Path: "/register", Guest: true},
	{Name: RouteForgotPassword, Path: "/forgot-password", Guest: true},
	{Name: RouteResetPassword, Path: "/reset-password", Guest: true},
	{Name: RouteForcePasswordChange, Path: PathForcePasswordChange, RequiresAuth: true},
	{Name: RouteDashboard, Path: PathHome, RequiresAuth: true},
	{Name: RouteSchedules, Path: "/schedules", RequiresAuth: true},
	{Name: RouteUsers, Path: "/users", RequiresAuth: true},
	{Name: RouteSettings, Path: "/settings", RequiresAuth: true},
	{Name: RouteChangePassword, Path: "/change-password", RequiresAuth: true},
	{Name: RouteLogs, Path: "/logs", RequiresAuth: true},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds a route by name.
func Lookup(name string) (Route, bool) {
	for _, r := range routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// LookupPath finds a route by path.
func LookupPath(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
