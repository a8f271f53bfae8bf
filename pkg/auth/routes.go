package auth

import (
	"github.com/star-emergency/alert-gateway/pkg/models"
)

// Route names one client-side screen guarded by role.
type Route string

const (
	RouteOverview         Route = "/"
	RouteCreateMass       Route = "/create-mass"
	RouteCreateManual     Route = "/create-manual"
	RouteViewRecords      Route = "/view-records"
	RouteMonitorEmergency Route = "/monitor-emergency"
	RouteActivateClient   Route = "/activate-client"
	RouteManageUsers      Route = "/manage-users"
)

// PermittedRoutes maps a role code to the set of routes it may visit. This is
// the single place the role/route policy lives; the guard evaluates it once
// per navigation instead of re-deriving the rules per screen.
func PermittedRoutes(role models.Role) map[Route]bool {
	switch role {
	case models.RoleAdmin:
		return map[Route]bool{
			RouteOverview:         true,
			RouteCreateMass:       true,
			RouteCreateManual:     true,
			RouteViewRecords:      true,
			RouteMonitorEmergency: true,
			RouteActivateClient:   true,
			RouteManageUsers:      true,
		}
	case models.RoleOperator:
		return map[Route]bool{
			RouteOverview:         true,
			RouteCreateMass:       true,
			RouteCreateManual:     true,
			RouteViewRecords:      true,
			RouteMonitorEmergency: true,
			RouteActivateClient:   true,
		}
	case models.RoleViewer:
		return map[Route]bool{
			RouteOverview:    true,
			RouteViewRecords: true,
		}
	}
	return map[Route]bool{}
}
