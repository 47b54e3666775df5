package models

// Action names a capability a staff role may or may not hold.
type Action string

// Capability-tagged actions checked by the authorization middleware.
const (
	ActionManageUsers    Action = "users:manage"
	ActionManageOrders   Action = "orders:manage"
	ActionRecordPayments Action = "payments:record"
	ActionViewReports    Action = "reports:view"
)

// rolePermissions is the single declaration of the role/action rule set.
var rolePermissions = map[string]map[Action]bool{
	RoleAdmin: {
		ActionManageUsers:    true,
		ActionManageOrders:   true,
		ActionRecordPayments: true,
		ActionViewReports:    true,
	},
	RoleManager: {
		ActionManageUsers:    true,
		ActionManageOrders:   true,
		ActionRecordPayments: true,
		ActionViewReports:    true,
	},
	RoleCashier: {
		ActionManageOrders:   true,
		ActionRecordPayments: true,
		ActionViewReports:    true,
	},
}

// RolePermitted reports whether the role is allowed to perform the action.
func RolePermitted(role string, action Action) bool {
	return rolePermissions[role][action]
}
