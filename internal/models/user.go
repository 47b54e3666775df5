package models

// Staff roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Account statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a staff account. Passcode is a secondary bcrypt hash held only by
// admin and manager accounts and used to authorize sensitive actions.
type User struct {
	BaseModel
	Username string      `gorm:"uniqueIndex" json:"username"`
	Password string      `json:"-"`
	Role     string      `json:"role"`
	Passcode *string     `json:"-"`
	Status   string      `gorm:"default:active" json:"status"`
	Detail   *UserDetail `gorm:"foreignKey:UserID" json:"detail,omitempty"`
}

// UserDetail holds the displayable profile for a staff account, one per user.
type UserDetail struct {
	BaseModel
	UserID     uint   `gorm:"uniqueIndex" json:"userId"`
	Name       string `json:"name"`
	EmployeeID string `gorm:"uniqueIndex" json:"employeeId"`
	Email      string `json:"email"`
	BranchID   uint   `gorm:"default:1" json:"branchId"`
}

// IsManagerial reports whether the role may hold a passcode.
func IsManagerial(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// IsRole reports whether s is one of the known staff roles.
func IsRole(s string) bool {
	switch s {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}
