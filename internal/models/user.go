package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleSupplier    UserRole = "SUPPLIER"
	RoleEndUser     UserRole = "END_USER"
	RolePreApprover UserRole = "PRE_APPROVER"
	RoleApprover    UserRole = "APPROVER"
)

// Reviewer is the subset of a user record needed for the approval fan-out.
type Reviewer struct {
	ID       string   `db:"id" json:"id"`
	Email    string   `db:"email" json:"email"`
	FullName string   `db:"full_name" json:"fullName"`
	Role     UserRole `db:"role" json:"role"`
}
