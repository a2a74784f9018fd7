package models

// Role is the access level resolved from the login email. It lives only in
// the session token, never in a durable record.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleBuyer Role = "buyer"
)

// Session identifies one logged-in client.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
