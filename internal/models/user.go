package models

// Roles. Only operators may mutate thresholds or readings.
const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"` // don’t expose hash
}

// Principal is the verified identity behind a bearer token.
type Principal struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CanWrite reports whether the principal may run mutating operations.
func (p Principal) CanWrite() bool {
	return p.UserID > 0 && p.Role == RoleOperator
}
