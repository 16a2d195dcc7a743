package session

// Roles the backend assigns to users. Anything other than admin is treated
// as a regular user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the identity the auth endpoint returns on login and
// GET /accounts/user/data/ returns afterwards.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user belongs in the admin area.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LandingRoute returns the front-end route a fresh login should navigate to,
// based on the user's role.
func (u *User) LandingRoute() string {
	if u.IsAdmin() {
		return "/admin/dashboard"
	}
	return "/dashboard"
}
