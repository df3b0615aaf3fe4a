package domain

// Caller identifies who is invoking a service operation.
type Caller struct {
	UserID   string
	Username string
	Roles    []Role
}

// Authenticated reports whether the caller has been resolved to an account.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// HasRole reports whether the caller carries role.
func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CallerFromUser builds a caller from a loaded account.
func CallerFromUser(u *User) Caller {
	if u == nil {
		return Caller{}
	}
	return Caller{UserID: u.ID, Username: u.Username, Roles: append([]Role(nil), u.Roles...)}
}
