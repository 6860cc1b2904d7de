package entity

// StudentLoginData is the identity carried by an access token. Role is
// empty for tokens minted without one.
type StudentLoginData struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (s StudentLoginData) IsStudent() bool {
	return s.Role == "" || s.Role == RoleStudent
}
