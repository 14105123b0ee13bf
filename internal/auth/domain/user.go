package domain

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
}

// Session is what a successful sign-in leaves behind on this machine.
type Session struct {
	Token string
	User  User
}

func (s Session) Valid() bool {
	return s.Token != "" && s.User.Email != ""
}
