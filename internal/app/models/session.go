package models

type Session struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

func (s *Session) ToActor() Actor {
	return Actor{ID: s.UserID, Email: s.Email, Roles: s.Roles}
}
