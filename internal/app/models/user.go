package models

import (
	"labtrace-service/internal/pkg/constvars"
	"time"
)

type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"full_name" bson:"fullName"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	Roles        []string  `json:"roles" bson:"roles"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"`
}

func (u *User) ToActor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Roles: u.Roles}
}

// Actor is the capability view of a user threaded explicitly through every
// usecase and authorization call. Roles may combine.
type Actor struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

// SystemActor represents internally triggered actions such as payment
// confirmation callbacks and order completion on result arrival.
var SystemActor = Actor{ID: "system", Roles: []string{constvars.RoleTypeSystem}}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(constvars.RoleTypeAdmin)
}

func (a Actor) IsSystem() bool {
	return a.HasRole(constvars.RoleTypeSystem)
}

func (a Actor) CanCollectSpecimens() bool {
	return a.HasRole(constvars.RoleTypeTechnician) || a.IsAdmin()
}

func (a Actor) CanReviewResults() bool {
	return a.HasRole(constvars.RoleTypeReviewer) || a.IsAdmin()
}
