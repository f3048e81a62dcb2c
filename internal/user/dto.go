package user

import "time"

// ProfileResponse is the wire shape for /users/me.
type ProfileResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	IsActive    bool      `json:"is_active"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToProfileResponse() ProfileResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return ProfileResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Department:  u.Department,
		IsActive:    u.IsActive,
		Permissions: perms,
		CreatedAt:   u.CreatedAt,
	}
}
