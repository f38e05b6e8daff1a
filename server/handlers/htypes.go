package handlers

import "campusconnect/db"

type SignupRequest struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Role     db.Role `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ActivityRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Category    db.Category `json:"category"`
}

type RegistrationRequest struct {
	// UserID defaults to the logged-in user. Only admins may register someone else.
	UserID     int       `json:"userId"`
	ActivityID int       `json:"activityId"`
	Status     db.Status `json:"status"`
}

type StatusRequest struct {
	Status db.Status `json:"status"`
}

// UserResponse is a User without its password.
type UserResponse struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Role     db.Role `json:"role"`
}

func toUserResponse(u db.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
}

func toUserResponses(users []db.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}
