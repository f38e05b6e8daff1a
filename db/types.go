package db

// Role of a User.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// Category of an Activity.
type Category string

const (
	CategoryClub  Category = "club"
	CategorySport Category = "sport"
	CategoryEvent Category = "event"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryClub, CategorySport, CategoryEvent:
		return true
	}
	return false
}

// Status of a Registration.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusAttended   Status = "attended"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusAttended, StatusCancelled:
		return true
	}
	return false
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

type Activity struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Category    Category `json:"category"`
}

type Registration struct {
	ID         int    `json:"id"`
	UserID     int    `json:"userId"`
	ActivityID int    `json:"activityId"`
	Status     Status `json:"status"`
}

// NewUser is the input of CreateUser.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// NewActivity is the input of CreateActivity.
type NewActivity struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Category    Category `json:"category"`
}

// ActivityPatch holds the fields an update changes. Nil fields are left as they are.
type ActivityPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Category    *Category `json:"category,omitempty"`
}

// NewRegistration is the input of CreateRegistration. An empty Status means registered.
type NewRegistration struct {
	UserID     int    `json:"userId"`
	ActivityID int    `json:"activityId"`
	Status     Status `json:"status,omitempty"`
}

// Snapshot is the whole persisted dataset.
type Snapshot struct {
	Version       int            `json:"version"`
	Users         []User         `json:"users"`
	Activities    []Activity     `json:"activities"`
	Registrations []Registration `json:"registrations"`
	SessionUserID *int           `json:"sessionUserId"`
}
